package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sentrashield/backend-go/internal/errors"
)

// fakeGenerator 测试用后端，记录探测与调用次数
type fakeGenerator struct {
	name      string
	available bool
	output    string
	err       error
	probes    int
	calls     int
}

func (g *fakeGenerator) Name() string { return g.name }

func (g *fakeGenerator) Available(ctx context.Context) bool {
	g.probes++
	return g.available
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.output, nil
}

func TestGatewayPrefersFirstAvailable(t *testing.T) {
	cloud := &fakeGenerator{name: "groq", available: true, output: "cloud answer"}
	local := &fakeGenerator{name: "ollama", available: true, output: "local answer"}
	gateway := NewGateway(cloud, local)

	answer, err := gateway.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "cloud answer", answer)
	assert.Equal(t, 1, cloud.calls)
	assert.Equal(t, 0, local.calls)
	// 首选后端可用时不探测后备
	assert.Equal(t, 0, local.probes)
}

func TestGatewayFallsBackWhenPreferredDown(t *testing.T) {
	cloud := &fakeGenerator{name: "groq", available: false}
	local := &fakeGenerator{name: "ollama", available: true, output: "local answer"}
	gateway := NewGateway(cloud, local)

	answer, err := gateway.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "local answer", answer)
	assert.Equal(t, 0, cloud.calls)
	assert.Equal(t, 1, local.calls)
}

func TestGatewayAllUnavailable(t *testing.T) {
	gateway := NewGateway(
		&fakeGenerator{name: "groq", available: false},
		&fakeGenerator{name: "ollama", available: false},
	)

	_, err := gateway.Pick(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeBackendUnavailable))

	_, err = gateway.Generate(context.Background(), "prompt")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeBackendUnavailable))
}

func TestGatewayPropagatesCallError(t *testing.T) {
	callErr := apperrors.NewBackendCallError("groq", assert.AnError)
	gateway := NewGateway(&fakeGenerator{name: "groq", available: true, err: callErr})

	_, err := gateway.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeBackendCallFailed))
}

func TestGatewayRepicksPerCall(t *testing.T) {
	cloud := &fakeGenerator{name: "groq", available: false}
	local := &fakeGenerator{name: "ollama", available: true, output: "ok"}
	gateway := NewGateway(cloud, local)

	for i := 0; i < 3; i++ {
		_, err := gateway.Generate(context.Background(), "prompt")
		require.NoError(t, err)
	}
	// 每次调用都重新探测
	assert.Equal(t, 3, cloud.probes)
	assert.Equal(t, 3, local.probes)
}
