package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapEmbedder 返回预置向量的测试向量化器，未登记的文本返回错误
type mapEmbedder struct {
	dim     int
	vectors map[string][]float32
}

func (e *mapEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, ok := e.vectors[text]
	if !ok {
		return nil, errors.New("no vector for text: " + text)
	}
	return vec, nil
}

func (e *mapEmbedder) Dimensions() int { return e.dim }
func (e *mapEmbedder) Ready() bool     { return true }

func retrieverFixture(t *testing.T) (*mapEmbedder, *VectorIndex, []Chunk) {
	t.Helper()

	chunks := []Chunk{
		{Text: "Data at rest is encrypted with AES-256", Source: "policy.pdf"},
		{Text: "Annual security awareness training for all staff", Source: "training.md"},
		{Text: "Encryption keys rotate every ninety days", Source: "policy.pdf"},
	}
	embedder := &mapEmbedder{
		dim: 3,
		vectors: map[string][]float32{
			chunks[0].Text:            {1, 0, 0},
			chunks[1].Text:            {0, 1, 0},
			chunks[2].Text:            {0.8, 0, 0.6},
			"How is data encrypted?":  {0.9539, 0, 0.3},
			"What is the dress code?": {0, 0, 1},
		},
	}

	index := NewVectorIndex(3)
	for _, c := range chunks {
		vec, err := embedder.Embed(context.Background(), c.Text)
		require.NoError(t, err)
		require.NoError(t, index.Add(vec))
	}
	return embedder, index, chunks
}

func TestRetrieverFiltersAndOrders(t *testing.T) {
	embedder, index, chunks := retrieverFixture(t)
	retriever := NewRetriever(embedder, 3, 0.35)

	matches, err := retriever.Retrieve(context.Background(), "How is data encrypted?", index, chunks)
	require.NoError(t, err)

	// 得分：加密分块约0.95和0.94，培训分块0被阈值过滤
	require.Len(t, matches, 2)
	assert.Equal(t, "policy.pdf", matches[0].Source)
	assert.Equal(t, "policy.pdf", matches[1].Source)
	assert.GreaterOrEqual(t, matches[0].Score, matches[1].Score)
	for _, m := range matches {
		assert.GreaterOrEqual(t, m.Score, 0.35)
	}
}

func TestRetrieverTopKLimit(t *testing.T) {
	embedder, index, chunks := retrieverFixture(t)
	retriever := NewRetriever(embedder, 1, 0.35)

	matches, err := retriever.Retrieve(context.Background(), "How is data encrypted?", index, chunks)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, chunks[0].Text, matches[0].Text)
}

func TestRetrieverNoMatchIsNotError(t *testing.T) {
	embedder, index, chunks := retrieverFixture(t)
	retriever := NewRetriever(embedder, 3, 0.95)

	// 着装问题与加密分块的最高得分0.6低于阈值
	matches, err := retriever.Retrieve(context.Background(), "What is the dress code?", index, chunks)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRetrieverEmbedError(t *testing.T) {
	embedder, index, chunks := retrieverFixture(t)
	retriever := NewRetriever(embedder, 3, 0.35)

	_, err := retriever.Retrieve(context.Background(), "unregistered question", index, chunks)
	assert.Error(t, err)
}

func TestRetrieverDefaults(t *testing.T) {
	retriever := NewRetriever(newStubEmbedder(8), 0, 0)
	assert.Equal(t, 3, retriever.topK)
	assert.InDelta(t, 0.35, retriever.threshold, 1e-9)
}
