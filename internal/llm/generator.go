package llm

import (
	"context"

	apperrors "github.com/sentrashield/backend-go/internal/errors"
	"github.com/sentrashield/backend-go/internal/logger"
	"go.uber.org/zap"
)

// Generator 统一的文本生成后端契约
type Generator interface {
	// Name 后端名称，用于日志与错误信息
	Name() string
	// Available 短超时的可用性探测
	Available(ctx context.Context) bool
	// Generate 同步生成，失败返回BACKEND_CALL_FAILED错误
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gateway 按优先级排列的生成后端网关。
// 每次调用重新探测可用性，选中第一个探测通过的后端。
type Gateway struct {
	generators []Generator
}

// NewGateway 创建生成网关，generators按优先级从高到低排列
func NewGateway(generators ...Generator) *Gateway {
	return &Gateway{generators: generators}
}

// Pick 返回第一个可用的后端，全部不可用时返回BACKEND_UNAVAILABLE
func (g *Gateway) Pick(ctx context.Context) (Generator, error) {
	for _, gen := range g.generators {
		if gen.Available(ctx) {
			return gen, nil
		}
	}
	return nil, apperrors.NewBackendUnavailableError()
}

// Generate 选择可用后端并生成文本
func (g *Gateway) Generate(ctx context.Context, prompt string) (string, error) {
	gen, err := g.Pick(ctx)
	if err != nil {
		return "", err
	}
	logger.Debug("generating answer", zap.String("backend", gen.Name()))
	return gen.Generate(ctx, prompt)
}
