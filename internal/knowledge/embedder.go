package knowledge

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/sentrashield/backend-go/internal/config"
)

// Embedder 定义文本向量化接口
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Ready() bool
}

// NoopEmbedder 默认占位实现
type NoopEmbedder struct{}

func (n *NoopEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("embedding provider not configured")
}

func (n *NoopEmbedder) Dimensions() int {
	return 0
}

func (n *NoopEmbedder) Ready() bool {
	return false
}

// Provider 延迟构造底层Embedder的进程级单例封装。
// 首次调用时构造一次，构造过程由sync.Once保护，之后只读复用。
type Provider struct {
	construct func() (Embedder, error)

	once sync.Once
	emb  Embedder
	err  error
}

// NewProvider 创建延迟初始化的向量化提供者
func NewProvider(construct func() (Embedder, error)) *Provider {
	return &Provider{construct: construct}
}

func (p *Provider) get() (Embedder, error) {
	p.once.Do(func() {
		p.emb, p.err = p.construct()
		if p.err == nil && p.emb == nil {
			p.err = errors.New("embedder constructor returned nil")
		}
	})
	return p.emb, p.err
}

// Embed 首次调用时构造底层模型，之后复用
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	emb, err := p.get()
	if err != nil {
		return nil, err
	}
	return emb.Embed(ctx, text)
}

// Dimensions 返回向量维度，构造失败时返回0
func (p *Provider) Dimensions() int {
	emb, err := p.get()
	if err != nil {
		return 0
	}
	return emb.Dimensions()
}

// Ready 检查底层Embedder是否可用
func (p *Provider) Ready() bool {
	emb, err := p.get()
	if err != nil {
		return false
	}
	return emb.Ready()
}

// NewEmbedderFromConfig 根据配置选择向量化后端，返回延迟初始化的Provider
func NewEmbedderFromConfig(cfg config.EmbeddingConfig) *Provider {
	return NewProvider(func() (Embedder, error) {
		switch cfg.Provider {
		case "openai":
			return NewOpenAIEmbedder(cfg.OpenAI.APIKey, cfg.OpenAI.Model), nil
		case "ollama", "":
			return NewOllamaEmbedder(cfg.Ollama.Host, cfg.Ollama.Model, cfg.Dimensions), nil
		default:
			return nil, errors.New("unknown embedding provider: " + cfg.Provider)
		}
	})
}

// normalizeL2 将向量归一化为单位长度
func normalizeL2(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
