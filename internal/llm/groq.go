package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	apperrors "github.com/sentrashield/backend-go/internal/errors"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqGenerator 通过Groq的OpenAI兼容接口生成文本，云端后端
type GroqGenerator struct {
	client    *openai.Client
	apiKey    string
	model     string
	maxTokens int
}

// GroqOptions Groq后端配置
type GroqOptions struct {
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// NewGroqGenerator 创建Groq生成后端
func NewGroqGenerator(opts GroqOptions) *GroqGenerator {
	apiKey := strings.TrimSpace(opts.APIKey)
	if opts.Model == "" {
		opts.Model = "llama-3.1-8b-instant"
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}

	var client *openai.Client
	if apiKey != "" {
		cfg := openai.DefaultConfig(apiKey)
		cfg.BaseURL = groqBaseURL
		cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
		client = openai.NewClientWithConfig(cfg)
	}

	return &GroqGenerator{
		client:    client,
		apiKey:    apiKey,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
	}
}

func (g *GroqGenerator) Name() string {
	return "groq"
}

// Available API密钥已配置即视为可用
func (g *GroqGenerator) Available(ctx context.Context) bool {
	return g.apiKey != "" && g.client != nil
}

// Generate 单条消息、温度0的确定性生成
func (g *GroqGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.client == nil {
		return "", apperrors.NewBackendCallError(g.Name(), errors.New("api key not configured"))
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", apperrors.NewBackendCallError(g.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.NewBackendCallError(g.Name(), errors.New("empty completion response"))
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
