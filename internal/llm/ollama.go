package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/sentrashield/backend-go/internal/errors"
)

// OllamaGenerator 通过本地Ollama服务生成文本
type OllamaGenerator struct {
	host        string
	model       string
	maxTokens   int
	client      *http.Client
	probeClient *http.Client
}

// OllamaOptions Ollama后端配置
type OllamaOptions struct {
	Host         string
	Model        string
	MaxTokens    int
	Timeout      time.Duration
	ProbeTimeout time.Duration
}

type ollamaGenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// NewOllamaGenerator 创建Ollama生成后端
func NewOllamaGenerator(opts OllamaOptions) *OllamaGenerator {
	if opts.Host == "" {
		opts.Host = "http://localhost:11434"
	}
	if opts.Model == "" {
		opts.Model = "llama3"
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 5 * time.Second
	}

	return &OllamaGenerator{
		host:        strings.TrimRight(opts.Host, "/"),
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		client:      &http.Client{Timeout: opts.Timeout},
		probeClient: &http.Client{Timeout: opts.ProbeTimeout},
	}
}

func (g *OllamaGenerator) Name() string {
	return "ollama"
}

// Available 探测Ollama服务的模型列表端点
func (g *OllamaGenerator) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := g.probeClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// Generate 非流式、温度0的确定性生成
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	jsonData, err := json.Marshal(ollamaGenerateRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]interface{}{
			"temperature": 0,
			"num_predict": g.maxTokens,
		},
	})
	if err != nil {
		return "", apperrors.NewBackendCallError(g.Name(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.host+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return "", apperrors.NewBackendCallError(g.Name(), err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", apperrors.NewBackendCallError(g.Name(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewBackendCallError(g.Name(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewBackendCallError(g.Name(),
			fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	var genResp ollamaGenerateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", apperrors.NewBackendCallError(g.Name(), err)
	}
	if strings.TrimSpace(genResp.Response) == "" {
		return "", apperrors.NewBackendCallError(g.Name(), errors.New("empty generation response"))
	}
	return strings.TrimSpace(genResp.Response), nil
}
