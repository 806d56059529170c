package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sentrashield/backend-go/internal/errors"
)

func TestOllamaAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	gen := NewOllamaGenerator(OllamaOptions{Host: server.URL})
	assert.True(t, gen.Available(context.Background()))
}

func TestOllamaUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	gen := NewOllamaGenerator(OllamaOptions{Host: server.URL})
	assert.False(t, gen.Available(context.Background()))

	// 服务关闭后连接失败同样视为不可用
	server.Close()
	assert.False(t, gen.Available(context.Background()))
}

func TestOllamaGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaGenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.False(t, req.Stream)
		assert.EqualValues(t, 0, req.Options["temperature"])
		assert.EqualValues(t, 1024, req.Options["num_predict"])

		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "  Encrypted with AES-256.  "})
	}))
	defer server.Close()

	gen := NewOllamaGenerator(OllamaOptions{Host: server.URL})
	answer, err := gen.Generate(context.Background(), "How is data encrypted?")
	require.NoError(t, err)
	assert.Equal(t, "Encrypted with AES-256.", answer)
}

func TestOllamaGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	gen := NewOllamaGenerator(OllamaOptions{Host: server.URL})
	_, err := gen.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeBackendCallFailed))
	assert.Contains(t, err.Error(), "ollama")
}

func TestOllamaGenerateEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "   "})
	}))
	defer server.Close()

	gen := NewOllamaGenerator(OllamaOptions{Host: server.URL})
	_, err := gen.Generate(context.Background(), "prompt")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeBackendCallFailed))
}

func TestOllamaDefaults(t *testing.T) {
	gen := NewOllamaGenerator(OllamaOptions{})
	assert.Equal(t, "http://localhost:11434", gen.host)
	assert.Equal(t, "llama3", gen.model)
	assert.Equal(t, 1024, gen.maxTokens)
}
