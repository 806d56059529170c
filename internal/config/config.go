package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Env       string
	Knowledge KnowledgeConfig
	LLM       LLMConfig
}

type KnowledgeConfig struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	Threshold    float64
	IndexPath    string
	VectorStore  VectorStoreConfig
	Embedding    EmbeddingConfig
}

type VectorStoreConfig struct {
	Provider string
	Milvus   MilvusConfig
}

type MilvusConfig struct {
	Address          string
	Username         string
	Password         string
	CollectionPrefix string
	Database         string
	TLS              bool
	VectorSize       int
}

type EmbeddingConfig struct {
	Provider   string
	Dimensions int
	Ollama     OllamaConfig
	OpenAI     OpenAIConfig
}

type OllamaConfig struct {
	Host  string
	Model string
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type LLMConfig struct {
	Groq           GroqConfig
	Ollama         OllamaConfig
	MaxTokens      int
	TimeoutSeconds int
	ProbeSeconds   int
}

type GroqConfig struct {
	APIKey string
	Model  string
}

var AppConfig *Config

// LoadConfig 加载配置，优先级：环境变量 > 配置文件 > 默认值
func LoadConfig() error {
	// 设置默认值
	viper.SetDefault("env", "development")

	// 知识库配置默认值
	viper.SetDefault("knowledge.chunk_size", 600)
	viper.SetDefault("knowledge.chunk_overlap", 100)
	viper.SetDefault("knowledge.top_k", 3)
	viper.SetDefault("knowledge.threshold", 0.35)
	viper.SetDefault("knowledge.index_path", "./faiss_store")
	viper.SetDefault("knowledge.vector_store.provider", "local")
	viper.SetDefault("knowledge.vector_store.milvus.address", "localhost:19530")
	viper.SetDefault("knowledge.vector_store.milvus.collection_prefix", "qa_vectors")
	viper.SetDefault("knowledge.vector_store.milvus.database", "default")
	viper.SetDefault("knowledge.vector_store.milvus.tls", false)
	viper.SetDefault("knowledge.vector_store.milvus.vector_size", 384)
	viper.SetDefault("knowledge.embedding.provider", "ollama")
	viper.SetDefault("knowledge.embedding.dimensions", 384)
	viper.SetDefault("knowledge.embedding.ollama.host", "http://localhost:11434")
	viper.SetDefault("knowledge.embedding.ollama.model", "all-minilm")
	viper.SetDefault("knowledge.embedding.openai.model", "text-embedding-3-small")

	// 生成后端配置默认值
	viper.SetDefault("llm.groq.model", "llama-3.1-8b-instant")
	viper.SetDefault("llm.ollama.host", "http://localhost:11434")
	viper.SetDefault("llm.ollama.model", "llama3")
	viper.SetDefault("llm.max_tokens", 1024)
	viper.SetDefault("llm.timeout_seconds", 120)
	viper.SetDefault("llm.probe_seconds", 5)

	// 读取配置文件（可选）
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 读取环境变量
	viper.SetEnvPrefix("SENTRASHIELD")
	viper.AutomaticEnv()

	// 从环境变量读取
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		viper.Set("llm.groq.api_key", key)
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		viper.Set("knowledge.embedding.openai.api_key", key)
	}
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		viper.Set("llm.ollama.host", host)
		viper.Set("knowledge.embedding.ollama.host", host)
	}
	if path := os.Getenv("INDEX_PATH"); path != "" {
		viper.Set("knowledge.index_path", path)
	}

	AppConfig = &Config{
		Env: viper.GetString("env"),
		Knowledge: KnowledgeConfig{
			ChunkSize:    viper.GetInt("knowledge.chunk_size"),
			ChunkOverlap: viper.GetInt("knowledge.chunk_overlap"),
			TopK:         viper.GetInt("knowledge.top_k"),
			Threshold:    viper.GetFloat64("knowledge.threshold"),
			IndexPath:    viper.GetString("knowledge.index_path"),
			VectorStore: VectorStoreConfig{
				Provider: viper.GetString("knowledge.vector_store.provider"),
				Milvus: MilvusConfig{
					Address:          viper.GetString("knowledge.vector_store.milvus.address"),
					Username:         viper.GetString("knowledge.vector_store.milvus.username"),
					Password:         viper.GetString("knowledge.vector_store.milvus.password"),
					CollectionPrefix: viper.GetString("knowledge.vector_store.milvus.collection_prefix"),
					Database:         viper.GetString("knowledge.vector_store.milvus.database"),
					TLS:              viper.GetBool("knowledge.vector_store.milvus.tls"),
					VectorSize:       viper.GetInt("knowledge.vector_store.milvus.vector_size"),
				},
			},
			Embedding: EmbeddingConfig{
				Provider:   viper.GetString("knowledge.embedding.provider"),
				Dimensions: viper.GetInt("knowledge.embedding.dimensions"),
				Ollama: OllamaConfig{
					Host:  viper.GetString("knowledge.embedding.ollama.host"),
					Model: viper.GetString("knowledge.embedding.ollama.model"),
				},
				OpenAI: OpenAIConfig{
					APIKey: viper.GetString("knowledge.embedding.openai.api_key"),
					Model:  viper.GetString("knowledge.embedding.openai.model"),
				},
			},
		},
		LLM: LLMConfig{
			Groq: GroqConfig{
				APIKey: viper.GetString("llm.groq.api_key"),
				Model:  viper.GetString("llm.groq.model"),
			},
			Ollama: OllamaConfig{
				Host:  viper.GetString("llm.ollama.host"),
				Model: viper.GetString("llm.ollama.model"),
			},
			MaxTokens:      viper.GetInt("llm.max_tokens"),
			TimeoutSeconds: viper.GetInt("llm.timeout_seconds"),
			ProbeSeconds:   viper.GetInt("llm.probe_seconds"),
		},
	}

	return nil
}

// GetAppConfig 获取全局配置实例
func GetAppConfig() *Config {
	return AppConfig
}
