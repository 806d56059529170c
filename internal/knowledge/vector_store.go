package knowledge

import (
	"context"

	"github.com/sentrashield/backend-go/internal/config"
)

// VectorStore 按用户隔离的向量存储抽象，重建时完全替换该用户的旧数据
type VectorStore interface {
	BuildIndex(ctx context.Context, userID string, chunks []Chunk) (int, error)
	Search(ctx context.Context, userID string, question string, topK int, threshold float64) ([]SearchMatch, error)
	Exists(ctx context.Context, userID string) bool
	Delete(ctx context.Context, userID string) (bool, error)
	Ready() bool
}

// NewVectorStoreFromConfig 根据配置选择向量存储后端
func NewVectorStoreFromConfig(cfg config.KnowledgeConfig, embedder Embedder) (VectorStore, error) {
	switch cfg.VectorStore.Provider {
	case "milvus":
		return NewMilvusVectorStore(MilvusOptions{
			Address:          cfg.VectorStore.Milvus.Address,
			Username:         cfg.VectorStore.Milvus.Username,
			Password:         cfg.VectorStore.Milvus.Password,
			CollectionPrefix: cfg.VectorStore.Milvus.CollectionPrefix,
			Database:         cfg.VectorStore.Milvus.Database,
			UseTLS:           cfg.VectorStore.Milvus.TLS,
			VectorSize:       cfg.VectorStore.Milvus.VectorSize,
		}, embedder)
	default:
		return NewLocalVectorStore(cfg.IndexPath, embedder), nil
	}
}

// LocalVectorStore 基于FileStore的本地向量存储，默认后端
type LocalVectorStore struct {
	store    *FileStore
	embedder Embedder
}

// NewLocalVectorStore 创建本地向量存储
func NewLocalVectorStore(basePath string, embedder Embedder) *LocalVectorStore {
	return &LocalVectorStore{
		store:    NewFileStore(basePath, embedder),
		embedder: embedder,
	}
}

// FileStore 返回底层的文件存储
func (s *LocalVectorStore) FileStore() *FileStore {
	return s.store
}

func (s *LocalVectorStore) BuildIndex(ctx context.Context, userID string, chunks []Chunk) (int, error) {
	index, _, err := s.store.Build(ctx, chunks, userID)
	if err != nil {
		return 0, err
	}
	return index.Len(), nil
}

func (s *LocalVectorStore) Search(ctx context.Context, userID string, question string, topK int, threshold float64) ([]SearchMatch, error) {
	index, chunks, err := s.store.Load(userID)
	if err != nil {
		return nil, err
	}
	retriever := NewRetriever(s.embedder, topK, threshold)
	return retriever.Retrieve(ctx, question, index, chunks)
}

func (s *LocalVectorStore) Exists(ctx context.Context, userID string) bool {
	return s.store.Exists(userID)
}

func (s *LocalVectorStore) Delete(ctx context.Context, userID string) (bool, error) {
	return s.store.Delete(userID)
}

func (s *LocalVectorStore) Ready() bool {
	return s.embedder != nil
}
