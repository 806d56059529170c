package knowledge

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/sentrashield/backend-go/internal/errors"
)

const (
	indexFileName  = "store.index"
	chunksFileName = "chunks.json"
)

// FileStore 按用户持久化向量索引与分块序列的本地存储
type FileStore struct {
	basePath string
	embedder Embedder
}

// NewFileStore 创建本地索引存储
func NewFileStore(basePath string, embedder Embedder) *FileStore {
	if basePath == "" {
		basePath = "./faiss_store"
	}
	return &FileStore{
		basePath: basePath,
		embedder: embedder,
	}
}

func (s *FileStore) userDir(userID string) string {
	return filepath.Join(s.basePath, "user_"+userID)
}

func (s *FileStore) userPaths(userID string) (string, string) {
	dir := s.userDir(userID)
	return filepath.Join(dir, indexFileName), filepath.Join(dir, chunksFileName)
}

// indexArtifact 索引文件的序列化结构
type indexArtifact struct {
	Dim     int
	Vectors [][]float32
}

// Build 按输入顺序向量化全部分块，构建索引并持久化，完全替换该用户已有的索引。
// 索引与分块序列先写入临时文件再改名落盘，读取方不会看到不配对的产物。
func (s *FileStore) Build(ctx context.Context, chunks []Chunk, userID string) (*VectorIndex, []Chunk, error) {
	if len(chunks) == 0 {
		return nil, nil, apperrors.NewValidationError("no chunks to index")
	}
	if userID == "" {
		return nil, nil, apperrors.NewValidationError("user id is empty")
	}

	index := NewVectorIndex(s.embedder.Dimensions())
	for i, chunk := range chunks {
		vec, err := s.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return nil, nil, apperrors.NewSystemError(apperrors.ErrCodeEmbeddingFailed,
				fmt.Sprintf("failed to embed chunk %d", i)).WithCause(err)
		}
		if err := index.Add(vec); err != nil {
			return nil, nil, apperrors.NewSystemError(apperrors.ErrCodeEmbeddingFailed,
				fmt.Sprintf("failed to index chunk %d", i)).WithCause(err)
		}
	}

	if err := s.persist(index, chunks, userID); err != nil {
		return nil, nil, err
	}
	return index, chunks, nil
}

func (s *FileStore) persist(index *VectorIndex, chunks []Chunk, userID string) error {
	dir := s.userDir(userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	indexPath, chunksPath := s.userPaths(userID)
	indexTmp := indexPath + ".tmp"
	chunksTmp := chunksPath + ".tmp"

	chunksFile, err := os.Create(chunksTmp)
	if err != nil {
		return fmt.Errorf("failed to create chunks file: %w", err)
	}
	if err := json.NewEncoder(chunksFile).Encode(chunks); err != nil {
		chunksFile.Close()
		return fmt.Errorf("failed to encode chunks: %w", err)
	}
	if err := chunksFile.Close(); err != nil {
		return fmt.Errorf("failed to close chunks file: %w", err)
	}

	indexFile, err := os.Create(indexTmp)
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}
	artifact := indexArtifact{Dim: index.dim, Vectors: index.vectors}
	if err := gob.NewEncoder(indexFile).Encode(artifact); err != nil {
		indexFile.Close()
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := indexFile.Close(); err != nil {
		return fmt.Errorf("failed to close index file: %w", err)
	}

	// 两个临时文件都写完后再改名，分块在前、索引在后，
	// Load要求两者同时存在，中途崩溃不会留下可读的半成品对
	if err := os.Rename(chunksTmp, chunksPath); err != nil {
		return fmt.Errorf("failed to commit chunks file: %w", err)
	}
	if err := os.Rename(indexTmp, indexPath); err != nil {
		return fmt.Errorf("failed to commit index file: %w", err)
	}
	return nil
}

// Load 加载指定用户的索引与分块序列，任一产物缺失时返回INDEX_NOT_FOUND
func (s *FileStore) Load(userID string) (*VectorIndex, []Chunk, error) {
	indexPath, chunksPath := s.userPaths(userID)

	if !fileExists(indexPath) || !fileExists(chunksPath) {
		return nil, nil, apperrors.NewIndexNotFoundError(userID)
	}

	indexFile, err := os.Open(indexPath)
	if err != nil {
		return nil, nil, apperrors.NewSystemError(apperrors.ErrCodeIndexCorrupted,
			"failed to open index file").WithCause(err)
	}
	defer indexFile.Close()

	var artifact indexArtifact
	if err := gob.NewDecoder(indexFile).Decode(&artifact); err != nil {
		return nil, nil, apperrors.NewSystemError(apperrors.ErrCodeIndexCorrupted,
			"failed to decode index file").WithCause(err)
	}

	chunksFile, err := os.Open(chunksPath)
	if err != nil {
		return nil, nil, apperrors.NewSystemError(apperrors.ErrCodeIndexCorrupted,
			"failed to open chunks file").WithCause(err)
	}
	defer chunksFile.Close()

	var chunks []Chunk
	if err := json.NewDecoder(chunksFile).Decode(&chunks); err != nil {
		return nil, nil, apperrors.NewSystemError(apperrors.ErrCodeIndexCorrupted,
			"failed to decode chunks file").WithCause(err)
	}

	index := &VectorIndex{dim: artifact.Dim, vectors: artifact.Vectors}
	if index.Len() != len(chunks) {
		return nil, nil, apperrors.NewSystemError(apperrors.ErrCodeIndexCorrupted,
			fmt.Sprintf("index/chunks mismatch: %d vectors, %d chunks", index.Len(), len(chunks)))
	}
	return index, chunks, nil
}

// Exists 检查指定用户的索引与分块序列是否都存在
func (s *FileStore) Exists(userID string) bool {
	indexPath, chunksPath := s.userPaths(userID)
	return fileExists(indexPath) && fileExists(chunksPath)
}

// Delete 删除指定用户的索引产物，返回是否实际删除了内容
func (s *FileStore) Delete(userID string) (bool, error) {
	indexPath, chunksPath := s.userPaths(userID)

	deleted := false
	for _, path := range []string{indexPath, chunksPath} {
		if !fileExists(path) {
			continue
		}
		if err := os.Remove(path); err != nil {
			return deleted, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		deleted = true
	}

	// 清理空的用户目录，失败不影响结果
	_ = os.Remove(s.userDir(userID))
	return deleted, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
