package services

import (
	"context"

	apperrors "github.com/sentrashield/backend-go/internal/errors"
	"github.com/sentrashield/backend-go/internal/extract"
	"github.com/sentrashield/backend-go/internal/knowledge"
	"github.com/sentrashield/backend-go/internal/logger"
	"go.uber.org/zap"
)

// KnowledgeService 知识库构建服务：提取文本、分块、建立向量索引
type KnowledgeService struct {
	store     knowledge.VectorStore
	chunker   *knowledge.Chunker
	extractor extract.Extractor
}

// NewKnowledgeService 创建知识库服务
func NewKnowledgeService(store knowledge.VectorStore, chunker *knowledge.Chunker, extractor extract.Extractor) *KnowledgeService {
	return &KnowledgeService{
		store:     store,
		chunker:   chunker,
		extractor: extractor,
	}
}

// BuildFromFiles 从参考文档构建用户的知识库，完全替换已有索引。
// 单个文件提取失败只记录日志并跳过，不中断整个构建。
func (s *KnowledgeService) BuildFromFiles(ctx context.Context, userID string, paths []string) (int, error) {
	if userID == "" {
		return 0, apperrors.NewValidationError("user id is empty")
	}

	var allChunks []knowledge.Chunk
	for _, path := range paths {
		name, text, err := s.extractor.Extract(path)
		if err != nil {
			logger.Warn("failed to extract document, skipping",
				zap.String("file", name),
				zap.Error(err))
			continue
		}
		chunks := s.chunker.Split(text, name)
		allChunks = append(allChunks, chunks...)
		logger.Info("processed document",
			zap.String("file", name),
			zap.Int("chunks", len(chunks)))
	}

	if len(allChunks) == 0 {
		return 0, apperrors.NewValidationError("no chunks extracted from reference documents")
	}

	logger.Info("building knowledge index",
		zap.String("user", userID),
		zap.Int("chunks", len(allChunks)))

	count, err := s.store.BuildIndex(ctx, userID, allChunks)
	if err != nil {
		return 0, err
	}

	logger.Info("knowledge index built",
		zap.String("user", userID),
		zap.Int("indexed", count))
	return count, nil
}

// Exists 检查用户知识库是否已构建
func (s *KnowledgeService) Exists(ctx context.Context, userID string) bool {
	return s.store.Exists(ctx, userID)
}

// Delete 删除用户知识库，返回是否实际删除了内容
func (s *KnowledgeService) Delete(ctx context.Context, userID string) (bool, error) {
	return s.store.Delete(ctx, userID)
}
