package services

import (
	"context"

	apperrors "github.com/sentrashield/backend-go/internal/errors"
	"github.com/sentrashield/backend-go/internal/knowledge"
	"github.com/sentrashield/backend-go/internal/llm"
	"github.com/sentrashield/backend-go/internal/logger"
	"github.com/sentrashield/backend-go/internal/questionnaire"
	"go.uber.org/zap"
)

// AnswerService 问卷应答服务：检索用户知识库并批量生成答案
type AnswerService struct {
	store     knowledge.VectorStore
	gateway   *llm.Gateway
	topK      int
	threshold float64
}

// NewAnswerService 创建问卷应答服务
func NewAnswerService(store knowledge.VectorStore, gateway *llm.Gateway, topK int, threshold float64) *AnswerService {
	if topK <= 0 {
		topK = 3
	}
	if threshold <= 0 {
		threshold = 0.35
	}
	return &AnswerService{
		store:     store,
		gateway:   gateway,
		topK:      topK,
		threshold: threshold,
	}
}

// storeRetriever 将按用户隔离的向量存储适配为问题检索器
type storeRetriever struct {
	store     knowledge.VectorStore
	userID    string
	topK      int
	threshold float64
}

func (r *storeRetriever) Retrieve(ctx context.Context, question string) ([]knowledge.SearchMatch, error) {
	return r.store.Search(ctx, r.userID, question, r.topK, r.threshold)
}

// Run 为一份问卷批量生成应答并统计覆盖率。
// 用户知识库不存在时返回INDEX_NOT_FOUND，调用方应先构建知识库。
func (s *AnswerService) Run(ctx context.Context, userID string, questions []questionnaire.Question, onProgress func(float64)) ([]questionnaire.AnswerRecord, questionnaire.CoverageSummary, error) {
	if !s.store.Exists(ctx, userID) {
		return nil, questionnaire.CoverageSummary{}, apperrors.NewIndexNotFoundError(userID)
	}

	synth := questionnaire.NewSynthesizer(&storeRetriever{
		store:     s.store,
		userID:    userID,
		topK:      s.topK,
		threshold: s.threshold,
	}, s.gateway)

	logger.Info("answering questionnaire",
		zap.String("user", userID),
		zap.Int("questions", len(questions)))

	records := synth.BatchAnswer(ctx, questions, onProgress)
	summary := questionnaire.Summarize(records)

	logger.Info("questionnaire answered",
		zap.String("user", userID),
		zap.Int("answered", summary.Answered),
		zap.Int("not_found", summary.NotFound),
		zap.Float64("avg_confidence", summary.AvgConfidence))

	return records, summary, nil
}
