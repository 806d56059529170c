package questionnaire

import (
	"context"

	apperrors "github.com/sentrashield/backend-go/internal/errors"
	"github.com/sentrashield/backend-go/internal/knowledge"
	"github.com/sentrashield/backend-go/internal/llm"
	"github.com/sentrashield/backend-go/internal/logger"
	"go.uber.org/zap"
)

// Retriever 为问题检索相关上下文分块
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]knowledge.SearchMatch, error)
}

// IndexRetriever 绑定已加载索引与分块序列的检索器适配
type IndexRetriever struct {
	Inner  *knowledge.Retriever
	Index  *knowledge.VectorIndex
	Chunks []knowledge.Chunk
}

func (r *IndexRetriever) Retrieve(ctx context.Context, question string) ([]knowledge.SearchMatch, error) {
	return r.Inner.Retrieve(ctx, question, r.Index, r.Chunks)
}

// Synthesizer 编排检索与生成，产出带置信度和引用的应答记录
type Synthesizer struct {
	retriever Retriever
	gateway   *llm.Gateway
}

// NewSynthesizer 创建应答合成器
func NewSynthesizer(retriever Retriever, gateway *llm.Gateway) *Synthesizer {
	return &Synthesizer{
		retriever: retriever,
		gateway:   gateway,
	}
}

// Answer 为单个问题生成应答记录。所有失败路径都降级为
// 固定文本的记录，不向上返回错误。
func (s *Synthesizer) Answer(ctx context.Context, question string) AnswerRecord {
	return s.answer(ctx, question).Record()
}

func (s *Synthesizer) answer(ctx context.Context, question string) Outcome {
	// 无可用后端时直接返回，不做检索
	gen, err := s.gateway.Pick(ctx)
	if err != nil {
		return Outcome{Kind: OutcomeUnavailable}
	}

	matches, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		logger.Warn("retrieval failed", zap.Error(err))
		return Outcome{Kind: OutcomeBackendError, Text: apperrors.GetAppError(err).Error()}
	}
	if len(matches) == 0 {
		return Outcome{Kind: OutcomeNotFound}
	}

	prompt := buildPrompt(question, buildContext(matches))
	answer, err := gen.Generate(ctx, prompt)
	if err != nil {
		logger.Warn("generation failed",
			zap.String("backend", gen.Name()),
			zap.Error(err))
		return Outcome{Kind: OutcomeBackendError, Text: err.Error(), Matches: matches}
	}

	return Outcome{Kind: OutcomeAnswered, Text: answer, Matches: matches}
}

// Question 带编号的问卷问题
type Question struct {
	Number   int    `json:"number"`
	Question string `json:"question"`
}

// BatchAnswer 按输入顺序逐个生成应答，单个问题失败不会中断批次。
// onProgress非空时在每个问题完成后收到[0,1]的完成比例。
func (s *Synthesizer) BatchAnswer(ctx context.Context, questions []Question, onProgress func(float64)) []AnswerRecord {
	records := make([]AnswerRecord, 0, len(questions))
	total := len(questions)

	for i, q := range questions {
		record := s.Answer(ctx, q.Question)
		record.Number = q.Number
		record.Question = q.Question
		records = append(records, record)

		if onProgress != nil {
			onProgress(float64(i+1) / float64(total))
		}
	}
	return records
}
