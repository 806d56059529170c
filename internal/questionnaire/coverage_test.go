package questionnaire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	records := []AnswerRecord{
		{Answer: "Yes, AES-256.", Confidence: 0.8},
		{Answer: NoContextResponse},
		{Answer: "TLS 1.3 in transit.", Confidence: 0.6},
		{Answer: NoContextResponse},
		{Answer: "Quarterly key rotation.", Confidence: 0.7},
	}

	summary := Summarize(records)
	assert.Equal(t, 5, summary.TotalQuestions)
	assert.Equal(t, 3, summary.Answered)
	assert.Equal(t, 2, summary.NotFound)
	assert.InDelta(t, 0.7, summary.AvgConfidence, 1e-9)
}

func TestSummarizeCountsDegradedAsAnswered(t *testing.T) {
	// 归类只按规范"未找到"文本精确比较，
	// 后端错误与不可用应答计入已回答
	records := []AnswerRecord{
		{Answer: UnavailableResponse},
		{Answer: "Error generating answer: rate limited"},
		{Answer: NoContextResponse},
	}

	summary := Summarize(records)
	assert.Equal(t, 2, summary.Answered)
	assert.Equal(t, 1, summary.NotFound)
	assert.Zero(t, summary.AvgConfidence)
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	assert.Zero(t, summary.TotalQuestions)
	assert.Zero(t, summary.Answered)
	assert.Zero(t, summary.NotFound)
	assert.Zero(t, summary.AvgConfidence)
}

func TestSummarizeAllNotFound(t *testing.T) {
	records := []AnswerRecord{
		{Answer: NoContextResponse},
		{Answer: NoContextResponse},
	}

	summary := Summarize(records)
	assert.Equal(t, 0, summary.Answered)
	assert.Equal(t, 2, summary.NotFound)
	assert.Zero(t, summary.AvgConfidence)
}
