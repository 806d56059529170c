package questionnaire

// CoverageSummary 一批应答记录的覆盖率统计
type CoverageSummary struct {
	TotalQuestions int     `json:"total_questions"`
	Answered       int     `json:"answered"`
	NotFound       int     `json:"not_found"`
	AvgConfidence  float64 `json:"avg_confidence"`
}

// Summarize 统计批次覆盖率。归类按应答文本与规范"未找到"文本的
// 精确比较，不依赖置信度；平均置信度只在已回答的记录上计算。
func Summarize(records []AnswerRecord) CoverageSummary {
	summary := CoverageSummary{TotalQuestions: len(records)}

	var confidenceSum float64
	for _, r := range records {
		if r.Answer == NoContextResponse {
			summary.NotFound++
			continue
		}
		summary.Answered++
		confidenceSum += r.Confidence
	}

	if summary.Answered > 0 {
		summary.AvgConfidence = round2(confidenceSum / float64(summary.Answered))
	}
	return summary
}
