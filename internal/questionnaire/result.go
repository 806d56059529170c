package questionnaire

import (
	"math"

	"github.com/sentrashield/backend-go/internal/knowledge"
)

// 降级路径使用的固定应答文本。覆盖率统计按字面值精确比较，
// 这些文本不可改动，否则已落库的历史记录会被错误归类。
const (
	// NoContextResponse 检索无结果时的规范应答
	NoContextResponse = "Not found in references."
	// UnavailableResponse 无生成后端可用时的应答
	UnavailableResponse = "No LLM available. Please configure GROQ_API_KEY or start Ollama."
	// errorResponsePrefix 后端调用失败时的应答前缀，后接诊断信息
	errorResponsePrefix = "Error generating answer: "
)

const snippetLimit = 300

// OutcomeKind 应答结果的内部分类
type OutcomeKind int

const (
	OutcomeAnswered OutcomeKind = iota
	OutcomeNotFound
	OutcomeUnavailable
	OutcomeBackendError
)

// Outcome 单个问题的应答结果。内部流转只依赖Kind，
// 固定应答文本仅在Record序列化时产生。
type Outcome struct {
	Kind    OutcomeKind
	Text    string // Answered时为生成文本，BackendError时为诊断信息
	Matches []knowledge.SearchMatch
}

// AnswerRecord 对外输出的应答记录
type AnswerRecord struct {
	Number     int     `json:"number,omitempty"`
	Question   string  `json:"question,omitempty"`
	Answer     string  `json:"answer"`
	Citation   string  `json:"citation"`
	Confidence float64 `json:"confidence"`
	Snippet    string  `json:"snippet"`
}

// Record 将内部结果序列化为应答记录
func (o Outcome) Record() AnswerRecord {
	switch o.Kind {
	case OutcomeNotFound:
		return AnswerRecord{
			Answer:   NoContextResponse,
			Citation: "N/A",
		}
	case OutcomeUnavailable:
		return AnswerRecord{
			Answer:   UnavailableResponse,
			Citation: "N/A",
		}
	case OutcomeBackendError:
		return AnswerRecord{
			Answer:   errorResponsePrefix + o.Text,
			Citation: "N/A",
		}
	}

	return AnswerRecord{
		Answer:     o.Text,
		Citation:   citation(o.Matches),
		Confidence: confidence(o.Matches),
		Snippet:    snippet(o.Matches),
	}
}

// citation 去重且保持顺序的来源列表，逗号连接
func citation(matches []knowledge.SearchMatch) string {
	seen := make(map[string]struct{}, len(matches))
	var out string
	for _, m := range matches {
		if _, ok := seen[m.Source]; ok {
			continue
		}
		seen[m.Source] = struct{}{}
		if out != "" {
			out += ", "
		}
		out += m.Source
	}
	return out
}

// confidence 检索得分的均值，保留两位小数
func confidence(matches []knowledge.SearchMatch) float64 {
	if len(matches) == 0 {
		return 0
	}
	var sum float64
	for _, m := range matches {
		sum += m.Score
	}
	return round2(sum / float64(len(matches)))
}

// snippet 排名最高分块的前300个字符，附省略号
func snippet(matches []knowledge.SearchMatch) string {
	if len(matches) == 0 || matches[0].Text == "" {
		return ""
	}
	runes := []rune(matches[0].Text)
	if len(runes) > snippetLimit {
		runes = runes[:snippetLimit]
	}
	return string(runes) + "..."
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
