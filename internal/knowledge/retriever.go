package knowledge

import (
	"context"
	"fmt"
)

// SearchMatch 检索结果
type SearchMatch struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// Retriever 向量化问题并在索引中检索相关分块
type Retriever struct {
	embedder  Embedder
	topK      int
	threshold float64
}

// NewRetriever 创建检索器
func NewRetriever(embedder Embedder, topK int, threshold float64) *Retriever {
	if topK <= 0 {
		topK = 3
	}
	if threshold <= 0 {
		threshold = 0.35
	}
	return &Retriever{
		embedder:  embedder,
		topK:      topK,
		threshold: threshold,
	}
}

// Retrieve 返回得分不低于阈值的topK个分块，按得分降序排列。
// 没有分块达到阈值时返回空结果，不是错误。
func (r *Retriever) Retrieve(ctx context.Context, question string, index *VectorIndex, chunks []Chunk) ([]SearchMatch, error) {
	vec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	positions, scores := index.Search(vec, r.topK)

	results := make([]SearchMatch, 0, len(positions))
	for i, pos := range positions {
		score := float64(scores[i])
		if score < r.threshold || pos < 0 || pos >= len(chunks) {
			continue
		}
		results = append(results, SearchMatch{
			Text:   chunks[pos].Text,
			Source: chunks[pos].Source,
			Score:  score,
		})
	}
	return results, nil
}
