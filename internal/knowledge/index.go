package knowledge

import (
	"fmt"
	"sort"
)

// VectorIndex 基于内积的平坦向量索引。
// 所有向量均为单位向量时，内积即余弦相似度。
// 第i行向量始终对应分块序列中的第i个分块。
type VectorIndex struct {
	dim     int
	vectors [][]float32
}

// NewVectorIndex 创建指定维度的空索引
func NewVectorIndex(dim int) *VectorIndex {
	return &VectorIndex{dim: dim}
}

// Dim 返回索引维度
func (ix *VectorIndex) Dim() int {
	return ix.dim
}

// Len 返回索引中的向量数量
func (ix *VectorIndex) Len() int {
	return len(ix.vectors)
}

// Add 按顺序追加向量
func (ix *VectorIndex) Add(vectors ...[]float32) error {
	for _, v := range vectors {
		if len(v) != ix.dim {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d", ix.dim, len(v))
		}
		row := make([]float32, len(v))
		copy(row, v)
		ix.vectors = append(ix.vectors, row)
	}
	return nil
}

// Search 返回与查询向量内积最大的topK个位置及其得分，按得分降序排列
func (ix *VectorIndex) Search(query []float32, topK int) ([]int, []float32) {
	if len(query) != ix.dim || ix.Len() == 0 || topK <= 0 {
		return nil, nil
	}

	type hit struct {
		pos   int
		score float32
	}
	hits := make([]hit, 0, ix.Len())
	for i, row := range ix.vectors {
		hits = append(hits, hit{pos: i, score: innerProduct(query, row)})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})
	if topK < len(hits) {
		hits = hits[:topK]
	}

	positions := make([]int, len(hits))
	scores := make([]float32, len(hits))
	for i, h := range hits {
		positions[i] = h.pos
		scores[i] = h.score
	}
	return positions, scores
}

func innerProduct(a, b []float32) float32 {
	var dot float32
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot
}
