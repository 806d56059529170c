package knowledge

import (
	"strings"
)

// Chunk 表示带来源标记的文本分块
type Chunk struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// Chunker 按词窗口切分文本的分块器
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker 创建分块器
func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 600
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		// overlap必须小于chunkSize，否则窗口无法前进
		overlap = chunkSize / 4
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: overlap,
	}
}

// Split 将文本切分为带重叠的词窗口，空窗口被丢弃。
// 相同输入始终产生相同的分块序列。
func (c *Chunker) Split(text, source string) []Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := c.chunkSize - c.chunkOverlap
	var chunks []Chunk

	for start := 0; start < len(words); start += step {
		end := start + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunkText := strings.Join(words[start:end], " ")
		if strings.TrimSpace(chunkText) == "" {
			continue
		}
		chunks = append(chunks, Chunk{
			Text:   chunkText,
			Source: source,
		})
		if end == len(words) {
			break
		}
	}

	return chunks
}
