package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/sentrashield/backend-go/internal/errors"
)

// Extractor 从参考文档中提取纯文本。PDF/DOCX等格式的解析
// 由外部协作方完成，这里只约定契约。
type Extractor interface {
	// Supports 是否支持该文件名对应的格式
	Supports(filename string) bool
	// Extract 返回文档名与提取出的文本
	Extract(path string) (name string, text string, err error)
}

// TextExtractor 纯文本文件提取器，支持 .txt 和 .md
type TextExtractor struct{}

// NewTextExtractor 创建纯文本提取器
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

func (e *TextExtractor) Supports(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md":
		return true
	}
	return false
}

func (e *TextExtractor) Extract(path string) (string, string, error) {
	name := filepath.Base(path)
	if !e.Supports(name) {
		return name, "", apperrors.NewBusinessError(apperrors.ErrCodeExtractionFailed,
			fmt.Sprintf("unsupported file type: %s", name))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return name, "", apperrors.NewBusinessError(apperrors.ErrCodeExtractionFailed,
			fmt.Sprintf("failed to read %s", name)).WithCause(err)
	}
	return name, string(data), nil
}
