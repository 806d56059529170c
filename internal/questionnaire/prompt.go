package questionnaire

import (
	"fmt"
	"strings"

	"github.com/sentrashield/backend-go/internal/knowledge"
)

// SystemPrompt RAG助手的固定系统指令
const SystemPrompt = `You are a compliance and security questionnaire assistant. Your task is to answer
questions using ONLY the provided context from reference documents.

Guidelines:
1. Be concise and factual
2. If the context does not contain enough information to answer the question, respond with exactly: Not found in references.
3. Do not make up information or infer beyond what's in the context
4. Focus on accuracy and cite relevant details when available
5. Format your answer as a complete, professional response suitable for a security questionnaire`

// buildContext 将检索到的分块按来源标注后拼接为上下文块
func buildContext(matches []knowledge.SearchMatch) string {
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, fmt.Sprintf("[%s]\n%s", m.Source, m.Text))
	}
	return strings.Join(parts, "\n\n")
}

// buildPrompt 由系统指令、上下文块和问题组成单条提示
func buildPrompt(question string, context string) string {
	return fmt.Sprintf("%s\n\nContext:\n%s\n\nQuestion: %s\n\nAnswer:", SystemPrompt, context, question)
}
