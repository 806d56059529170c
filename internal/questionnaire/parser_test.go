package questionnaire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumberedQuestions(t *testing.T) {
	text := `1. Is data encrypted at rest?
2) How are encryption keys managed?
3. Do you have an incident response plan?`

	questions := ParseQuestions(text)
	require.Len(t, questions, 3)
	assert.Equal(t, Question{Number: 1, Question: "Is data encrypted at rest?"}, questions[0])
	assert.Equal(t, Question{Number: 2, Question: "How are encryption keys managed?"}, questions[1])
	assert.Equal(t, Question{Number: 3, Question: "Do you have an incident response plan?"}, questions[2])
}

func TestParseQuestionPrefixFormat(t *testing.T) {
	text := `Question 1: Is data encrypted at rest?
Question 2. How are keys rotated?
Question 3 Do you run penetration tests?`

	questions := ParseQuestions(text)
	require.Len(t, questions, 3)
	assert.Equal(t, "Is data encrypted at rest?", questions[0].Question)
	assert.Equal(t, "How are keys rotated?", questions[1].Question)
	assert.Equal(t, "Do you run penetration tests?", questions[2].Question)
}

func TestParseMultilineQuestion(t *testing.T) {
	text := `1. Is customer data encrypted
at rest and in transit across
all storage systems?
2. Second question?`

	questions := ParseQuestions(text)
	require.Len(t, questions, 2)
	assert.Equal(t, "Is customer data encrypted at rest and in transit across all storage systems?", questions[0].Question)
}

func TestParseSortsAndDedupes(t *testing.T) {
	text := `3. Third question?
1. First question?
3. Duplicate of third?
2. Second question?`

	questions := ParseQuestions(text)
	require.Len(t, questions, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{questions[0].Number, questions[1].Number, questions[2].Number})
	// 重复编号保留首次出现
	assert.Equal(t, "Third question?", questions[2].Question)
}

func TestParsePrefersNumberedFormat(t *testing.T) {
	text := `1. Numbered question?
Question 2: Prefixed question?`

	questions := ParseQuestions(text)
	require.Len(t, questions, 1)
	assert.Equal(t, 1, questions[0].Number)
	assert.Contains(t, questions[0].Question, "Numbered question?")
}

func TestParseIgnoresNoise(t *testing.T) {
	text := `Security Questionnaire

Please answer the following.

1. Is data encrypted?

Thank you.`

	questions := ParseQuestions(text)
	require.Len(t, questions, 1)
	// 命中行之后的孤立文本折叠进当前问题
	assert.Contains(t, questions[0].Question, "Is data encrypted?")
}

func TestParseEmptyInput(t *testing.T) {
	assert.Empty(t, ParseQuestions(""))
	assert.Empty(t, ParseQuestions("no questions here\njust prose"))
}
