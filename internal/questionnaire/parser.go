package questionnaire

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// 1. 或 1) 开头的行
	numberedLinePattern = regexp.MustCompile(`^(\d+)[.)]\s+(.*)$`)
	// Question 1: 格式
	questionLinePattern = regexp.MustCompile(`^Question\s+(\d+)[:.]?\s*(.*)$`)
)

// ParseQuestions 从纯文本中提取带编号的问题序列。
// 优先匹配 "1." / "1)" 行格式，没有命中时回退到 "Question 1:" 格式；
// 跨行的问题文本会折叠为单行。结果按编号升序排列，重复编号保留首次出现。
func ParseQuestions(text string) []Question {
	questions := parseWithPattern(text, numberedLinePattern)
	if len(questions) == 0 {
		questions = parseWithPattern(text, questionLinePattern)
	}

	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Number < questions[j].Number
	})

	seen := make(map[int]struct{}, len(questions))
	unique := make([]Question, 0, len(questions))
	for _, q := range questions {
		if _, ok := seen[q.Number]; ok {
			continue
		}
		seen[q.Number] = struct{}{}
		unique = append(unique, q)
	}
	return unique
}

// parseWithPattern 逐行扫描：命中模式的行开启新问题，
// 其余行追加到当前问题，直到下一个命中行
func parseWithPattern(text string, pattern *regexp.Regexp) []Question {
	var questions []Question
	var current *Question
	var parts []string

	flush := func() {
		if current == nil {
			return
		}
		current.Question = strings.TrimSpace(strings.Join(parts, " "))
		if current.Question != "" {
			questions = append(questions, *current)
		}
		current = nil
		parts = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if m := pattern.FindStringSubmatch(line); m != nil {
			flush()
			num, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			current = &Question{Number: num}
			parts = []string{m[2]}
			continue
		}
		if current != nil && line != "" {
			parts = append(parts, line)
		}
	}
	flush()

	return questions
}
