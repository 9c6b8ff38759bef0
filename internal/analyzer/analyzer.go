// Package analyzer holds stateless heuristic classifiers over message text
// and short conversation windows. Rules live in data tables so weights can
// be tuned and tested independently of control flow.
package analyzer

import (
	"regexp"
	"strings"
)

var questionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\?\s*$`),
	regexp.MustCompile(`(?i)^(what|who|where|when|why|how|is|are|can|could|would|should|do|does|did)\b`),
	regexp.MustCompile(`(?i)\b(help me|explain|tell me|show me|any idea|anyone know)\b`),
}

// IsQuestion reports whether the message reads as a question.
func IsQuestion(content string) bool {
	content = strings.TrimSpace(content)
	for _, re := range questionPatterns {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}

// QuestionConfidence scores how strongly the message asks for an answer.
// Base 0.1, bonuses for question shape, length and help verbs. Capped at 1.
func QuestionConfidence(content string) float64 {
	score := 0.1
	if IsQuestion(content) {
		score += 0.4
	}
	if len(content) > 20 {
		score += 0.1
	}
	lower := strings.ToLower(content)
	if strings.Contains(lower, "help") || strings.Contains(lower, "explain") || strings.Contains(lower, "show") {
		score += 0.2
	}
	if strings.Contains(content, "?") {
		score += 0.2
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

var codePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(code|script|function|snippet|program|regex|query)\b`),
	regexp.MustCompile(`(?i)\b(write|fix|debug|refactor|implement|compile)\b.{0,30}\b(code|function|script|bug|program)\b`),
	regexp.MustCompile(`(?i)\bhow (do i|to) (write|program|implement|code)\b`),
	regexp.MustCompile("```"),
}

// RequiresCode reports whether the message asks for code assistance.
func RequiresCode(content string) bool {
	for _, re := range codePatterns {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}
