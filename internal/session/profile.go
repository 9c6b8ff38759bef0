package session

import (
	"regexp"
	"strings"
)

// Style classification is recomputed from the latest message only, not
// merged with history. Technical vocabulary wins over formal politeness.
var (
	technicalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(code|function|bug|api|database|server|deploy|compile|algorithm|framework|library|repo|git)\b`),
		regexp.MustCompile(`(?i)\b(javascript|python|golang|typescript|rust|java|sql|docker|kubernetes|linux)\b`),
	}
	formalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(please|kindly|would you|could you|thank you|appreciate|regards)\b`),
	}
	casualPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(lol|lmao|haha|yo|sup|dude|bro|nah|yeah|gonna|wanna)\b`),
	}
)

func classifyStyle(content string) string {
	for _, re := range technicalPatterns {
		if re.MatchString(content) {
			return "technical"
		}
	}
	formal := false
	for _, re := range formalPatterns {
		if re.MatchString(content) {
			formal = true
			break
		}
	}
	for _, re := range casualPatterns {
		if re.MatchString(content) {
			return "casual"
		}
	}
	if formal {
		return "formal"
	}
	return "casual"
}

// topicVocabulary is the fixed list of interests we track per user.
var topicVocabulary = []string{
	"programming", "gaming", "music", "movies", "anime", "food",
	"sports", "travel", "books", "crypto", "ai", "hardware",
	"cooking", "photography", "fitness",
}

// matchTopics returns vocabulary words present in the message, in
// vocabulary order.
func matchTopics(content string) []string {
	lower := strings.ToLower(content)
	var found []string
	for _, topic := range topicVocabulary {
		if strings.Contains(lower, topic) {
			found = append(found, topic)
		}
	}
	return found
}
