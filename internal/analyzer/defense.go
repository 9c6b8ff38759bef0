package analyzer

import (
	"regexp"
	"strings"

	"snurbo/internal/session"
)

// weightedPattern is one rule in an ordered table. The strongest matching
// weight wins, not the first.
type weightedPattern struct {
	re     *regexp.Regexp
	weight float64
}

var defensePatterns = []weightedPattern{
	{regexp.MustCompile(`(?i)\b(leave|let)\s+(him|her|them|it)\s+alone\b`), 0.9},
	{regexp.MustCompile(`(?i)\bstop\s+(messing|picking|making fun)\b`), 0.8},
	{regexp.MustCompile(`(?i)\bback\s+off\b`), 0.8},
	{regexp.MustCompile(`(?i)\b(defending|defend|sticking up for)\b`), 0.7},
	{regexp.MustCompile(`(?i)\b(he|she|it|they)('s| is| are)? (not|n't) (that )?(bad|stupid|dumb|useless)\b`), 0.7},
	{regexp.MustCompile(`(?i)\bbe nice\b`), 0.5},
}

var criticismWords = []string{
	"stupid", "dumb", "useless", "bad", "terrible", "awful",
	"annoying", "broken", "trash", "sucks", "worst",
}

// defenseWindow and criticismWindow bound how far back we scan.
const (
	defenseWindow   = 4
	criticismWindow = 10
)

// DefenseResult is the outcome of scanning recent user turns for someone
// standing up for the bot.
type DefenseResult struct {
	Score        float64
	DefendingBot bool
	Tone         string
}

// DetectDefense scans the last defenseWindow messages' user turns. The score
// is the maximum matched pattern weight; DefendingBot requires a bot
// reference alongside a score above 0.5. Tone comes from the latest turn.
func DetectDefense(history []session.Message, current, botName string) DefenseResult {
	window := lastUserContents(history, defenseWindow)
	window = append(window, current)

	res := DefenseResult{Tone: DetectTone(current)}
	for _, content := range window {
		for _, p := range defensePatterns {
			if p.re.MatchString(content) && p.weight > res.Score {
				res.Score = p.weight
			}
		}
		if res.Score > 0.5 && referencesBot(content, botName) {
			res.DefendingBot = true
		}
	}
	return res
}

// ShouldAcknowledgeSupport short-circuits generation with a canned
// thank-you when a user clearly defends the bot.
func ShouldAcknowledgeSupport(r DefenseResult) bool {
	return r.Score > 0.6 && r.DefendingBot
}

// FindPriorCriticism scans the last criticismWindow messages in reverse for
// a turn that both references the bot and uses criticism vocabulary.
// Returns nil when none matches.
func FindPriorCriticism(history []session.Message, botName string) *session.Message {
	start := len(history) - criticismWindow
	if start < 0 {
		start = 0
	}
	for i := len(history) - 1; i >= start; i-- {
		m := history[i]
		if m.Role != "user" || !referencesBot(m.Content, botName) {
			continue
		}
		lower := strings.ToLower(m.Content)
		for _, word := range criticismWords {
			if strings.Contains(lower, word) {
				found := m
				return &found
			}
		}
	}
	return nil
}

var excitedRe = regexp.MustCompile(`[!?]{2,}|[A-Z]{4,}`)

// DetectTone classifies emotional tone from surface markers.
func DetectTone(content string) string {
	lower := strings.ToLower(content)
	switch {
	case excitedRe.MatchString(content):
		return "excited"
	case strings.Contains(lower, "lol") || strings.Contains(lower, "lmao") ||
		strings.Contains(lower, "haha") || strings.Contains(lower, "😂"):
		return "joking"
	case strings.Contains(lower, "serious") || strings.Contains(lower, "important") ||
		strings.Contains(lower, "urgent"):
		return "serious"
	default:
		return "neutral"
	}
}

func lastUserContents(history []session.Message, n int) []string {
	start := len(history) - n
	if start < 0 {
		start = 0
	}
	var out []string
	for _, m := range history[start:] {
		if m.Role == "user" {
			out = append(out, m.Content)
		}
	}
	return out
}

func referencesBot(content, botName string) bool {
	lower := strings.ToLower(content)
	if botName != "" && strings.Contains(lower, strings.ToLower(botName)) {
		return true
	}
	return strings.Contains(lower, "the bot") || strings.Contains(lower, "this bot")
}
