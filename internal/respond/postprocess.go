// Package respond cleans up raw model completions for the chat platform:
// reasoning-block stripping, code fencing, markdown normalization and
// length enforcement.
package respond

import (
	"math/rand"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxMessageLength is the platform's hard ceiling.
	MaxMessageLength = 2000

	// Soft limits before the hard ceiling: plain chat stays short, code
	// answers get room.
	maxPlainLength = 600
	maxCodeLength  = 1900

	truncationMarker = "…"
	emojiChance      = 0.08
)

// Processor post-processes completions. The random source drives the
// occasional reaction emoji and is injectable for tests.
type Processor struct {
	rng *rand.Rand
}

// NewProcessor creates a Processor with its own random source.
func NewProcessor(rng *rand.Rand) *Processor {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Processor{rng: rng}
}

var reasoningRe = regexp.MustCompile(`(?s)<(think|thinking|reasoning|reflection)>.*?</(think|thinking|reasoning|reflection)>`)

// Process runs the full pipeline over a raw completion.
func (p *Processor) Process(raw string, needsCode bool) string {
	text := stripReasoning(raw)
	text = formatCode(text)
	text = normalizeMarkdown(text)

	hasCode := needsCode || strings.Contains(text, "```")
	text = limitLength(text, hasCode)
	text = enforceCeiling(text)

	if !hasCode && p.rng.Float64() < emojiChance {
		text = appendEmoji(text, p.rng)
	}
	return strings.TrimSpace(text)
}

// stripReasoning removes hidden chain-of-thought blocks some models emit.
func stripReasoning(s string) string {
	s = reasoningRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

var codeMarkers = []string{
	"func ", "def ", "class ", "import ", "#include", "package ",
	"const ", "let ", "var ", "return ", "=> {", "fn ", "pub fn",
	"SELECT ", "public static",
}

// looksLikeCode is a cheap structural check: known keywords plus braces,
// semicolons or indented lines.
func looksLikeCode(s string) bool {
	hits := 0
	for _, marker := range codeMarkers {
		if strings.Contains(s, marker) {
			hits++
		}
	}
	if hits == 0 {
		return false
	}
	structural := strings.Count(s, "{") + strings.Count(s, ";") + strings.Count(s, "\n    ")
	return hits >= 2 || structural >= 2
}

// formatCode fences code-like responses. Already-fenced text is left alone;
// short fragments get inline backticks instead of a block.
func formatCode(s string) string {
	if strings.Contains(s, "```") {
		return s
	}
	if !looksLikeCode(s) {
		return s
	}
	if len(s) < 60 && !strings.Contains(s, "\n") {
		return "`" + s + "`"
	}
	return "```" + guessLanguage(s) + "\n" + strings.TrimSpace(s) + "\n```"
}

type langCue struct {
	lang string
	res  []*regexp.Regexp
}

// Ordered cues; first language with a matching cue wins.
var langCues = []langCue{
	{"go", []*regexp.Regexp{regexp.MustCompile(`\bfunc \w+\(`), regexp.MustCompile(`\bpackage \w+`), regexp.MustCompile(`:=`)}},
	{"python", []*regexp.Regexp{regexp.MustCompile(`\bdef \w+\(`), regexp.MustCompile(`\bimport \w+\n`), regexp.MustCompile(`\bprint\(`)}},
	{"rust", []*regexp.Regexp{regexp.MustCompile(`\bfn \w+\(`), regexp.MustCompile(`\blet mut\b`), regexp.MustCompile(`println!`)}},
	{"java", []*regexp.Regexp{regexp.MustCompile(`public (static|class)`), regexp.MustCompile(`System\.out\.println`)}},
	{"typescript", []*regexp.Regexp{regexp.MustCompile(`: (string|number|boolean)\b`), regexp.MustCompile(`\binterface \w+ \{`)}},
	{"javascript", []*regexp.Regexp{regexp.MustCompile(`\bconst \w+ =`), regexp.MustCompile(`=> \{`), regexp.MustCompile(`console\.log`)}},
	{"c", []*regexp.Regexp{regexp.MustCompile(`#include <\w+\.h>`), regexp.MustCompile(`\bprintf\(`)}},
	{"cpp", []*regexp.Regexp{regexp.MustCompile(`#include <iostream>`), regexp.MustCompile(`std::`)}},
	{"sql", []*regexp.Regexp{regexp.MustCompile(`(?i)\bSELECT .+ FROM\b`), regexp.MustCompile(`(?i)\bINSERT INTO\b`)}},
	{"bash", []*regexp.Regexp{regexp.MustCompile(`^#!/bin/(ba)?sh`), regexp.MustCompile(`\becho \$`)}},
}

func guessLanguage(s string) string {
	for _, cue := range langCues {
		for _, re := range cue.res {
			if re.MatchString(s) {
				return cue.lang
			}
		}
	}
	return ""
}

var headingRe = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)
var blankRe = regexp.MustCompile(`\n{3,}`)

// normalizeMarkdown collapses heading markers to bold and squeezes runs of
// blank lines. Headings look out of place in chat.
func normalizeMarkdown(s string) string {
	s = headingRe.ReplaceAllString(s, "**$1**")
	s = blankRe.ReplaceAllString(s, "\n\n")
	return s
}

var sentenceEndRe = regexp.MustCompile(`[.!?](\s|$)`)

// limitLength trims over-long plain replies to the first couple of complete
// sentences. Fenced code is never cut at the soft limit.
func limitLength(s string, hasCode bool) string {
	limit := maxPlainLength
	if hasCode {
		limit = maxCodeLength
	}
	if len(s) <= limit || strings.Contains(s, "```") {
		return s
	}
	// Keep up to two complete sentences that fit under the limit.
	locs := sentenceEndRe.FindAllStringIndex(s, 3)
	cut := 0
	for i, loc := range locs {
		if loc[0]+1 > limit || i >= 2 {
			break
		}
		cut = loc[0] + 1
	}
	if cut > 0 {
		return strings.TrimSpace(s[:cut])
	}
	return strings.TrimSpace(truncateRunes(s, limit)) + truncationMarker
}

// enforceCeiling applies the platform hard limit, preferring to cut at a
// line break, and marks the truncation. The limit counts characters, not
// bytes, and cuts never land inside a rune.
func enforceCeiling(s string) string {
	if utf8.RuneCountInString(s) <= MaxMessageLength {
		return s
	}
	head := truncateRunes(s, MaxMessageLength-utf8.RuneCountInString(truncationMarker))
	if cut := strings.LastIndex(head, "\n"); cut >= len(head)/2 {
		head = head[:cut]
	}
	return strings.TrimSpace(head) + truncationMarker
}

// truncateRunes cuts s to at most n characters on a rune boundary.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

var reactionEmoji = []string{"👍", "😄", "🙂", "✨", "🤔", "😎"}

func appendEmoji(s string, rng *rand.Rand) string {
	return s + " " + reactionEmoji[rng.Intn(len(reactionEmoji))]
}
