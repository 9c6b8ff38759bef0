// Package prompt assembles the system instruction block and the message
// list sent to the inference backend.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"snurbo/internal/analyzer"
	"snurbo/internal/ollama"
	"snurbo/internal/session"
)

// historyTurns is how many recent turns go to the model verbatim.
const historyTurns = 6

const basePersona = `You are snurbo, a laid-back regular in this chat. You are helpful but never stiff: keep replies short, conversational and in lowercase unless the topic calls for precision. Do not announce that you are an AI. Do not use bullet points for casual chat.`

// Builder turns session state and analysis into model-ready messages.
type Builder struct {
	persona string
	now     func() time.Time
}

// NewBuilder creates a Builder with the default persona.
func NewBuilder() *Builder {
	return &Builder{persona: basePersona, now: time.Now}
}

// System builds the system instruction block in fixed order: persona,
// current date/time, pattern hints, style addendum, code addendum, user
// identity. Sections with nothing to say are omitted.
func (b *Builder) System(ctx session.Context, res analyzer.DefenseResult, criticism *session.Message, needsCode bool) string {
	var sb strings.Builder
	sb.WriteString(b.persona)
	sb.WriteString("\n\n")

	now := b.now()
	sb.WriteString(fmt.Sprintf("Current date and time: %s. When the user asks about relative dates (tomorrow, next week, days until), compute from this exact reference point.\n",
		now.Format("Monday, January 2, 2006 at 3:04 PM")))

	if hints := patternHints(res, criticism); hints != "" {
		sb.WriteString("\n")
		sb.WriteString(hints)
		sb.WriteString("\n")
	}

	switch ctx.Profile.CommunicationStyle {
	case "technical":
		sb.WriteString("\nThe user talks shop. Be precise, use correct terminology, and don't dumb things down.\n")
	case "casual":
		sb.WriteString("\nKeep it loose and friendly, like chatting with a friend.\n")
	}

	if needsCode {
		sb.WriteString("\nThe user wants code. Give a working snippet first, a one-line explanation after. Wrap code in fenced blocks.\n")
	}

	if ctx.Profile.Name != "" {
		sb.WriteString(fmt.Sprintf("\nYou are talking to %s.", ctx.Profile.Name))
		if len(ctx.Profile.PreferredTopics) > 0 {
			sb.WriteString(fmt.Sprintf(" They tend to bring up: %s.", strings.Join(ctx.Profile.PreferredTopics, ", ")))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// patternHints phrases detected conversational patterns as context, not
// commands. Empty when nothing was detected.
func patternHints(res analyzer.DefenseResult, criticism *session.Message) string {
	var hints []string
	if res.DefendingBot && res.Score > 0.5 {
		hints = append(hints, "someone in the chat just stood up for you; a brief, genuine acknowledgement fits")
	}
	if criticism != nil {
		hints = append(hints, "you were recently criticized in this conversation; stay unbothered and good-humored about it")
	}
	switch res.Tone {
	case "excited":
		hints = append(hints, "the mood is excited, match the energy")
	case "joking":
		hints = append(hints, "the mood is jokey, banter is welcome")
	case "serious":
		hints = append(hints, "the user is being serious, skip the jokes")
	}
	if len(hints) == 0 {
		return ""
	}
	return "Context for this reply: " + strings.Join(hints, "; ") + "."
}

// Messages builds the ordered list for the backend: system block, the most
// recent history turns verbatim, then the current user message with an
// optional date-arithmetic annotation.
func (b *Builder) Messages(ctx session.Context, current string, res analyzer.DefenseResult, criticism *session.Message, needsCode bool, extraContext string) []ollama.Message {
	system := b.System(ctx, res, criticism, needsCode)
	if extraContext != "" {
		system += "\nRelevant reference material:\n" + extraContext + "\n"
	}
	msgs := []ollama.Message{{Role: "system", Content: system}}

	history := ctx.Messages
	if len(history) > historyTurns {
		history = history[len(history)-historyTurns:]
	}
	for _, m := range history {
		msgs = append(msgs, ollama.Message{Role: m.Role, Content: m.Content})
	}

	user := current
	if note := DateAnnotation(current, b.now()); note != "" {
		user += "\n\n[" + note + "]"
	}
	msgs = append(msgs, ollama.Message{Role: "user", Content: user})
	return msgs
}
