package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snurbo/internal/analyzer"
	"snurbo/internal/session"
)

func fixedBuilder(at time.Time) *Builder {
	b := NewBuilder()
	b.now = func() time.Time { return at }
	return b
}

func TestSystemSectionsInOrder(t *testing.T) {
	at := time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)
	b := fixedBuilder(at)

	ctx := session.Context{
		Profile: session.Profile{
			Name:               "ada",
			CommunicationStyle: "technical",
			PreferredTopics:    []string{"programming", "music"},
		},
	}
	sys := b.System(ctx, analyzer.DefenseResult{Tone: "neutral"}, nil, true)

	assert.Contains(t, sys, "Monday, March 10, 2025")
	assert.Contains(t, sys, "talks shop")
	assert.Contains(t, sys, "wants code")
	assert.Contains(t, sys, "talking to ada")
	assert.Contains(t, sys, "programming, music")

	// Order: persona before date, date before style, style before identity.
	assert.Less(t, strings.Index(sys, "snurbo"), strings.Index(sys, "March"))
	assert.Less(t, strings.Index(sys, "March"), strings.Index(sys, "talks shop"))
	assert.Less(t, strings.Index(sys, "talks shop"), strings.Index(sys, "talking to ada"))
}

func TestPatternHintsOmittedWhenNothingDetected(t *testing.T) {
	b := fixedBuilder(time.Now())
	sys := b.System(session.Context{Profile: session.Profile{CommunicationStyle: "formal"}},
		analyzer.DefenseResult{Tone: "neutral"}, nil, false)
	assert.NotContains(t, sys, "Context for this reply")
}

func TestPatternHintsPresent(t *testing.T) {
	b := fixedBuilder(time.Now())
	crit := &session.Message{Content: "snurbo is useless"}
	sys := b.System(session.Context{},
		analyzer.DefenseResult{Score: 0.8, DefendingBot: true, Tone: "joking"}, crit, false)
	assert.Contains(t, sys, "stood up for you")
	assert.Contains(t, sys, "recently criticized")
	assert.Contains(t, sys, "banter")
}

func TestMessagesLastSixTurnsPlusCurrent(t *testing.T) {
	b := fixedBuilder(time.Now())
	ctx := session.Context{}
	for i := 0; i < 10; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		ctx.Messages = append(ctx.Messages, session.Message{Role: role, Content: strings.Repeat("m", i+1)})
	}

	msgs := b.Messages(ctx, "current question", analyzer.DefenseResult{}, nil, false, "")
	require.Len(t, msgs, 8) // system + 6 history + current
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, strings.Repeat("m", 5), msgs[1].Content, "history window starts at turn 5")
	assert.Equal(t, "current question", msgs[7].Content)
}

func TestDateAnnotationDaysUntilJulyFourth(t *testing.T) {
	now := time.Date(2025, time.June, 30, 12, 0, 0, 0, time.UTC)

	note := DateAnnotation("how many days until july 4th", now)
	require.NotEmpty(t, note)
	assert.Contains(t, note, "exactly 4 days")
	assert.Contains(t, note, "July 4, 2025")

	// Named holiday wrapping to next year.
	note = DateAnnotation("how many days until christmas?", time.Date(2025, time.December, 26, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, note, "December 25, 2026")

	// Plain chat gets no annotation.
	assert.Empty(t, DateAnnotation("see you on july 4th", now))
}

func TestDateAnnotationSpansSpringForward(t *testing.T) {
	// March 1 to July 4 crosses a DST transition; the count must stay a
	// whole calendar-day count, not a truncated hour quotient.
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, loc)

	note := DateAnnotation("how many days until july 4th", now)
	require.NotEmpty(t, note)
	assert.Contains(t, note, "exactly 125 days")
	assert.Contains(t, note, "July 4, 2026")
}

func TestDateAnnotationLandsInUserMessage(t *testing.T) {
	now := time.Date(2025, time.June, 30, 12, 0, 0, 0, time.UTC)
	b := fixedBuilder(now)

	msgs := b.Messages(session.Context{}, "how many days until july 4th", analyzer.DefenseResult{}, nil, false, "")
	last := msgs[len(msgs)-1].Content
	assert.Contains(t, last, "exactly 4 days")
}
