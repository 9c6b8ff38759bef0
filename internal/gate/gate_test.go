package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"snurbo/internal/session"
	"snurbo/internal/tracker"
)

func newGate(baseChance float64) (*Gate, *tracker.Tracker) {
	tr := tracker.New()
	sessions := session.NewStore(10, baseChance)
	return New(DefaultConfig("snurbo"), tr, sessions), tr
}

func TestDirectMessageAlwaysAdmitted(t *testing.T) {
	g, _ := newGate(0) // random path would always decline
	for i := 0; i < 10; i++ {
		d := g.Decide(Message{Content: "x", IsDM: true}, time.Now())
		assert.True(t, d.Should)
		assert.Equal(t, "direct_message", d.Reason)
	}
}

func TestMentionAlwaysAdmitted(t *testing.T) {
	g, _ := newGate(0)
	for i := 0; i < 10; i++ {
		d := g.Decide(Message{Content: "x", MentionsBot: true}, time.Now())
		assert.True(t, d.Should)
		assert.Equal(t, "mention", d.Reason)
	}
}

func TestNameMentionAdmitted(t *testing.T) {
	g, _ := newGate(0)
	d := g.Decide(Message{Content: "i bet Snurbo knows this"}, time.Now())
	assert.True(t, d.Should)
	assert.Equal(t, "name_mention", d.Reason)
}

func TestQuietChannelQuestionAdmitted(t *testing.T) {
	g, _ := newGate(0)
	// Confidence 0.8 (> 0.6), empty channel.
	d := g.Decide(Message{Content: "how does the scheduler actually work?", ChannelID: "c"}, time.Now())
	assert.True(t, d.Should)
	assert.Equal(t, "question", d.Reason)
}

func TestBusyChannelSuppressesEverythingButHardRules(t *testing.T) {
	g, tr := newGate(1) // random path would always admit
	now := time.Now()
	for i := 0; i < 5; i++ {
		tr.RecordActivity("busy", now)
	}

	d := g.Decide(Message{Content: "how does the scheduler actually work?", ChannelID: "busy"}, now)
	assert.False(t, d.Should)
	assert.Equal(t, "channel_busy", d.Reason)

	// Hard rules still win in a busy channel.
	d = g.Decide(Message{Content: "x", ChannelID: "busy", MentionsBot: true}, now)
	assert.True(t, d.Should)
}

func TestThreadQuestionLowerBar(t *testing.T) {
	g, _ := newGate(0)
	// Confidence 0.6: admitted in a thread (> 0.4), not in a channel (not > 0.6).
	msg := "any idea where this goes"
	d := g.Decide(Message{Content: msg, ChannelID: "t", IsThread: true}, time.Now())
	assert.True(t, d.Should)
	assert.Equal(t, "thread_question", d.Reason)

	d = g.Decide(Message{Content: msg, ChannelID: "t"}, time.Now())
	assert.False(t, d.Should, "same confidence misses the channel bar")
}

func TestBusyThreadFallsToSuppression(t *testing.T) {
	g, tr := newGate(1)
	now := time.Now()
	for i := 0; i < 8; i++ {
		tr.RecordActivity("th", now)
	}
	// Not a question, thread at the cutoff: random admission suppressed.
	d := g.Decide(Message{Content: "just chatting over here", ChannelID: "th", IsThread: true}, now)
	assert.False(t, d.Should)
	assert.Equal(t, "thread_busy", d.Reason)
}

func TestRandomPathRespectsChance(t *testing.T) {
	admit, _ := newGate(1)
	d := admit.Decide(Message{Content: "just an ordinary remark here"}, time.Now())
	assert.True(t, d.Should)
	assert.Equal(t, "random", d.Reason)

	decline, _ := newGate(0)
	d = decline.Decide(Message{Content: "just an ordinary remark here"}, time.Now())
	assert.False(t, d.Should)
	assert.Equal(t, "random_declined", d.Reason)
}
