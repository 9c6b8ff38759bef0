// Package gate decides whether an inbound message deserves a generated
// reply at all. Hard rules run first; everything else falls through to
// question heuristics and the weighted-random roll.
package gate

import (
	"strings"
	"time"

	"snurbo/internal/analyzer"
	"snurbo/internal/session"
	"snurbo/internal/tracker"
)

// Config holds the empirically tuned admission thresholds. They are
// settings, not invariants; defaults mirror the shipped behavior.
type Config struct {
	BotName string

	// Question confidence cutoffs for threads and regular channels.
	ThreadQuestionConfidence float64
	QuestionConfidence       float64

	// Activity counts above which random admission is suppressed.
	BusyChannelCutoff int
	BusyThreadCutoff  int
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig(botName string) Config {
	return Config{
		BotName:                  botName,
		ThreadQuestionConfidence: 0.4,
		QuestionConfidence:       0.6,
		BusyChannelCutoff:        5,
		BusyThreadCutoff:         8,
	}
}

// Message carries the platform signals the gate needs.
type Message struct {
	Content     string
	AuthorID    string
	ChannelID   string
	IsDM        bool
	IsThread    bool
	MentionsBot bool
}

// Decision is the gate's verdict with a short reason for the logs.
type Decision struct {
	Should bool
	Reason string
}

// Gate composes the tracker and session store into the admission decision.
type Gate struct {
	cfg      Config
	activity *tracker.Tracker
	sessions *session.Store
}

// New creates a Gate.
func New(cfg Config, activity *tracker.Tracker, sessions *session.Store) *Gate {
	return &Gate{cfg: cfg, activity: activity, sessions: sessions}
}

// Decide runs the admission rules in order; the first match wins. It has
// no side effects: activity recording happens separately for every
// inbound message.
func (g *Gate) Decide(m Message, now time.Time) Decision {
	if m.IsDM {
		return Decision{Should: true, Reason: "direct_message"}
	}
	if m.MentionsBot {
		return Decision{Should: true, Reason: "mention"}
	}
	if g.cfg.BotName != "" && strings.Contains(strings.ToLower(m.Content), strings.ToLower(g.cfg.BotName)) {
		return Decision{Should: true, Reason: "name_mention"}
	}

	confidence := analyzer.QuestionConfidence(m.Content)
	activity := g.activity.ActivityCount(m.ChannelID, now)

	if m.IsThread {
		if confidence > g.cfg.ThreadQuestionConfidence {
			return Decision{Should: true, Reason: "thread_question"}
		}
		if activity >= g.cfg.BusyThreadCutoff {
			return Decision{Should: false, Reason: "thread_busy"}
		}
		return g.roll(m.Content)
	}

	if confidence > g.cfg.QuestionConfidence && activity < g.cfg.BusyChannelCutoff {
		return Decision{Should: true, Reason: "question"}
	}
	if activity >= g.cfg.BusyChannelCutoff {
		return Decision{Should: false, Reason: "channel_busy"}
	}
	return g.roll(m.Content)
}

func (g *Gate) roll(content string) Decision {
	if g.sessions.ShouldRespond(content) {
		return Decision{Should: true, Reason: "random"}
	}
	return Decision{Should: false, Reason: "random_declined"}
}
