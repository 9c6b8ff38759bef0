package session

import "time"

// Message is one conversational turn. Immutable once appended.
type Message struct {
	Content   string
	Role      string // "user" | "assistant"
	Timestamp time.Time
	UserID    string
}

// Profile is the inferred user profile, recomputed as the user talks.
// PreferredTopics only grows, capped at maxTopics, insertion order kept.
type Profile struct {
	Name               string
	PreferredTopics    []string
	CommunicationStyle string // "casual" | "formal" | "technical"
	LastSeen           time.Time
}

// ThreadContext is attached once when the platform reports thread metadata.
// Never cleared afterwards.
type ThreadContext struct {
	IsThread        bool
	ParentChannelID string
	ThreadName      string
}

// Context is the per (user, channel) conversational memory. Owned by Store;
// callers receive snapshots, mutation goes through Store methods only.
type Context struct {
	UserID          string
	ChannelID       string
	Messages        []Message
	LastInteraction time.Time
	Profile         Profile
	Thread          *ThreadContext
}
