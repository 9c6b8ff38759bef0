package session

import (
	"context"
	"log"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"
)

const (
	// IdleEviction is how long a context may sit untouched before the sweep
	// drops it.
	IdleEviction = 24 * time.Hour

	sweepInterval = time.Hour
	maxTopics     = 10
)

// Store holds all conversation contexts. Safe for concurrent use; the
// underlying map is never handed out.
type Store struct {
	mu          sync.Mutex
	contexts    map[string]*Context
	maxMessages int
	baseChance  float64

	rng *rand.Rand
	now func() time.Time
}

// NewStore creates a Store. maxMessages caps per-context history,
// baseChance is the base probability for weighted-random replies.
func NewStore(maxMessages int, baseChance float64) *Store {
	if maxMessages <= 0 {
		maxMessages = 10
	}
	return &Store{
		contexts:    make(map[string]*Context),
		maxMessages: maxMessages,
		baseChance:  baseChance,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		now:         time.Now,
	}
}

func key(userID, channelID string) string {
	return userID + "-" + channelID
}

// Get returns a snapshot of the context for (userID, channelID), creating a
// fresh one with a default casual profile if absent. Always refreshes
// LastInteraction.
func (s *Store) Get(userID, channelID string) Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.locked(userID, channelID)
	c.LastInteraction = s.now()
	return snapshot(c)
}

// locked returns or creates the owned context. Caller holds s.mu.
func (s *Store) locked(userID, channelID string) *Context {
	k := key(userID, channelID)
	c, ok := s.contexts[k]
	if !ok {
		c = &Context{
			UserID:    userID,
			ChannelID: channelID,
			Profile:   Profile{CommunicationStyle: "casual"},
		}
		s.contexts[k] = c
	}
	return c
}

func snapshot(c *Context) Context {
	out := *c
	out.Messages = append([]Message(nil), c.Messages...)
	out.Profile.PreferredTopics = append([]string(nil), c.Profile.PreferredTopics...)
	if c.Thread != nil {
		th := *c.Thread
		out.Thread = &th
	}
	return out
}

// Update appends the user and assistant turns, enforces the history cap
// (oldest dropped first) and recomputes the profile from the user message.
func (s *Store) Update(userID, channelID, userMsg, botMsg string) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.locked(userID, channelID)

	c.Messages = append(c.Messages,
		Message{Content: userMsg, Role: "user", Timestamp: now, UserID: userID},
		Message{Content: botMsg, Role: "assistant", Timestamp: now, UserID: "bot"},
	)
	if over := len(c.Messages) - s.maxMessages; over > 0 {
		c.Messages = append([]Message(nil), c.Messages[over:]...)
	}
	c.LastInteraction = now

	c.Profile.CommunicationStyle = classifyStyle(userMsg)
	c.Profile.LastSeen = now
	for _, topic := range matchTopics(userMsg) {
		if len(c.Profile.PreferredTopics) >= maxTopics {
			break
		}
		if !contains(c.Profile.PreferredTopics, topic) {
			c.Profile.PreferredTopics = append(c.Profile.PreferredTopics, topic)
		}
	}
}

// SetName records the user's display name on the profile.
func (s *Store) SetName(userID, channelID, name string) {
	if name == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked(userID, channelID).Profile.Name = name
}

// AttachThread records thread metadata once. Later calls are ignored.
func (s *Store) AttachThread(userID, channelID, parentChannelID, threadName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.locked(userID, channelID)
	if c.Thread != nil {
		return
	}
	c.Thread = &ThreadContext{
		IsThread:        true,
		ParentChannelID: parentChannelID,
		ThreadName:      threadName,
	}
}

// StartSweep evicts contexts idle beyond IdleEviction, once per hour.
func (s *Store) StartSweep(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(s.now())
			}
		}
	}()
}

func (s *Store) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k, c := range s.contexts {
		if now.Sub(c.LastInteraction) > IdleEviction {
			delete(s.contexts, k)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("[SESSION] sweep evicted=%d remaining=%d", removed, len(s.contexts))
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ResponseChance computes the weighted-random reply probability for a
// message that passed no hard admission rule. Clamped to [0,1].
func (s *Store) ResponseChance(content string) float64 {
	chance := s.baseChance
	lower := strings.ToLower(content)
	if strings.Contains(content, "?") {
		chance += 0.10
	}
	if hasExcitement(content) {
		chance += 0.05
	}
	if hasGreeting(lower) {
		chance += 0.05
	}
	if len(content) < 10 {
		chance -= 0.05
	}
	if chance < 0 {
		chance = 0
	}
	if chance > 1 {
		chance = 1
	}
	return chance
}

// ShouldRespond rolls the weighted-random admission for the message.
func (s *Store) ShouldRespond(content string) bool {
	chance := s.ResponseChance(content)
	s.mu.Lock()
	roll := s.rng.Float64()
	s.mu.Unlock()
	return roll < chance
}

// ResponseDelay computes a human-like delay before replying so answers do
// not land instantly. Scales with message length, randomized by half.
func (s *Store) ResponseDelay(messageLength int) time.Duration {
	words := float64(messageLength) / 5
	reading := math.Min(words*100, 3000)
	typing := math.Min(words*50, 2000)
	s.mu.Lock()
	factor := 0.5 + s.rng.Float64()
	s.mu.Unlock()
	return time.Duration((1000+reading+typing)*factor) * time.Millisecond
}

func hasExcitement(content string) bool {
	if strings.Contains(content, "!") {
		return true
	}
	for _, marker := range []string{"😂", "🤣", "🔥", "😮", "🎉", "😍"} {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}

var greetings = []string{"hey", "hi ", "hello", "yo ", "sup", "what's up", "whats up", "howdy"}

func hasGreeting(lower string) bool {
	for _, g := range greetings {
		if strings.HasPrefix(lower, strings.TrimSpace(g)) || strings.Contains(lower, g) {
			return true
		}
	}
	return false
}
