// Package cache is a short-TTL response cache keyed by normalized message
// and user, with a fuzzy fallback lookup by keyword overlap.
package cache

import (
	"regexp"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultTTL is how long an entry may be served.
	DefaultTTL = 10 * time.Minute
	// DefaultMaxEntries bounds the cache; least-recently-inserted entries
	// go first when over capacity.
	DefaultMaxEntries = 500

	similarityThreshold = 0.8
)

type entry struct {
	response        string
	timestamp       time.Time
	complexityScore float64
	userID          string
	keywords        map[string]bool
}

// ResponseCache is safe for concurrent use.
type ResponseCache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	order      []string // insertion order for capacity eviction
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// New creates a ResponseCache with the default TTL and capacity.
func New() *ResponseCache {
	return &ResponseCache{
		entries:    make(map[string]*entry),
		ttl:        DefaultTTL,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
	}
}

func cacheKey(message, userID string) string {
	return normalize(message) + "-" + userID
}

// Get returns the cached response for the message, trying the exact
// normalized key first and then this user's unexpired entries by keyword
// similarity. Expired entries are purged on the way.
func (c *ResponseCache) Get(message, userID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.purgeExpired(now)

	if e, ok := c.entries[cacheKey(message, userID)]; ok {
		return e.response, true
	}

	query := keywordSet(normalize(message))
	if len(query) == 0 {
		return "", false
	}
	for _, key := range c.order {
		e, ok := c.entries[key]
		if !ok || e.userID != userID {
			continue
		}
		if jaccard(query, e.keywords) >= similarityThreshold {
			return e.response, true
		}
	}
	return "", false
}

// Set stores the response under the normalized key, evicting the oldest
// entries when over capacity.
func (c *ResponseCache) Set(message, userID, response string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey(message, userID)
	if _, exists := c.entries[key]; exists {
		// A rewritten entry counts as fresh for eviction.
		for i, k := range c.order {
			if k == key {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
	c.order = append(c.order, key)
	c.entries[key] = &entry{
		response:        response,
		timestamp:       c.now(),
		complexityScore: complexityScore(message),
		userID:          userID,
		keywords:        keywordSet(normalize(message)),
	}
	for len(c.entries) > c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// purgeExpired drops entries older than ttl. Caller holds c.mu.
func (c *ResponseCache) purgeExpired(now time.Time) {
	kept := c.order[:0]
	for _, key := range c.order {
		e, ok := c.entries[key]
		if !ok {
			continue
		}
		if now.Sub(e.timestamp) > c.ttl {
			delete(c.entries, key)
			continue
		}
		kept = append(kept, key)
	}
	c.order = kept
}

var punctRe = regexp.MustCompile(`[^\w\s]`)
var spaceRe = regexp.MustCompile(`\s+`)

// normalize lowercases, strips punctuation and collapses whitespace.
func normalize(s string) string {
	s = strings.ToLower(s)
	s = punctRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true,
	"i": true, "you": true, "it": true, "to": true, "of": true, "in": true,
	"on": true, "for": true, "and": true, "or": true, "my": true, "me": true,
	"do": true, "does": true, "can": true, "what": true, "how": true,
	"this": true, "that": true, "with": true, "be": true,
}

func keywordSet(normalized string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(normalized) {
		if !stopwords[tok] {
			set[tok] = true
		}
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if b[tok] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// complexityScore is informational only: longer and question/code flavored
// messages score higher. Capped at 1.
func complexityScore(message string) float64 {
	score := float64(len(message)) / 500
	if strings.Contains(message, "?") {
		score += 0.2
	}
	lower := strings.ToLower(message)
	if strings.Contains(lower, "code") || strings.Contains(lower, "function") {
		score += 0.3
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
