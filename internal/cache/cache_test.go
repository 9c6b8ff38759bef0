package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	c := New()
	c.Set("What is Go?", "u1", "a language")

	got, ok := c.Get("What is Go?", "u1")
	require.True(t, ok)
	assert.Equal(t, "a language", got)

	// Normalization makes punctuation and case irrelevant.
	got, ok = c.Get("what is go", "u1")
	require.True(t, ok)
	assert.Equal(t, "a language", got)

	_, ok = c.Get("What is Go?", "u2")
	assert.False(t, ok, "different user must miss")
}

func TestTTLExpiry(t *testing.T) {
	c := New()
	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("hello world program", "u1", "resp")

	c.now = func() time.Time { return base.Add(9 * time.Minute) }
	_, ok := c.Get("hello world program", "u1")
	assert.True(t, ok)

	c.now = func() time.Time { return base.Add(11 * time.Minute) }
	_, ok = c.Get("hello world program", "u1")
	assert.False(t, ok, "expired entry must not be returned")

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Empty(t, c.entries, "expired entry purged on get")
}

func TestSimilarityFallback(t *testing.T) {
	c := New()
	c.Set("how install docker ubuntu server", "u1", "use apt")

	// Same non-stopword tokens, different exact text.
	got, ok := c.Get("how do i install docker on a ubuntu server", "u1")
	require.True(t, ok)
	assert.Equal(t, "use apt", got)

	// Same text from another user misses.
	_, ok = c.Get("how do i install docker on a ubuntu server", "u2")
	assert.False(t, ok)

	// Low overlap misses.
	_, ok = c.Get("how do i install arch linux", "u1")
	assert.False(t, ok)
}

func TestCapacityEvictsOldestFirst(t *testing.T) {
	c := New()
	c.maxEntries = 3
	for i := 0; i < 4; i++ {
		c.Set(fmt.Sprintf("unique message number %d", i), "u1", fmt.Sprintf("r%d", i))
	}

	_, ok := c.Get("unique message number 0", "u1")
	assert.False(t, ok, "oldest insertion evicted")
	for i := 1; i < 4; i++ {
		_, ok := c.Get(fmt.Sprintf("unique message number %d", i), "u1")
		assert.True(t, ok)
	}
}

func TestResetRefreshesEvictionOrder(t *testing.T) {
	c := New()
	c.maxEntries = 2
	c.Set("unique message number 0", "u1", "r0")
	c.Set("unique message number 1", "u1", "r1")

	// Rewriting the oldest key makes it the newest, so the other entry is
	// the one evicted at capacity.
	c.Set("unique message number 0", "u1", "r0b")
	c.Set("unique message number 2", "u1", "r2")

	got, ok := c.Get("unique message number 0", "u1")
	require.True(t, ok, "rewritten entry must survive eviction")
	assert.Equal(t, "r0b", got)

	_, ok = c.Get("unique message number 1", "u1")
	assert.False(t, ok)
}

func TestComplexityScore(t *testing.T) {
	assert.Less(t, complexityScore("hi"), 0.1)
	assert.Greater(t, complexityScore("can you write a code function for parsing?"), 0.5)
	assert.Equal(t, 1.0, complexityScore(string(make([]byte, 600))+"? code"))
}
