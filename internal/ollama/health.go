package ollama

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"
)

// healthCacheTTL bounds how often the liveness probe actually fires.
const healthCacheTTL = 30 * time.Second

// healthState caches the backend liveness flag. Any 2xx on /api/version
// counts as healthy.
type healthState struct {
	mu        sync.Mutex
	healthy   bool
	checkedAt time.Time
}

func newHealthState() *healthState {
	return &healthState{}
}

// Healthy returns the cached flag, refreshing it at most every
// healthCacheTTL via probe.
func (c *Client) Healthy(ctx context.Context) bool {
	c.health.mu.Lock()
	fresh := time.Since(c.health.checkedAt) < healthCacheTTL
	cached := c.health.healthy
	c.health.mu.Unlock()
	if fresh {
		return cached
	}

	ok := c.probe(ctx)
	c.health.mu.Lock()
	c.health.healthy = ok
	c.health.checkedAt = time.Now()
	c.health.mu.Unlock()
	if !ok {
		log.Printf("[GEN] backend unhealthy at %s", c.baseURL)
	}
	return ok
}

// MarkUnhealthy drops the cached flag and forces the next Healthy call to
// probe again. Called after any generate failure.
func (c *Client) MarkUnhealthy() {
	c.health.mu.Lock()
	c.health.healthy = false
	c.health.checkedAt = time.Time{}
	c.health.mu.Unlock()
}

func (c *Client) probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/version", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
