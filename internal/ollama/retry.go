package ollama

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxAttempts is 1 initial call plus 2 retries.
const maxAttempts = 3

// Generate calls the backend with retries. Backoff between attempts is
// 1000*2^attempt ms plus up to 500 ms of jitter. Any failure marks the
// backend unhealthy so the next health gate probes again.
func (c *Client) Generate(ctx context.Context, messages []Message) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(1000*(1<<uint(attempt-1)))*time.Millisecond +
				time.Duration(c.rand())*time.Millisecond
			log.Printf("[GEN] attempt %d failed: %v, retrying in %v", attempt, lastErr, delay)
			c.sleep(delay)
		}
		if err := c.limiter.wait(ctx); err != nil {
			return "", &Error{Category: CategoryOther, Err: err}
		}

		reply, err := c.chat(ctx, messages)
		if err == nil {
			c.limiter.success()
			return reply, nil
		}
		lastErr = err
		c.MarkUnhealthy()
		c.limiter.failure()
		if !retryable(Categorize(err)) {
			break
		}
	}
	return "", lastErr
}

func jitterMS() int64 {
	return rand.Int63n(500)
}

// adaptiveLimiter paces generate calls: the allowed rate creeps up while
// the backend answers and halves when it fails.
type adaptiveLimiter struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	minLimit rate.Limit
	maxLimit rate.Limit
	lastFail time.Time
}

func newAdaptiveLimiter() *adaptiveLimiter {
	return &adaptiveLimiter{
		limiter:  rate.NewLimiter(2, 2),
		minLimit: 0.2,
		maxLimit: 5,
	}
}

func (a *adaptiveLimiter) wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

func (a *adaptiveLimiter) success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastFail) > 10*time.Second {
		a.set(a.limiter.Limit() + 0.5)
	}
}

func (a *adaptiveLimiter) failure() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastFail = time.Now()
	a.set(a.limiter.Limit() / 2)
}

func (a *adaptiveLimiter) set(l rate.Limit) {
	if l > a.maxLimit {
		l = a.maxLimit
	}
	if l < a.minLimit {
		l = a.minLimit
	}
	if l != a.limiter.Limit() {
		a.limiter.SetLimit(l)
	}
}
