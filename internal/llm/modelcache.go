package llm

import (
	"context"
	"sync"
	"time"
)

// ModelCache memoizes the model list for a fixed window so page renders do
// not hit the models endpoint on every interaction. Status is never cached:
// the indicator should reflect current connectivity.
type ModelCache struct {
	src ModelSource
	ttl time.Duration

	mu        sync.Mutex
	models    []string
	fetchedAt time.Time
}

func NewModelCache(src ModelSource, ttl time.Duration) *ModelCache {
	return &ModelCache{src: src, ttl: ttl}
}

func (c *ModelCache) Models(ctx context.Context) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.models != nil && time.Since(c.fetchedAt) < c.ttl {
		return append([]string(nil), c.models...)
	}
	c.models = c.src.Models(ctx)
	c.fetchedAt = time.Now()
	return append([]string(nil), c.models...)
}

func (c *ModelCache) Status(ctx context.Context) (bool, string) {
	return c.src.Status(ctx)
}
