// Package ratelimit spaces out calls to external providers.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"newsfuse/internal/content"
)

// PerSource holds one token bucket per source type. Safe for use from
// concurrent fetches; each bucket admits one call per configured interval
// with a burst of one.
type PerSource struct {
	mu       sync.Mutex
	interval time.Duration
	limiters map[content.SourceType]*rate.Limiter
	lastWait map[content.SourceType]time.Time
}

// New creates a limiter enforcing the given minimum interval between
// successive calls to the same source type.
func New(interval time.Duration) *PerSource {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &PerSource{
		interval: interval,
		limiters: make(map[content.SourceType]*rate.Limiter),
		lastWait: make(map[content.SourceType]time.Time),
	}
}

// Wait blocks until the source type's bucket grants a token or ctx is done.
func (p *PerSource) Wait(ctx context.Context, st content.SourceType) error {
	p.mu.Lock()
	limiter, ok := p.limiters[st]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(p.interval), 1)
		p.limiters[st] = limiter
	}
	p.mu.Unlock()

	if err := limiter.Wait(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	p.lastWait[st] = time.Now()
	p.mu.Unlock()
	return nil
}

// LastRequest returns when the source type last cleared the limiter. The
// zero time means it has not been used yet.
func (p *PerSource) LastRequest(st content.SourceType) time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastWait[st]
}
