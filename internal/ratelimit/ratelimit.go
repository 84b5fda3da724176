// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ratelimit provides per-provider sliding-window admission control.
// Each provider has a fixed request budget over a trailing window; Reserve
// blocks until the window has capacity, then records the request. There is
// no rejection outcome, only bounded delay.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/pdiddy/paper-search/pkg/types"
)

// Limit is a provider's request budget over a trailing window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// DefaultLimits holds the published rate limits of each provider API.
var DefaultLimits = map[types.Provider]Limit{
	types.ProviderPubMed:          {Requests: 3, Window: time.Second},
	types.ProviderArxiv:           {Requests: 1, Window: 3 * time.Second},
	types.ProviderCrossref:        {Requests: 50, Window: time.Second},
	types.ProviderSemanticScholar: {Requests: 100, Window: 5 * time.Minute},
}

// Limiter tracks recent request timestamps per provider. All concurrent
// searches in the process share one Limiter so provider budgets hold
// globally.
type Limiter struct {
	mu      sync.Mutex
	limits  map[types.Provider]Limit
	history map[types.Provider][]time.Time

	// now and sleep are substituted by tests to avoid real waits.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New returns a Limiter using the given per-provider limits. Providers
// absent from limits are admitted without delay.
func New(limits map[types.Provider]Limit) *Limiter {
	return &Limiter{
		limits:  limits,
		history: make(map[types.Provider][]time.Time),
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Reserve blocks until provider's rolling window has capacity, records the
// new request timestamp, and returns. It returns early with ctx.Err() if the
// context is cancelled while waiting.
func (l *Limiter) Reserve(ctx context.Context, provider types.Provider) error {
	limit, ok := l.limits[provider]
	if !ok || limit.Requests <= 0 {
		return nil
	}

	for {
		l.mu.Lock()
		now := l.now()
		cutoff := now.Add(-limit.Window)

		// Purge timestamps that fell out of the window.
		recent := l.history[provider]
		for len(recent) > 0 && !recent[0].After(cutoff) {
			recent = recent[1:]
		}

		if len(recent) < limit.Requests {
			l.history[provider] = append(recent, now)
			l.mu.Unlock()
			return nil
		}

		// Window is full: wait until the oldest entry expires, then re-check.
		wait := limit.Window - now.Sub(recent[0])
		l.history[provider] = recent
		l.mu.Unlock()

		if wait <= 0 {
			continue
		}
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}
