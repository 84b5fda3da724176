// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-search/pkg/types"
)

// fakeClock drives the limiter's notion of time. Sleeps advance the clock
// instead of waiting.
type fakeClock struct {
	mu    sync.Mutex
	t     time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slept = append(c.slept, d)
	c.t = c.t.Add(d)
	return nil
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(limit Limit) (*Limiter, *fakeClock) {
	clock := newFakeClock()
	l := New(map[types.Provider]Limit{types.ProviderPubMed: limit})
	l.now = clock.now
	l.sleep = clock.sleep
	return l, clock
}

func TestReserveUnderLimit(t *testing.T) {
	l, clock := newTestLimiter(Limit{Requests: 3, Window: time.Second})

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Reserve(context.Background(), types.ProviderPubMed))
	}
	assert.Empty(t, clock.slept, "first N reservations must not wait")
}

func TestReserveDelaysOverLimit(t *testing.T) {
	l, clock := newTestLimiter(Limit{Requests: 3, Window: time.Second})

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Reserve(context.Background(), types.ProviderPubMed))
	}

	// The 4th back-to-back reservation must wait out the full window.
	require.NoError(t, l.Reserve(context.Background(), types.ProviderPubMed))
	require.Len(t, clock.slept, 1)
	assert.Equal(t, time.Second, clock.slept[0])
}

func TestReserveAdmitsAfterWindowPasses(t *testing.T) {
	l, clock := newTestLimiter(Limit{Requests: 1, Window: 3 * time.Second})

	require.NoError(t, l.Reserve(context.Background(), types.ProviderPubMed))
	clock.advance(3 * time.Second)
	require.NoError(t, l.Reserve(context.Background(), types.ProviderPubMed))
	assert.Empty(t, clock.slept)
}

func TestReserveUnknownProviderIsFree(t *testing.T) {
	l := New(map[types.Provider]Limit{})
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Reserve(context.Background(), types.ProviderArxiv))
	}
}

func TestReserveContextCancelled(t *testing.T) {
	l, _ := newTestLimiter(Limit{Requests: 1, Window: time.Minute})
	l.sleep = func(ctx context.Context, _ time.Duration) error {
		return ctx.Err()
	}

	require.NoError(t, l.Reserve(context.Background(), types.ProviderPubMed))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := l.Reserve(ctx, types.ProviderPubMed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReserveConcurrentSameProvider(t *testing.T) {
	l, _ := newTestLimiter(Limit{Requests: 5, Window: time.Second})

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- l.Reserve(context.Background(), types.ProviderPubMed)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	// The window never holds more than the limit.
	assert.LessOrEqual(t, len(l.history[types.ProviderPubMed]), 5)
}

func TestDefaultLimitsCoverAllProviders(t *testing.T) {
	for _, p := range types.AllProviders {
		limit, ok := DefaultLimits[p]
		require.True(t, ok, "missing limit for %s", p)
		assert.Positive(t, limit.Requests)
		assert.Positive(t, limit.Window)
	}
}
