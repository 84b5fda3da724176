// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"net"

	"github.com/pdiddy/paper-search/internal/ratelimit"
	"github.com/pdiddy/paper-search/pkg/types"
)

// reserve waits for rate-limit capacity before a provider call. A nil
// limiter admits immediately, which keeps backend construction simple in
// tests. A wait cut short by the call deadline counts as a timeout failure
// for that provider only.
func reserve(ctx context.Context, l *ratelimit.Limiter, p types.Provider) error {
	if l == nil {
		return nil
	}
	if err := l.Reserve(ctx, p); err != nil {
		return &ProviderError{Provider: p, Kind: ErrTimeout, Err: err}
	}
	return nil
}

// providerErr classifies a transport error as timeout or http.
func providerErr(p types.Provider, err error) *ProviderError {
	kind := ErrHTTP
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		kind = ErrTimeout
	}
	return &ProviderError{Provider: p, Kind: kind, Err: err}
}
