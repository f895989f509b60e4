package ratelimit

import (
	"context"
	"sync"
	"time"

	"quotefeed/internal/provider"
)

// MinInterval wraps a provider and enforces a minimum time between upstream
// calls, shared across both fetch methods. Concurrent calls wait until the
// interval has elapsed since the last call, or return early if the context
// is canceled.
type MinInterval struct {
	P        provider.Provider
	Interval time.Duration
	mu       sync.Mutex
	last     time.Time
}

func (m *MinInterval) Name() string { return m.P.Name() }

func (m *MinInterval) FetchSeries(ctx context.Context, tickers []string, span, interval string) (provider.Series, error) {
	if err := m.gate(ctx); err != nil {
		return nil, err
	}
	s, err := m.P.FetchSeries(ctx, tickers, span, interval)
	m.mark()
	return s, err
}

func (m *MinInterval) FetchFundamentals(ctx context.Context, ticker string) (map[string]float64, error) {
	if err := m.gate(ctx); err != nil {
		return nil, err
	}
	f, err := m.P.FetchFundamentals(ctx, ticker)
	m.mark()
	return f, err
}

func (m *MinInterval) gate(ctx context.Context) error {
	if m.Interval <= 0 {
		return nil
	}
	m.mu.Lock()
	wait := time.Until(m.last.Add(m.Interval))
	m.mu.Unlock()
	if wait <= 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (m *MinInterval) mark() {
	if m.Interval <= 0 {
		return
	}
	m.mu.Lock()
	m.last = time.Now()
	m.mu.Unlock()
}
