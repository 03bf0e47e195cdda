package workbook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/guttosm/dappulse/internal/logger"
)

// BreakerSettings configures the circuit breaker placed in front of a Fetcher.
type BreakerSettings struct {
	MaxRequests  uint32        // Max trial fetches while half-open
	Interval     time.Duration // Reset counts interval while closed
	Timeout      time.Duration // How long the circuit stays open
	MinRequests  uint32        // Min fetches before tripping
	FailureRatio float64       // Trip when failures/requests reaches this
}

// DefaultBreakerSettings trips after 5 fetches with at least 60% failures and
// rejects fetches for 15 seconds.
var DefaultBreakerSettings = BreakerSettings{
	MaxRequests:  1,
	Interval:     time.Minute,
	Timeout:      15 * time.Second,
	MinRequests:  5,
	FailureRatio: 0.6,
}

// Source bounds every fetch by a timeout and guards it with a circuit breaker.
// A hung read surfaces as ErrFetchUnavailable once the timeout elapses.
type Source struct {
	fetcher Fetcher
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
}

// NewSource wraps fetcher. A non-positive timeout disables the bound.
func NewSource(fetcher Fetcher, timeout time.Duration, settings BreakerSettings) *Source {
	gbSettings := gobreaker.Settings{
		Name:        "workbook:" + fetcher.Describe(),
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 || counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.L().Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("fetch circuit state changed")
		},
	}
	return &Source{
		fetcher: fetcher,
		timeout: timeout,
		breaker: gobreaker.NewCircuitBreaker(gbSettings),
	}
}

// Describe returns the wrapped fetcher's description.
func (s *Source) Describe() string {
	return s.fetcher.Describe()
}

// State exposes the breaker state ("closed", "half-open", "open").
func (s *Source) State() string {
	return s.breaker.State().String()
}

type fetchResult struct {
	grid Grid
	err  error
}

// Fetch reads a region through the breaker. Every error wraps ErrFetchUnavailable.
func (s *Source) Fetch(ctx context.Context, sheet string, region Region) (Grid, error) {
	res, err := s.breaker.Execute(func() (interface{}, error) {
		return s.fetchBounded(ctx, sheet, region)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", ErrFetchUnavailable, err)
		}
		return nil, err
	}
	g, _ := res.(Grid)
	return g, nil
}

func (s *Source) fetchBounded(ctx context.Context, sheet string, region Region) (Grid, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	done := make(chan fetchResult, 1)
	go func() {
		g, err := s.fetcher.Fetch(ctx, sheet, region)
		done <- fetchResult{grid: g, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: fetch %s: %v", ErrFetchUnavailable, sheet, ctx.Err())
	case r := <-done:
		if r.err != nil && !errors.Is(r.err, ErrFetchUnavailable) {
			return nil, fmt.Errorf("%w: %v", ErrFetchUnavailable, r.err)
		}
		return r.grid, r.err
	}
}
