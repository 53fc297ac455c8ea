// Package fetcher wraps the caption source with retry, exponential backoff
// and egress-proxy rotation. It performs no scoring; it only makes the
// upstream call survivable.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/clipscout/clipscout/internal/ports"
	"github.com/clipscout/clipscout/internal/types"
)

const (
	defaultMaxAttempts = 7
	defaultBaseDelay   = 5 * time.Second
	jitterSpan         = 2 * time.Second
)

// ExhaustedError is returned after every attempt failed transiently. It
// carries the last observed error.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("caption fetch exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Pool is the slice of the proxy pool the fetcher needs.
type Pool interface {
	Draw(ctx context.Context) string
	Refresh(ctx context.Context)
}

// Config tunes the retry schedule. Zero values select the defaults; Jitter
// and Sleep are injectable so tests can make the schedule deterministic.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      func() time.Duration
	Sleep       func(ctx context.Context, d time.Duration) error
	Logf        func(format string, args ...any)
}

type Fetcher struct {
	source ports.CaptionSource
	pool   Pool
	cfg    Config
}

func New(source ports.CaptionSource, pool Pool, cfg Config) *Fetcher {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultBaseDelay
	}
	if cfg.Jitter == nil {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		cfg.Jitter = func() time.Duration { return time.Duration(rng.Int63n(int64(jitterSpan))) }
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleep
	}
	if cfg.Logf == nil {
		cfg.Logf = func(string, ...any) {}
	}
	return &Fetcher{source: source, pool: pool, cfg: cfg}
}

// Fetch obtains captions for videoID, retrying transient failures up to the
// configured attempt cap. Delay before attempt n is base*2^(n-2) plus jitter.
// Permanent failures return immediately; at the midpoint attempt the proxy
// pool is refreshed unconditionally to shed endpoints that started failing.
func (f *Fetcher) Fetch(ctx context.Context, videoID string) ([]types.Entry, error) {
	var lastErr error
	for attempt := 1; attempt <= f.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := f.cfg.BaseDelay<<(attempt-2) + f.cfg.Jitter()
			f.cfg.Logf("caption fetch attempt %d/%d in %s", attempt, f.cfg.MaxAttempts, delay)
			if err := f.cfg.Sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		if attempt-1 == f.cfg.MaxAttempts/2 {
			f.cfg.Logf("midpoint reached, refreshing proxy pool")
			f.pool.Refresh(ctx)
		}

		endpoint := f.pool.Draw(ctx)
		entries, err := f.source.Fetch(ctx, videoID, endpoint)
		if err == nil {
			return entries, nil
		}

		var ce *ports.CaptionError
		if errors.As(err, &ce) && ce.Kind == ports.FailurePermanent {
			return nil, err
		}
		lastErr = err
		f.cfg.Logf("caption fetch attempt %d failed: %v", attempt, err)
	}
	return nil, &ExhaustedError{Attempts: f.cfg.MaxAttempts, Last: lastErr}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
