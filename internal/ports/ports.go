package ports

import (
	"context"

	"github.com/clipscout/clipscout/internal/types"
)

// CaptionSource fetches timed captions for a video, optionally through an
// egress proxy endpoint (empty string means a direct connection). Failures
// must be tagged with a FailureKind so retry logic can branch on data.
type CaptionSource interface {
	Fetch(ctx context.Context, videoID, proxyEndpoint string) ([]types.Entry, error)
}

// SentimentClassifier delegates sentiment analysis to an external model.
// Callers substitute a neutral default when it is unavailable.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (types.Sentiment, error)
}

// ProxyProvider lists candidate egress proxy endpoints. Best-effort: an
// erroring or empty provider contributes nothing.
type ProxyProvider interface {
	List(ctx context.Context) ([]string, error)
}

// MediaCutter cuts the source media at clip boundaries. The core only ever
// constructs invocation descriptions; execution happens behind this port.
type MediaCutter interface {
	Cut(ctx context.Context, input string, startSec, endSec float64, output string) error
}

// FailureKind classifies a caption-source failure.
type FailureKind int

const (
	// FailureTransient covers rate limiting and network errors; retryable.
	FailureTransient FailureKind = iota
	// FailurePermanent means no captions exist or captions are disabled;
	// retrying cannot help.
	FailurePermanent
)

// CaptionError tags an upstream caption failure with its kind.
type CaptionError struct {
	Kind FailureKind
	Err  error
}

func (e *CaptionError) Error() string {
	switch e.Kind {
	case FailurePermanent:
		return "captions unavailable: " + e.Err.Error()
	default:
		return "caption fetch failed: " + e.Err.Error()
	}
}

func (e *CaptionError) Unwrap() error { return e.Err }

// Permanent wraps err as a non-retryable caption failure.
func Permanent(err error) error { return &CaptionError{Kind: FailurePermanent, Err: err} }

// Transient wraps err as a retryable caption failure.
func Transient(err error) error { return &CaptionError{Kind: FailureTransient, Err: err} }
