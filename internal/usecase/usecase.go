package usecase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/clipscout/clipscout/internal/domain/clips"
	"github.com/clipscout/clipscout/internal/domain/segment"
	"github.com/clipscout/clipscout/internal/domain/transcript"
	"github.com/clipscout/clipscout/internal/domain/virality"
	"github.com/clipscout/clipscout/internal/ports"
	"github.com/clipscout/clipscout/internal/types"
)

const scoreConcurrency = 4

// neutralSentiment substitutes for the classifier verdict when the delegate
// is unavailable. Scoring degrades, it never aborts the pipeline.
var neutralSentiment = types.Sentiment{Label: "NEUTRAL", Score: 0.5}

// platformWindows maps the platform hint to the sparse-policy window
// duration in seconds. The hint is otherwise inert.
var platformWindows = map[string]float64{
	"YouTube Shorts":  30,
	"Instagram Reels": 45,
	"TikTok":          60,
}

const defaultWindowSeconds = 30

// TranscriptFetcher obtains captions for a video id, however many retries
// that takes.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) ([]types.Entry, error)
}

type Deps struct {
	Fetcher    TranscriptFetcher
	Classifier ports.SentimentClassifier
	Logf       func(format string, args ...any)
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Logf == nil {
		d.Logf = func(string, ...any) {}
	}
	return Usecase{d: d}
}

type Input struct {
	// VideoID selects the captions path; Subtitles carries raw SRT content
	// for the subtitles path. Kind decides which is consulted.
	VideoID   string
	Subtitles string
	Kind      types.SourceKind
	Platform  string

	// MediaPath is referenced in derived cut commands. Empty means the
	// conventional input.mp4 placeholder.
	MediaPath string
}

// Analyze runs the full pipeline: obtain entries, segment, score each window
// independently, filter, rank and summarize.
func (u Usecase) Analyze(ctx context.Context, in Input) (types.Analysis, error) {
	entries, err := u.obtainEntries(ctx, in)
	if err != nil {
		return types.Analysis{}, err
	}
	u.d.Logf("transcript normalized: %d entries", len(entries))

	var windows []types.Window
	if in.Kind == types.SourceSubtitles {
		windows = segment.SparseSample(entries, windowSeconds(in.Platform))
	} else {
		windows = segment.Accumulate(entries)
	}
	u.d.Logf("segmented into %d candidate windows", len(windows))

	scored, err := u.scoreWindows(ctx, in.Kind, windows)
	if err != nil {
		return types.Analysis{}, err
	}

	var list []types.Clip
	id := 1
	for i, w := range windows {
		s := scored[i]
		if !s.keep {
			continue
		}
		list = append(list, clips.Build(id, w, s.sentiment, s.category, s.triggers, s.score, in.MediaPath))
		id++
	}

	list = clips.Rank(list)
	return types.Analysis{Clips: list, Summary: clips.Summarize(list)}, nil
}

func (u Usecase) obtainEntries(ctx context.Context, in Input) ([]types.Entry, error) {
	if in.Kind == types.SourceSubtitles {
		return transcript.ParseSRT(in.Subtitles)
	}

	raw, err := u.d.Fetcher.Fetch(ctx, in.VideoID)
	if err != nil {
		return nil, err
	}
	entries := transcript.FromCaptions(raw)
	if len(entries) == 0 {
		return nil, fmt.Errorf("no usable transcript entries for video %s", in.VideoID)
	}
	return entries, nil
}

type windowScores struct {
	sentiment types.Sentiment
	category  string
	triggers  []string
	score     int
	keep      bool
}

// scoreWindows runs the per-window scorers under a bounded worker group.
// Results land in an index-addressed slice so emission order, and with it id
// assignment and ranking tie-breaks, stays deterministic.
func (u Usecase) scoreWindows(ctx context.Context, kind types.SourceKind, windows []types.Window) ([]windowScores, error) {
	out := make([]windowScores, len(windows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scoreConcurrency)
	for i, w := range windows {
		i, w := i, w
		g.Go(func() error {
			sent, err := u.d.Classifier.Classify(gctx, w.Text)
			if err != nil {
				u.d.Logf("classifier degraded, using neutral default: %v", err)
				sent = neutralSentiment
			}

			category := virality.Categorize(w.Text)
			triggers := virality.DetectTriggers(w.Text)

			keep := true
			if kind == types.SourceSubtitles {
				if len(triggers) == 0 {
					triggers = append([]string(nil), virality.FallbackTriggers...)
				}
			} else if len(triggers) < virality.MinTriggersDense {
				keep = false
			}

			out[i] = windowScores{
				sentiment: sent,
				category:  category,
				triggers:  triggers,
				score:     virality.Score(sent, triggers, category),
				keep:      keep,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func windowSeconds(platform string) float64 {
	if s, ok := platformWindows[platform]; ok {
		return s
	}
	return defaultWindowSeconds
}
