package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/clipscout/clipscout/internal/types"
)

type fakeFetcher struct {
	entries []types.Entry
	err     error
}

func (f fakeFetcher) Fetch(_ context.Context, _ string) ([]types.Entry, error) {
	return f.entries, f.err
}

type fakeClassifier struct {
	sentiment types.Sentiment
	err       error
}

func (f fakeClassifier) Classify(_ context.Context, _ string) (types.Sentiment, error) {
	return f.sentiment, f.err
}

// richEntries carries at least two distinct trigger keywords per entry
// ("secret" -> Pattern Interrupt, "most people" -> Relatability) and enough
// words to clear the segmenter's minimum.
func richEntries(n int) []types.Entry {
	out := make([]types.Entry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, types.Entry{
			Start:    float64(i * 5),
			Duration: 5,
			Text:     fmt.Sprintf("the secret reason most people lose money trading part %d", i),
		})
	}
	return out
}

func blandEntries(n int) []types.Entry {
	out := make([]types.Entry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, types.Entry{
			Start:    float64(i * 5),
			Duration: 5,
			Text:     fmt.Sprintf("and then we looked at it again for minute %d", i),
		})
	}
	return out
}

func TestAnalyze_CaptionsHappyPath(t *testing.T) {
	uc := New(Deps{
		Fetcher:    fakeFetcher{entries: richEntries(30)},
		Classifier: fakeClassifier{sentiment: types.Sentiment{Label: "POSITIVE", Score: 0.9}},
	})

	res, err := uc.Analyze(context.Background(), Input{VideoID: "vid", Kind: types.SourceCaptions})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(res.Clips) == 0 {
		t.Fatalf("expected clips")
	}
	for _, c := range res.Clips {
		if c.ViralityScore < 0 || c.ViralityScore > 100 {
			t.Fatalf("score out of range: %d", c.ViralityScore)
		}
		if len(c.Triggers) < 2 {
			t.Fatalf("dense-policy clip kept with %d triggers", len(c.Triggers))
		}
		if c.EndSec <= c.StartSec {
			t.Fatalf("end not after start: %+v", c)
		}
		if !strings.Contains(c.FFmpegCommand, "ffmpeg -ss") {
			t.Fatalf("missing cut command: %q", c.FFmpegCommand)
		}
	}
	if res.Summary.TotalClips != len(res.Clips) {
		t.Fatalf("summary count mismatch")
	}
	for i := 1; i < len(res.Clips); i++ {
		prev, cur := res.Clips[i-1], res.Clips[i]
		if cur.ViralityScore > prev.ViralityScore {
			t.Fatalf("clips not sorted by score at %d", i)
		}
		if cur.ViralityScore == prev.ViralityScore && cur.ID < prev.ID {
			t.Fatalf("tie order not stable at %d", i)
		}
	}
}

func TestAnalyze_DensePolicyDropsLowTriggerWindows(t *testing.T) {
	uc := New(Deps{
		Fetcher:    fakeFetcher{entries: blandEntries(30)},
		Classifier: fakeClassifier{sentiment: types.Sentiment{Label: "NEUTRAL", Score: 0.5}},
	})

	res, err := uc.Analyze(context.Background(), Input{VideoID: "vid", Kind: types.SourceCaptions})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(res.Clips) != 0 {
		t.Fatalf("expected all windows filtered, got %d clips", len(res.Clips))
	}
	if res.Summary.TopCategory != "No clips found" {
		t.Fatalf("unexpected summary: %+v", res.Summary)
	}
}

func TestAnalyze_ClassifierFailureDegradesToNeutral(t *testing.T) {
	uc := New(Deps{
		Fetcher:    fakeFetcher{entries: richEntries(12)},
		Classifier: fakeClassifier{err: errors.New("timeout")},
	})

	res, err := uc.Analyze(context.Background(), Input{VideoID: "vid", Kind: types.SourceCaptions})
	if err != nil {
		t.Fatalf("analysis must survive classifier outage: %v", err)
	}
	if len(res.Clips) == 0 {
		t.Fatalf("expected clips despite classifier outage")
	}
	for _, c := range res.Clips {
		if c.Sentiment.Label != "NEUTRAL" || c.Sentiment.Score != 0.5 {
			t.Fatalf("expected neutral default, got %+v", c.Sentiment)
		}
	}
}

func TestAnalyze_SubtitlesPathUsesFallbackTriggers(t *testing.T) {
	var srt strings.Builder
	for i := 0; i < 8; i++ {
		start := i * 20
		fmt.Fprintf(&srt, "%d\n00:%02d:%02d,000 --> 00:%02d:%02d,000\na plain subtitle line with no keywords at all %d\n\n",
			i+1, start/60, start%60, (start+15)/60, (start+15)%60, i)
	}

	uc := New(Deps{
		Fetcher:    fakeFetcher{err: errors.New("must not be called")},
		Classifier: fakeClassifier{sentiment: types.Sentiment{Label: "NEUTRAL", Score: 0.5}},
	})
	res, err := uc.Analyze(context.Background(), Input{
		Kind:      types.SourceSubtitles,
		Subtitles: srt.String(),
		Platform:  "TikTok",
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(res.Clips) == 0 {
		t.Fatalf("expected clips from sparse policy")
	}
	for _, c := range res.Clips {
		if len(c.Triggers) != 2 || c.Triggers[0] != "Authority" || c.Triggers[1] != "Relatability" {
			t.Fatalf("expected fallback trigger pair, got %v", c.Triggers)
		}
	}
}

func TestAnalyze_FetcherErrorAborts(t *testing.T) {
	wantErr := errors.New("exhausted")
	uc := New(Deps{
		Fetcher:    fakeFetcher{err: wantErr},
		Classifier: fakeClassifier{},
	})
	_, err := uc.Analyze(context.Background(), Input{VideoID: "vid", Kind: types.SourceCaptions})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected fetch error to surface, got %v", err)
	}
}

func TestAnalyze_CapsAtFifteenClips(t *testing.T) {
	uc := New(Deps{
		Fetcher:    fakeFetcher{entries: richEntries(500)},
		Classifier: fakeClassifier{sentiment: types.Sentiment{Label: "POSITIVE", Score: 0.9}},
	})
	res, err := uc.Analyze(context.Background(), Input{VideoID: "vid", Kind: types.SourceCaptions})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(res.Clips) > 15 {
		t.Fatalf("clip cap violated: %d", len(res.Clips))
	}
}
