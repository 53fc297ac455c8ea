package itest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/clipscout/clipscout/internal/pipeline"
)

// fakeUpstreams stands in for every external service the pipeline talks to:
// the caption endpoint, the sentiment model and a proxy list provider.
type fakeUpstreams struct {
	captions   *httptest.Server
	classifier *httptest.Server
	proxyList  *httptest.Server
}

func newFakeUpstreams(t *testing.T, captionsHandler http.HandlerFunc) *fakeUpstreams {
	t.Helper()
	f := &fakeUpstreams{
		captions: httptest.NewServer(captionsHandler),
		classifier: httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `[{"label":"POSITIVE","score":0.85}]`)
		})),
		// An empty proxy list keeps the pool empty, so every caption request
		// goes direct to the fake endpoint.
		proxyList: httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, "")
		})),
	}
	t.Cleanup(func() {
		f.captions.Close()
		f.classifier.Close()
		f.proxyList.Close()
	})
	return f
}

func (f *fakeUpstreams) config(t *testing.T) pipeline.Config {
	return pipeline.Config{
		VideoID:         "dQw4w9WgXcQ",
		OutPath:         filepath.Join(t.TempDir(), "analysis.json"),
		CaptionsBaseURL: f.captions.URL,
		HFBaseURL:       f.classifier.URL + "/models/",
		ProxySources:    []string{f.proxyList.URL},
		MaxAttempts:     2,
		BaseDelay:       time.Millisecond,
		Logf:            t.Logf,
	}
}

func timedtextJSON(entryCount int) string {
	type seg struct {
		UTF8 string `json:"utf8"`
	}
	type event struct {
		StartMs    int64 `json:"tStartMs"`
		DurationMs int64 `json:"dDurationMs"`
		Segs       []seg `json:"segs"`
	}
	events := make([]event, 0, entryCount)
	for i := 0; i < entryCount; i++ {
		events = append(events, event{
			StartMs:    int64(i * 5000),
			DurationMs: 5000,
			Segs:       []seg{{UTF8: fmt.Sprintf("the secret reason most people lose money trading part %d", i)}},
		})
	}
	b, _ := json.Marshal(map[string]any{"events": events})
	return string(b)
}

func TestE2E_VideoAnalysis(t *testing.T) {
	f := newFakeUpstreams(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("v"); got != "dQw4w9WgXcQ" {
			t.Errorf("unexpected video id %q", got)
		}
		fmt.Fprint(w, timedtextJSON(24))
	})

	cfg := f.config(t)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := pipeline.Run(ctx, cfg); err != nil {
		t.Fatalf("pipeline: %v", err)
	}

	b, err := os.ReadFile(cfg.OutPath)
	if err != nil {
		t.Fatalf("read analysis: %v", err)
	}
	var res struct {
		Clips []struct {
			ID            int      `json:"id"`
			Title         string   `json:"title"`
			StartTime     string   `json:"startTime"`
			EndTime       string   `json:"endTime"`
			HookText      string   `json:"hookText"`
			ViralityScore int      `json:"viralityScore"`
			Triggers      []string `json:"triggers"`
			Category      string   `json:"category"`
			FFmpegCommand string   `json:"ffmpegCommand"`
		} `json:"clips"`
		Summary struct {
			TotalClips   int     `json:"totalClips"`
			AverageScore float64 `json:"averageScore"`
			TopCategory  string  `json:"topCategory"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(b, &res); err != nil {
		t.Fatalf("decode analysis: %v", err)
	}
	if len(res.Clips) == 0 {
		t.Fatalf("expected clips in analysis output")
	}
	if res.Summary.TotalClips != len(res.Clips) {
		t.Fatalf("summary disagrees with clip list")
	}
	for _, c := range res.Clips {
		if c.Title == "" || c.HookText == "" || c.Category == "" {
			t.Fatalf("incomplete clip: %+v", c)
		}
		if len(c.Triggers) < 2 {
			t.Fatalf("caption-path clip with %d triggers", len(c.Triggers))
		}
		if !strings.Contains(c.FFmpegCommand, "ffmpeg -ss "+c.StartTime) {
			t.Fatalf("cut command does not match clip bounds: %q", c.FFmpegCommand)
		}
		if c.ViralityScore < 0 || c.ViralityScore > 100 {
			t.Fatalf("score out of range: %d", c.ViralityScore)
		}
	}
}

func TestE2E_TransientFailureThenRecovery(t *testing.T) {
	calls := 0
	f := newFakeUpstreams(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, timedtextJSON(12))
	})

	cfg := f.config(t)
	cfg.BaseDelay = time.Millisecond

	if err := pipeline.Run(context.Background(), cfg); err != nil {
		t.Fatalf("pipeline should recover from a single 429: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected exactly one retry, got %d calls", calls)
	}
}

func TestE2E_MissingCaptionsIsNotRetried(t *testing.T) {
	calls := 0
	f := newFakeUpstreams(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	})

	cfg := f.config(t)
	err := pipeline.Run(context.Background(), cfg)
	if err == nil {
		t.Fatalf("expected error for missing captions")
	}
	if calls != 1 {
		t.Fatalf("permanent failure retried: %d calls", calls)
	}
	if !strings.Contains(err.Error(), "captions") {
		t.Fatalf("unexpected error: %v", err)
	}
}
