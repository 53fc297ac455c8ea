// Package pipeline wires adapters into the usecase and runs one-shot
// analyses for the CLI. The HTTP server does its own lifetime management and
// only borrows BuildAnalyzer from here.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/clipscout/clipscout/internal/domain/clips"
	"github.com/clipscout/clipscout/internal/fetcher"
	"github.com/clipscout/clipscout/internal/ports"
	"github.com/clipscout/clipscout/internal/ports/adapters/ffmpegcut"
	"github.com/clipscout/clipscout/internal/ports/adapters/hfsentiment"
	"github.com/clipscout/clipscout/internal/ports/adapters/proxyscrape"
	"github.com/clipscout/clipscout/internal/ports/adapters/youtubecaptions"
	"github.com/clipscout/clipscout/internal/proxy"
	"github.com/clipscout/clipscout/internal/types"
	"github.com/clipscout/clipscout/internal/usecase"
)

type Config struct {
	// Exactly one of VideoID and SRTPath selects the transcript source.
	VideoID  string
	SRTPath  string
	Platform string

	// OutPath receives the analysis JSON. Empty writes to stdout.
	OutPath string

	// CutClips runs ffmpeg over MediaPath for every ranked clip.
	CutClips  bool
	MediaPath string
	OutDir    string

	HFToken   string
	HFModel   string
	HFBaseURL string

	CaptionsBaseURL string
	CaptionsLang    string

	ProxySources []string
	MaxAttempts  int
	BaseDelay    time.Duration

	FFmpegPath string

	Logf func(format string, args ...any)
}

func (c Config) Validate() error {
	if c.VideoID == "" && c.SRTPath == "" {
		return errors.New("a video id or an srt file is required")
	}
	if c.VideoID != "" && c.SRTPath != "" {
		return errors.New("video id and srt file are mutually exclusive")
	}
	if c.SRTPath != "" {
		if _, err := os.Stat(c.SRTPath); err != nil {
			return fmt.Errorf("stat srt file: %w", err)
		}
	}
	if c.CutClips {
		if c.MediaPath == "" {
			return errors.New("cutting clips requires a local media file")
		}
		if _, err := os.Stat(c.MediaPath); err != nil {
			return fmt.Errorf("stat media file: %w", err)
		}
	}
	if c.MaxAttempts < 0 {
		return errors.New("max attempts must be >= 0")
	}
	return nil
}

// BuildAnalyzer assembles the full fetch-and-score stack from the config.
func BuildAnalyzer(cfg Config) usecase.Usecase {
	pool := proxy.New(proxyscrape.Providers(cfg.ProxySources), nil)
	source := youtubecaptions.New(cfg.CaptionsBaseURL, cfg.CaptionsLang)
	f := fetcher.New(source, pool, fetcher.Config{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
		Logf:        cfg.Logf,
	})

	return usecase.New(usecase.Deps{
		Fetcher:    f,
		Classifier: hfsentiment.New(cfg.HFToken, cfg.HFModel, cfg.HFBaseURL),
		Logf:       cfg.Logf,
	})
}

// Run performs one analysis and writes the result as JSON. With CutClips set
// it also extracts every ranked clip from the local media file.
func Run(ctx context.Context, cfg Config) error {
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
		cfg.Logf = logf
	}

	in := usecase.Input{
		VideoID:   cfg.VideoID,
		Kind:      types.SourceCaptions,
		Platform:  cfg.Platform,
		MediaPath: cfg.MediaPath,
	}
	if cfg.SRTPath != "" {
		b, err := os.ReadFile(cfg.SRTPath)
		if err != nil {
			return err
		}
		in = usecase.Input{
			Subtitles: string(b),
			Kind:      types.SourceSubtitles,
			Platform:  cfg.Platform,
			MediaPath: cfg.MediaPath,
		}
		logf("analyzing subtitle file %s", cfg.SRTPath)
	} else {
		logf("analyzing video %s", cfg.VideoID)
	}

	res, err := BuildAnalyzer(cfg).Analyze(ctx, in)
	if err != nil {
		return err
	}
	logf("analysis complete: %d clips, top category %s", res.Summary.TotalClips, res.Summary.TopCategory)

	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	if cfg.OutPath == "" {
		fmt.Println(string(b))
	} else {
		if err := os.WriteFile(cfg.OutPath, b, 0o644); err != nil {
			return err
		}
		logf("analysis written: %s", cfg.OutPath)
	}

	if cfg.CutClips {
		return cutAll(ctx, cfg, res.Clips, logf)
	}
	return nil
}

func cutAll(ctx context.Context, cfg Config, list []types.Clip, logf func(string, ...any)) error {
	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "clips"
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	cutter := ffmpegcut.New(cfg.FFmpegPath)
	for _, c := range list {
		out := filepath.Join(outDir, clips.Slug(c.Title)+".mp4")
		logf("cutting clip %d (%s .. %s) -> %s", c.ID, c.StartTime, c.EndTime, out)
		if err := cutter.Cut(ctx, cfg.MediaPath, c.StartSec, c.EndSec, out); err != nil {
			return fmt.Errorf("clip %d: %w", c.ID, err)
		}
	}
	logf("cut %d clips into %s", len(list), outDir)
	return nil
}

// ensure adapters implement ports
var (
	_ ports.CaptionSource       = (*youtubecaptions.Adapter)(nil)
	_ ports.SentimentClassifier = (*hfsentiment.Adapter)(nil)
	_ ports.ProxyProvider       = (*proxyscrape.Provider)(nil)
	_ ports.MediaCutter         = (*ffmpegcut.Adapter)(nil)
)
