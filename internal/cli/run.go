package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clipscout/clipscout/internal/pipeline"
	"github.com/clipscout/clipscout/internal/ports/adapters/youtubecaptions"
	"github.com/clipscout/clipscout/internal/server"
)

const analyzeDeadline = 30 * time.Minute

func runAnalyze(cmd *cobra.Command, videoURL string) error {
	srtPath, _ := cmd.Flags().GetString("srt")
	platform, _ := cmd.Flags().GetString("platform")
	outPath, _ := cmd.Flags().GetString("out")
	cut, _ := cmd.Flags().GetBool("cut")
	media, _ := cmd.Flags().GetString("input")
	clipsDir, _ := cmd.Flags().GetString("clips-dir")

	videoID := ""
	if videoURL != "" {
		id, ok := youtubecaptions.ExtractVideoID(videoURL)
		if !ok {
			// A bare 11-char id is accepted as-is.
			if len(videoURL) == 11 && !strings.ContainsAny(videoURL, "/?&.") {
				id = videoURL
			} else {
				return fmt.Errorf("could not extract a video id from %q", videoURL)
			}
		}
		videoID = id
	}

	ctx, cancel := context.WithTimeout(context.Background(), analyzeDeadline)
	defer cancel()

	cfg := pipeline.Config{
		VideoID:  videoID,
		SRTPath:  srtPath,
		Platform: platform,
		OutPath:  outPath,

		CutClips:  cut,
		MediaPath: media,
		OutDir:    clipsDir,

		HFToken: os.Getenv("HUGGINGFACE_API_TOKEN"),
		HFModel: os.Getenv("HUGGINGFACE_MODEL"),

		ProxySources: splitEnvList(os.Getenv("PROXY_SOURCES")),

		FFmpegPath: getenvDefault("FFMPEG_PATH", "ffmpeg"),

		Logf: func(format string, args ...any) {
			fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
		},
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return pipeline.Run(ctx, cfg)
}

func runServe(cmd *cobra.Command) error {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = ":" + getenvDefault("PORT", "8080")
	}

	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	analyzer := pipeline.BuildAnalyzer(pipeline.Config{
		HFToken:      os.Getenv("HUGGINGFACE_API_TOKEN"),
		HFModel:      os.Getenv("HUGGINGFACE_MODEL"),
		ProxySources: splitEnvList(os.Getenv("PROXY_SOURCES")),
		Logf: func(format string, args ...any) {
			log.Info(fmt.Sprintf(format, args...))
		},
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(analyzer, log).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func splitEnvList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
