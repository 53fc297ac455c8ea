// Package server exposes the analysis pipeline over HTTP. It owns request
// parsing and response shaping only; all scoring behavior lives in the
// usecase layer behind the Analyzer interface.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clipscout/clipscout/internal/domain/transcript"
	"github.com/clipscout/clipscout/internal/fetcher"
	"github.com/clipscout/clipscout/internal/ports/adapters/youtubecaptions"
	"github.com/clipscout/clipscout/internal/types"
	"github.com/clipscout/clipscout/internal/usecase"
)

const analyzeTimeout = 10 * time.Minute

// Analyzer runs one full analysis. The usecase satisfies it; tests substitute
// a fake.
type Analyzer interface {
	Analyze(ctx context.Context, in usecase.Input) (types.Analysis, error)
}

type Server struct {
	analyzer Analyzer
	log      *slog.Logger
}

func New(analyzer Analyzer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{analyzer: analyzer, log: log}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.GET("/api/health", s.health)
	r.POST("/api/analyze", s.analyze)
	return r
}

// requestLog tags every request with an id and logs its outcome.
func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)

		start := time.Now()
		c.Next()

		s.log.Info("request",
			"id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "time": time.Now().UTC().Format(time.RFC3339)})
}

type analyzeRequest struct {
	VideoURL string `json:"videoUrl"`
	SRT      string `json:"srt"`
	Platform string `json:"platform"`
}

type analyzeResponse struct {
	Success bool          `json:"success"`
	VideoID string        `json:"videoId,omitempty"`
	Clips   []types.Clip  `json:"clips"`
	Summary types.Summary `json:"summary"`
}

// analyze accepts either a YouTube URL or raw SRT content. Both present is
// ambiguous and rejected; the SRT path wins nothing by guessing.
func (s *Server) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	in, videoID, err := buildInput(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), analyzeTimeout)
	defer cancel()

	res, err := s.analyzer.Analyze(ctx, in)
	if err != nil {
		s.log.Error("analysis failed", "id", c.GetString("request_id"), "err", err)
		c.JSON(statusFor(err), gin.H{"error": publicError(err)})
		return
	}

	if res.Clips == nil {
		res.Clips = []types.Clip{}
	}
	c.JSON(http.StatusOK, analyzeResponse{
		Success: true,
		VideoID: videoID,
		Clips:   res.Clips,
		Summary: res.Summary,
	})
}

func buildInput(req analyzeRequest) (usecase.Input, string, error) {
	hasURL := strings.TrimSpace(req.VideoURL) != ""
	hasSRT := strings.TrimSpace(req.SRT) != ""

	switch {
	case hasURL && hasSRT:
		return usecase.Input{}, "", errors.New("provide either videoUrl or srt, not both")
	case hasURL:
		id, ok := youtubecaptions.ExtractVideoID(req.VideoURL)
		if !ok {
			return usecase.Input{}, "", errors.New("could not extract a video id from videoUrl")
		}
		return usecase.Input{VideoID: id, Kind: types.SourceCaptions, Platform: req.Platform}, id, nil
	case hasSRT:
		return usecase.Input{Subtitles: req.SRT, Kind: types.SourceSubtitles, Platform: req.Platform}, "", nil
	default:
		return usecase.Input{}, "", errors.New("videoUrl or srt is required")
	}
}

// statusFor maps pipeline failures onto HTTP statuses: caller-fixable input
// problems are 422, upstream exhaustion is 502, the rest is 500.
func statusFor(err error) int {
	var parseErr *transcript.ParseError
	if errors.As(err, &parseErr) {
		return http.StatusUnprocessableEntity
	}
	var exhausted *fetcher.ExhaustedError
	if errors.As(err, &exhausted) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func publicError(err error) string {
	var exhausted *fetcher.ExhaustedError
	if errors.As(err, &exhausted) {
		return "could not fetch captions after repeated attempts"
	}
	return err.Error()
}
