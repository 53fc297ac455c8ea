// Package youtubecaptions fetches timed captions from YouTube's timedtext
// endpoint, optionally through an egress proxy, and classifies failures as
// permanent or transient so the fetcher can branch on data.
package youtubecaptions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/clipscout/clipscout/internal/ports"
	"github.com/clipscout/clipscout/internal/types"
)

const (
	defaultBaseURL = "https://www.youtube.com/api/timedtext"
	requestTimeout = 30 * time.Second
)

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})(?:[^0-9A-Za-z_-]|$)`),
	regexp.MustCompile(`(?:embed/)([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`(?:youtu\.be/)([0-9A-Za-z_-]{11})`),
}

// ExtractVideoID pulls the 11-character video id out of a YouTube URL.
func ExtractVideoID(rawURL string) (string, bool) {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return m[1], true
		}
	}
	return "", false
}

type Adapter struct {
	baseURL string
	lang    string
}

func New(baseURL, lang string) *Adapter {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if lang == "" {
		lang = "en"
	}
	return &Adapter{baseURL: baseURL, lang: lang}
}

// timedtext json3 payload: events carry start/duration in milliseconds and
// text split into segments.
type timedtextResponse struct {
	Events []struct {
		StartMs    int64 `json:"tStartMs"`
		DurationMs int64 `json:"dDurationMs"`
		Segs       []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// Fetch retrieves captions for videoID. proxyEndpoint may be empty, meaning
// a direct connection.
func (a *Adapter) Fetch(ctx context.Context, videoID, proxyEndpoint string) ([]types.Entry, error) {
	u := fmt.Sprintf("%s?v=%s&lang=%s&fmt=json3", a.baseURL, url.QueryEscape(videoID), url.QueryEscape(a.lang))

	client, err := newClient(proxyEndpoint)
	if err != nil {
		return nil, ports.Transient(err)
	}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, ports.Transient(err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, ports.Transient(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decoding
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusNotFound,
		resp.StatusCode == http.StatusGone:
		return nil, ports.Permanent(fmt.Errorf("captions disabled or missing (%s)", resp.Status))
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, ports.Transient(fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(b))))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ports.Transient(err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		// The endpoint answers 200 with an empty body for videos without
		// captions in the requested language.
		return nil, ports.Permanent(errors.New("no caption track found"))
	}

	var tt timedtextResponse
	if err := json.Unmarshal(body, &tt); err != nil {
		return nil, ports.Transient(fmt.Errorf("decode timedtext: %w", err))
	}

	entries := make([]types.Entry, 0, len(tt.Events))
	for _, ev := range tt.Events {
		var b strings.Builder
		for _, seg := range ev.Segs {
			b.WriteString(seg.UTF8)
		}
		text := strings.TrimSpace(b.String())
		if text == "" || ev.DurationMs <= 0 {
			continue
		}
		entries = append(entries, types.Entry{
			Start:    float64(ev.StartMs) / 1000,
			Duration: float64(ev.DurationMs) / 1000,
			Text:     text,
		})
	}
	if len(entries) == 0 {
		return nil, ports.Permanent(errors.New("caption track is empty"))
	}
	return entries, nil
}

func newClient(proxyEndpoint string) (*http.Client, error) {
	client := &http.Client{Timeout: requestTimeout}
	if proxyEndpoint == "" {
		return client, nil
	}
	if !strings.Contains(proxyEndpoint, "://") {
		proxyEndpoint = "http://" + proxyEndpoint
	}
	proxyURL, err := url.Parse(proxyEndpoint)
	if err != nil {
		return nil, fmt.Errorf("bad proxy endpoint: %w", err)
	}
	client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	return client, nil
}
