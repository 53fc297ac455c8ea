// Package proxy maintains the pool of egress proxy endpoints used to
// diversify outbound caption requests. The pool is the only long-lived
// mutable state in the system: refreshes replace the endpoint set wholesale
// so concurrent readers never observe a torn pool.
package proxy

import (
	"context"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clipscout/clipscout/internal/ports"
)

const (
	defaultProbeURL     = "https://www.google.com/generate_204"
	defaultProbeTimeout = 10 * time.Second
	probeConcurrency    = 8
)

// ProbeFunc reports whether an endpoint answered a bounded-timeout request.
type ProbeFunc func(ctx context.Context, endpoint string) bool

// Pool holds the endpoints currently believed functional. No per-entry health
// score is kept; an endpoint is either in the set or it is not.
type Pool struct {
	providers []ports.ProxyProvider
	probe     ProbeFunc

	mu        sync.Mutex
	endpoints []string
	rng       *rand.Rand
}

// New builds a pool over the given providers. A nil probe selects the default
// HTTP probe against a known-reachable URL.
func New(providers []ports.ProxyProvider, probe ProbeFunc) *Pool {
	if probe == nil {
		probe = defaultProbe(defaultProbeURL, defaultProbeTimeout)
	}
	return &Pool{
		providers: providers,
		probe:     probe,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Seed re-seeds the draw order; tests use it for reproducible draws.
func (p *Pool) Seed(seed int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rng = rand.New(rand.NewSource(seed))
}

// Size reports the current endpoint count.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.endpoints)
}

// Draw returns a random endpoint, refreshing first when the pool is empty.
// An empty string means no proxy is available and the caller should connect
// directly.
func (p *Pool) Draw(ctx context.Context) string {
	p.mu.Lock()
	n := len(p.endpoints)
	p.mu.Unlock()

	if n == 0 {
		p.Refresh(ctx)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.endpoints) == 0 {
		return ""
	}
	return p.endpoints[p.rng.Intn(len(p.endpoints))]
}

// Refresh gathers candidates from every provider (best-effort), deduplicates,
// validates each with the probe, and atomically swaps in the surviving set.
// An empty result is a valid, if degraded, outcome.
func (p *Pool) Refresh(ctx context.Context) {
	var candidates []string
	seen := map[string]bool{}
	for _, prov := range p.providers {
		list, err := prov.List(ctx)
		if err != nil {
			continue
		}
		for _, ep := range list {
			ep = strings.TrimSpace(ep)
			if ep == "" || seen[ep] {
				continue
			}
			seen[ep] = true
			candidates = append(candidates, ep)
		}
	}

	valid := make([]string, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)
	for i, ep := range candidates {
		i, ep := i, ep
		g.Go(func() error {
			if p.probe(gctx, ep) {
				valid[i] = ep
			}
			return nil
		})
	}
	_ = g.Wait()

	fresh := make([]string, 0, len(candidates))
	for _, ep := range valid {
		if ep != "" {
			fresh = append(fresh, ep)
		}
	}

	p.mu.Lock()
	p.endpoints = fresh
	p.mu.Unlock()
}

func defaultProbe(probeURL string, timeout time.Duration) ProbeFunc {
	return func(ctx context.Context, endpoint string) bool {
		proxyURL, err := url.Parse(withScheme(endpoint))
		if err != nil {
			return false
		}
		client := &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)},
		}
		defer client.CloseIdleConnections()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
		if err != nil {
			return false
		}
		resp, err := client.Do(req)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}
}

func withScheme(endpoint string) string {
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	return "http://" + endpoint
}
