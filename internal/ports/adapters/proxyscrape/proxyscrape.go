// Package proxyscrape lists candidate egress proxies from plain-text list
// providers (one host:port per line). Providers are best-effort by contract:
// an unreachable list simply contributes nothing.
package proxyscrape

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/clipscout/clipscout/internal/ports"
)

// DefaultSources are public free-proxy list endpoints.
var DefaultSources = []string{
	"https://api.proxyscrape.com/v2/?request=displayproxies&protocol=http&timeout=10000",
	"https://raw.githubusercontent.com/TheSpeedX/PROXY-List/master/http.txt",
}

const requestTimeout = 15 * time.Second

type Provider struct {
	url    string
	client *http.Client
}

func New(url string) *Provider {
	return &Provider{url: url, client: &http.Client{Timeout: requestTimeout}}
}

// Providers wraps each source URL in a Provider. Empty input selects the
// default sources.
func Providers(urls []string) []ports.ProxyProvider {
	if len(urls) == 0 {
		urls = DefaultSources
	}
	out := make([]ports.ProxyProvider, 0, len(urls))
	for _, u := range urls {
		out = append(out, New(u))
	}
	return out
}

// List fetches the provider's list and returns one endpoint per line.
func (p *Provider) List(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("proxy list %s: %s", p.url, resp.Status)
	}

	var out []string
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}
