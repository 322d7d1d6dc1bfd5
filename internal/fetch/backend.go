package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const defaultUserAgent = "jobscrape-engine/1.0"

// Backend builds the actual HTTP request for a target URL. The direct
// backend requests the page itself; the rendering-proxy backend wraps the
// target in a ScraperAPI-style call. Either way the engine sees the same
// fetch contract, so backends are interchangeable per site.
type Backend interface {
	Name() string
	BuildRequest(ctx context.Context, target string) (*http.Request, error)
}

// Direct fetches pages straight from the target host.
type Direct struct {
	UserAgent string
}

func (d Direct) Name() string { return "direct" }

func (d Direct) BuildRequest(ctx context.Context, target string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	ua := d.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	return req, nil
}

// RenderProxy routes fetches through a rendering/proxy service. The service
// fetches the target on our behalf; its failures are classified exactly like
// direct-fetch failures.
type RenderProxy struct {
	// Endpoint defaults to the ScraperAPI entrypoint. Overridable for tests.
	Endpoint string
	APIKey   string
}

const DefaultRenderEndpoint = "https://api.scraperapi.com/"

func (p RenderProxy) Name() string { return "render_proxy" }

func (p RenderProxy) BuildRequest(ctx context.Context, target string) (*http.Request, error) {
	if strings.TrimSpace(p.APIKey) == "" {
		return nil, fmt.Errorf("render proxy: api key is empty")
	}
	endpoint := p.Endpoint
	if endpoint == "" {
		endpoint = DefaultRenderEndpoint
	}

	q := url.Values{}
	q.Set("api_key", p.APIKey)
	q.Set("url", target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	return req, nil
}
