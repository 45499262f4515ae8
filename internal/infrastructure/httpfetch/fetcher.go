package httpfetch

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/go-resty/resty/v2"

	"NewsScanner/internal/config"
	"NewsScanner/internal/ports"
)

const acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// Fetcher retrieves raw HTML with a rotating user agent and follows redirects.
type Fetcher struct {
	client         *resty.Client
	userAgents     []string
	acceptLanguage string
	next           atomic.Uint64
}

var _ ports.PageFetcher = (*Fetcher)(nil)

// New builds a fetcher with its own HTTP client.
func New(cfg config.HTTPConfig) *Fetcher {
	return NewWithClient(nil, cfg)
}

// NewWithClient wires an existing *http.Client (tests pass httptest clients).
func NewWithClient(hc *http.Client, cfg config.HTTPConfig) *Fetcher {
	var client *resty.Client
	if hc != nil {
		client = resty.NewWithClient(hc)
	} else {
		client = resty.New()
	}

	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	if cfg.RetryCount > 0 {
		client.SetRetryCount(cfg.RetryCount)
	}
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 10
	}
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects))
	client.SetHeader("Accept", acceptHTML)

	agents := cfg.UserAgents
	if len(agents) == 0 {
		agents = config.Default().HTTP.UserAgents
	}

	return &Fetcher{
		client:         client,
		userAgents:     agents,
		acceptLanguage: cfg.AcceptLanguage,
	}
}

// Fetch downloads pageURL and reports the URL it was finally served from.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (ports.Page, error) {
	req := f.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", f.UserAgent())
	if f.acceptLanguage != "" {
		req.SetHeader("Accept-Language", f.acceptLanguage)
	}

	resp, err := req.Get(pageURL)
	if err != nil {
		return ports.Page{}, fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	finalURL := pageURL
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		finalURL = raw.Request.URL.String()
	}

	page := ports.Page{
		URL:        finalURL,
		StatusCode: resp.StatusCode(),
		HTML:       string(resp.Body()),
	}
	if resp.IsError() {
		return page, fmt.Errorf("fetch %s: unexpected status %s", pageURL, resp.Status())
	}

	return page, nil
}

// UserAgent returns the next user agent in rotation.
func (f *Fetcher) UserAgent() string {
	n := f.next.Add(1) - 1
	return f.userAgents[n%uint64(len(f.userAgents))]
}
