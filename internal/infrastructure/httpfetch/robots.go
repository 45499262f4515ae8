package httpfetch

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsGuard answers whether a page may be fetched, caching robots.txt per host.
// Unreachable or unparsable robots files allow everything.
type RobotsGuard struct {
	fetcher *Fetcher
	agent   string
	logger  *slog.Logger

	mu    sync.Mutex
	hosts map[string]*robotstxt.RobotsData
}

// NewRobotsGuard uses fetcher to download robots.txt files and tests rules for agent.
func NewRobotsGuard(fetcher *Fetcher, agent string, logger *slog.Logger) *RobotsGuard {
	if agent == "" {
		agent = "*"
	}
	return &RobotsGuard{
		fetcher: fetcher,
		agent:   agent,
		logger:  logger,
		hosts:   map[string]*robotstxt.RobotsData{},
	}
}

// Allowed reports whether pageURL may be fetched.
func (g *RobotsGuard) Allowed(ctx context.Context, pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return true
	}

	data := g.rules(ctx, u)
	if data == nil {
		return true
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, g.agent)
}

func (g *RobotsGuard) rules(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	key := u.Scheme + "://" + u.Host

	g.mu.Lock()
	data, cached := g.hosts[key]
	g.mu.Unlock()
	if cached {
		return data
	}

	resp, err := g.fetcher.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", g.fetcher.UserAgent()).
		Get(key + "/robots.txt")
	if err == nil {
		data, err = robotstxt.FromStatusAndBytes(resp.StatusCode(), resp.Body())
	}
	if err != nil {
		if g.logger != nil {
			g.logger.Debug("robots.txt unavailable", "host", u.Host, "error", err)
		}
		data = nil
	}

	g.mu.Lock()
	g.hosts[key] = data
	g.mu.Unlock()
	return data
}
