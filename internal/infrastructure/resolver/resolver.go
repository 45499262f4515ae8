package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsScanner/internal/config"
	"NewsScanner/internal/ports"
	"NewsScanner/internal/strategy"
)

const linkPollInterval = 500 * time.Millisecond

var (
	scriptURLExpr = regexp.MustCompile(`https?:(?:\\?/){2}[^\s"'<>]+`)

	errNoLanding   = errors.New("landing page unavailable")
	errNoCandidate = errors.New("no outbound candidate")
)

// landing is the aggregator page shared by the HTML strategies.
type landing struct {
	url  string
	page ports.Page
	doc  *goquery.Document
	err  error
}

// Resolver follows an aggregator redirect link to the publisher URL.
type Resolver struct {
	fetcher ports.PageFetcher
	browser ports.BrowserSession
	cfg     config.ResolverConfig
	chain   *strategy.Chain[*landing, string]
	logger  *slog.Logger
}

var _ ports.URLResolver = (*Resolver)(nil)

// New wires the HTTP strategies; a non-nil browser adds the rendering strategy last.
func New(fetcher ports.PageFetcher, browser ports.BrowserSession, cfg config.ResolverConfig, logger *slog.Logger) *Resolver {
	r := &Resolver{
		fetcher: fetcher,
		browser: browser,
		cfg:     cfg,
		logger:  logger,
	}

	r.chain = strategy.New(r.Outbound, logger,
		strategy.Step[*landing, string]{Name: "redirect", Run: r.viaRedirect},
		strategy.Step[*landing, string]{Name: "anchor", Run: r.viaAnchor},
		strategy.Step[*landing, string]{Name: "script", Run: r.viaScript},
		strategy.Step[*landing, string]{Name: "og-url", Run: r.viaOpenGraph},
	)
	if browser != nil {
		r.chain.Register(strategy.Step[*landing, string]{Name: "browser", Run: r.viaBrowser})
	}
	return r
}

// Strategies lists the resolution strategies in the order they are tried.
func (r *Resolver) Strategies() []string {
	return r.chain.Names()
}

// Resolve returns the publisher URL behind redirectURL, or redirectURL itself when no strategy succeeds.
func (r *Resolver) Resolve(ctx context.Context, redirectURL string) string {
	redirectURL = strings.TrimSpace(redirectURL)
	if redirectURL == "" || !r.IsAggregator(redirectURL) {
		return redirectURL
	}

	l := &landing{url: redirectURL}
	l.page, l.err = r.fetcher.Fetch(ctx, redirectURL)
	if l.page.HTML != "" {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(l.page.HTML)); err == nil {
			l.doc = doc
		}
	}

	resolved, name, ok := r.chain.Run(ctx, l)
	if !ok {
		r.debug("url unresolved", "url", redirectURL)
		return redirectURL
	}
	r.debug("url resolved", "url", redirectURL, "resolved", resolved, "strategy", name)
	return resolved
}

// IsAggregator reports whether rawURL points into one of the aggregator domains.
func (r *Resolver) IsAggregator(rawURL string) bool {
	return hostMatches(rawURL, r.cfg.AggregatorDomains)
}

// Outbound reports whether candidate is an absolute http(s) URL outside the aggregator domains.
func (r *Resolver) Outbound(candidate string) bool {
	u, err := url.Parse(candidate)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return !r.IsAggregator(candidate)
}

func (r *Resolver) viaRedirect(_ context.Context, l *landing) (string, error) {
	// A publisher answering the redirect with an error status is still the right destination.
	if l.page.URL == "" {
		if l.err != nil {
			return "", l.err
		}
		return "", errNoLanding
	}
	return l.page.URL, nil
}

func (r *Resolver) viaAnchor(_ context.Context, l *landing) (string, error) {
	if l.doc == nil {
		return "", errNoLanding
	}

	var found string
	l.doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if r.Outbound(href) {
			found = href
			return false
		}
		return true
	})
	if found == "" {
		return "", errNoCandidate
	}
	return found, nil
}

func (r *Resolver) viaScript(_ context.Context, l *landing) (string, error) {
	if l.doc == nil {
		return "", errNoLanding
	}

	var found string
	l.doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, raw := range scriptURLExpr.FindAllString(s.Text(), -1) {
			candidate := unescapeScriptURL(raw)
			if len(candidate) > r.cfg.MinCandidateLength && r.Outbound(candidate) {
				found = candidate
				return false
			}
		}
		return true
	})
	if found == "" {
		return "", errNoCandidate
	}
	return found, nil
}

func (r *Resolver) viaOpenGraph(_ context.Context, l *landing) (string, error) {
	if l.doc == nil {
		return "", errNoLanding
	}
	content, ok := l.doc.Find(`meta[property="og:url"]`).First().Attr("content")
	if !ok || strings.TrimSpace(content) == "" {
		return "", errNoCandidate
	}
	return strings.TrimSpace(content), nil
}

func (r *Resolver) viaBrowser(ctx context.Context, l *landing) (string, error) {
	page, err := r.browser.Open(ctx, l.url)
	if err != nil {
		return "", fmt.Errorf("open in browser: %w", err)
	}

	page.Wait(r.cfg.RedirectWait)
	if current := page.URL(); r.Outbound(current) {
		return current, nil
	}

	polls := int(r.cfg.LinkTimeout / linkPollInterval)
	if polls < 1 {
		polls = 1
	}
	for i := 0; i < polls; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if links, err := page.Links(); err == nil {
			if best := r.longestCandidate(links); best != "" {
				return best, nil
			}
		}
		page.Wait(linkPollInterval)
	}
	return "", errNoCandidate
}

// longestCandidate picks the longest outbound link, longer URLs being full article paths
// rather than tracking shims.
func (r *Resolver) longestCandidate(links []string) string {
	var best string
	for _, link := range links {
		link = strings.TrimSpace(link)
		if len(link) <= r.cfg.MinCandidateLength || !r.Outbound(link) {
			continue
		}
		if hostMatches(link, r.cfg.ExcludedDomains) {
			continue
		}
		if len(link) > len(best) {
			best = link
		}
	}
	return best
}

func (r *Resolver) debug(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

func unescapeScriptURL(raw string) string {
	s := strings.ReplaceAll(raw, `\/`, "/")
	s = strings.ReplaceAll(s, `\u0026`, "&")
	s = strings.ReplaceAll(s, `\u003d`, "=")
	s = strings.TrimRight(s, `\,;)`)
	if decoded, err := url.PathUnescape(s); err == nil {
		s = decoded
	}
	return s
}

func hostMatches(rawURL string, domains []string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimPrefix(d, "."))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
