package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"NewsScanner/internal/config"
	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

const (
	titleSeparator = " - "
	unknownSource  = "Unknown"
	userAgent      = "NewsScanner/1.0"
)

// GoogleNews queries the Google News RSS search endpoint.
type GoogleNews struct {
	parser   *gofeed.Parser
	cfg      config.FeedConfig
	location *time.Location
	logger   *slog.Logger
}

var _ ports.FeedSource = (*GoogleNews)(nil)

// NewGoogleNews wires an HTTP client; nil gets a client bounded by cfg.Timeout.
func NewGoogleNews(client *http.Client, cfg config.FeedConfig, loc *time.Location, logger *slog.Logger) *GoogleNews {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if loc == nil {
		loc = time.Local
	}

	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent

	return &GoogleNews{
		parser:   parser,
		cfg:      cfg,
		location: loc,
		logger:   logger,
	}
}

// Fetch returns the stubs of the search feed for keyword, capped at MaxResults.
func (g *GoogleNews) Fetch(ctx context.Context, keyword string) ([]domain.ArticleStub, error) {
	feedURL, err := BuildURL(g.cfg, keyword)
	if err != nil {
		return nil, err
	}

	parsed, err := g.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed for %q: %w", keyword, err)
	}

	stubs := make([]domain.ArticleStub, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		if g.cfg.MaxResults > 0 && len(stubs) >= g.cfg.MaxResults {
			break
		}
		stubs = append(stubs, g.parseItem(item))
	}

	if g.logger != nil {
		g.logger.Info("feed fetched", "keyword", keyword, "entries", len(parsed.Items), "stubs", len(stubs))
	}
	return stubs, nil
}

func (g *GoogleNews) parseItem(item *gofeed.Item) domain.ArticleStub {
	title, source := splitTitle(strings.TrimSpace(item.Title))
	if source == "" {
		source = sourceFromDescription(item.Description)
	}

	stub := domain.ArticleStub{
		Title:  title,
		Source: source,
		URL:    strings.TrimSpace(item.Link),
	}

	published := item.PublishedParsed
	if published == nil {
		published = item.UpdatedParsed
	}
	if published != nil {
		naive := domain.Naive(published.In(g.location))
		stub.PublishedAt = &naive
	}

	return stub
}

// BuildURL renders the search query URL for keyword.
func BuildURL(cfg config.FeedConfig, keyword string) (string, error) {
	parsed, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid feed endpoint %s: %w", cfg.Endpoint, err)
	}

	query := parsed.Query()
	query.Set("q", keyword)
	query.Set("hl", cfg.Language)
	query.Set("gl", cfg.Country)
	query.Set("ceid", cfg.Country+":"+cfg.Language)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// splitTitle separates "Headline - Source" on the last separator.
func splitTitle(title string) (string, string) {
	idx := strings.LastIndex(title, titleSeparator)
	if idx <= 0 {
		return title, ""
	}
	headline := strings.TrimSpace(title[:idx])
	source := strings.TrimSpace(title[idx+len(titleSeparator):])
	if headline == "" || source == "" {
		return title, ""
	}
	return headline, source
}

// sourceFromDescription reads the publisher from the <font> marker of the entry summary.
func sourceFromDescription(description string) string {
	if strings.TrimSpace(description) == "" {
		return unknownSource
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(description))
	if err != nil {
		return unknownSource
	}
	if source := strings.TrimSpace(doc.Find("font").Last().Text()); source != "" {
		return source
	}
	return unknownSource
}
