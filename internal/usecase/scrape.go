package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

// SleepFunc pauses between articles and returns early when ctx ends.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ScraperDeps wires the per-article adapters into the scrape orchestrator.
type ScraperDeps struct {
	Resolver  ports.URLResolver
	Extractor ports.Extractor
	Browser   ports.BrowserSession
	Sleep     SleepFunc
	Logger    *slog.Logger
}

// Scraper resolves and extracts stubs one after another.
type Scraper struct {
	resolver  ports.URLResolver
	extractor ports.Extractor
	browser   ports.BrowserSession
	sleep     SleepFunc
	logger    *slog.Logger
}

// NewScraper constructs the orchestrator.
func NewScraper(deps ScraperDeps) *Scraper {
	sleep := deps.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return &Scraper{
		resolver:  deps.Resolver,
		extractor: deps.Extractor,
		browser:   deps.Browser,
		sleep:     sleep,
		logger:    deps.Logger,
	}
}

// ScrapeAll returns one article per stub in input order, waiting delay between articles.
// The browser session, if any, is released once when the batch ends, however it ends.
func (s *Scraper) ScrapeAll(ctx context.Context, stubs []domain.ArticleStub, delay time.Duration) ([]domain.ScrapedArticle, error) {
	if s.browser != nil {
		defer func() {
			if err := s.browser.Release(); err != nil && s.logger != nil {
				s.logger.Warn("release browser", "error", err)
			}
		}()
	}

	scraped := make([]domain.ScrapedArticle, 0, len(stubs))
	for i, stub := range stubs {
		if err := ctx.Err(); err != nil {
			return scraped, fmt.Errorf("scrape stopped after %d of %d articles: %w", i, len(stubs), err)
		}

		article := s.scrape(ctx, stub)
		scraped = append(scraped, article)
		s.info("article scraped", "index", i+1, "total", len(stubs), "url", article.URL, "extracted", article.Extracted())

		if i < len(stubs)-1 && delay > 0 {
			if err := s.sleep(ctx, delay); err != nil {
				return scraped, fmt.Errorf("scrape stopped after %d of %d articles: %w", i+1, len(stubs), err)
			}
		}
	}

	return scraped, nil
}

func (s *Scraper) scrape(ctx context.Context, stub domain.ArticleStub) domain.ScrapedArticle {
	resolved := s.resolver.Resolve(ctx, stub.URL)

	article := domain.ScrapedArticle{ArticleStub: stub, ResolvedURL: resolved}
	article.URL = resolved

	if s.resolver.IsAggregator(resolved) {
		article.Content = domain.Failure{Kind: domain.FailureUnresolved}.Placeholder()
		return article
	}

	extraction := s.extractor.Extract(ctx, resolved)
	article.Content = extraction.Content()
	article.Journalist = extraction.Journalist
	return article
}

func (s *Scraper) info(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
