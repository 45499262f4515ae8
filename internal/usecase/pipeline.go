package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

// PipelineDeps wires all stages into the search workflow. Enricher may be nil.
type PipelineDeps struct {
	Feed     ports.FeedSource
	Scraper  *Scraper
	Enricher *Enricher
	Logger   *slog.Logger
}

// SearchRequest describes one keyword search.
type SearchRequest struct {
	Keyword  string
	Range    DateRange
	Enrich   bool
	Delay    time.Duration
	Progress ports.ProgressSink
}

// SearchResult holds the final records and the per-stage counts of one run.
type SearchResult struct {
	RunID     string                   `json:"run_id"`
	Keyword   string                   `json:"keyword"`
	From      time.Time                `json:"from"`
	To        time.Time                `json:"to"`
	Fetched   int                      `json:"fetched"`
	Filtered  int                      `json:"filtered"`
	Extracted int                      `json:"extracted"`
	Articles  []domain.EnrichedArticle `json:"articles"`
}

// Pipeline implements the article acquisition workflow.
type Pipeline struct {
	feed     ports.FeedSource
	scraper  *Scraper
	enricher *Enricher
	logger   *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		feed:     deps.Feed,
		scraper:  deps.Scraper,
		enricher: deps.Enricher,
		logger:   deps.Logger,
	}
}

// Search fetches, filters, scrapes and optionally enriches the articles for a keyword.
// A feed failure stops the run; per-article failures are recorded in the articles themselves.
func (p *Pipeline) Search(ctx context.Context, req SearchRequest) (SearchResult, error) {
	result := SearchResult{
		RunID:   uuid.NewString(),
		Keyword: strings.TrimSpace(req.Keyword),
		From:    req.Range.From,
		To:      req.Range.To,
	}
	if result.Keyword == "" {
		return result, errors.New("keyword is required")
	}
	if p.feed == nil || p.scraper == nil {
		return result, errors.New("pipeline misconfigured: feed and scraper are required")
	}

	logger := p.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("run_id", result.RunID, "keyword", result.Keyword)

	stubs, err := p.feed.Fetch(ctx, result.Keyword)
	if err != nil {
		return result, fmt.Errorf("fetch feed: %w", err)
	}
	result.Fetched = len(stubs)

	stubs = FilterByDate(stubs, req.Range.From, req.Range.To)
	result.Filtered = len(stubs)
	logger.Info("feed filtered", "fetched", result.Fetched, "filtered", result.Filtered,
		"from", req.Range.From.Format(time.DateOnly), "to", req.Range.To.Format(time.DateOnly))
	if len(stubs) == 0 {
		return result, nil
	}

	scraped, err := p.scraper.ScrapeAll(ctx, stubs, req.Delay)
	if err != nil {
		return result, fmt.Errorf("scrape articles: %w", err)
	}
	for _, article := range scraped {
		if article.Extracted() {
			result.Extracted++
		}
	}
	logger.Info("articles scraped", "extracted", result.Extracted, "total", len(scraped))

	if !req.Enrich || p.enricher == nil {
		result.Articles = make([]domain.EnrichedArticle, 0, len(scraped))
		for _, article := range scraped {
			result.Articles = append(result.Articles, domain.Skipped(article))
		}
		return result, nil
	}

	enriched, err := p.enricher.Enrich(ctx, scraped, req.Progress)
	if err != nil {
		return result, fmt.Errorf("enrich articles: %w", err)
	}
	result.Articles = enriched
	logger.Info("articles enriched", "total", len(enriched))

	return result, nil
}
