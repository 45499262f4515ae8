package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"NewsScanner/internal/config"
	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

// EnricherDeps wires the NLP capabilities. Any capability may be nil and then yields its default.
type EnricherDeps struct {
	Summarizer ports.Summarizer
	Sentiment  ports.SentimentClassifier
	Topics     ports.TopicExtractor
	Config     config.NLPConfig
	Logger     *slog.Logger
}

// Enricher adds summary, sentiment and topics to scraped articles.
type Enricher struct {
	summarizer ports.Summarizer
	sentiment  ports.SentimentClassifier
	topics     ports.TopicExtractor
	cfg        config.NLPConfig
	logger     *slog.Logger
}

// NewEnricher constructs the enrichment stage.
func NewEnricher(deps EnricherDeps) *Enricher {
	return &Enricher{
		summarizer: deps.Summarizer,
		sentiment:  deps.Sentiment,
		topics:     deps.Topics,
		cfg:        deps.Config,
		logger:     deps.Logger,
	}
}

// Enrich processes articles in order. Capability failures degrade single fields; only a model
// that cannot be loaded at all aborts the batch with domain.ErrModelUnavailable.
func (e *Enricher) Enrich(ctx context.Context, articles []domain.ScrapedArticle, sink ports.ProgressSink) ([]domain.EnrichedArticle, error) {
	total := len(articles)
	enriched := make([]domain.EnrichedArticle, 0, total)

	for i, article := range articles {
		if err := ctx.Err(); err != nil {
			return enriched, fmt.Errorf("enrich stopped after %d of %d articles: %w", i, total, err)
		}

		record, err := e.enrich(ctx, article)
		if err != nil {
			return enriched, err
		}
		enriched = append(enriched, record)

		if sink != nil {
			sink.Report(float64(i+1)/float64(total), fmt.Sprintf("Processing article %d/%d", i+1, total))
		}
	}

	return enriched, nil
}

func (e *Enricher) enrich(ctx context.Context, article domain.ScrapedArticle) (domain.EnrichedArticle, error) {
	content := strings.TrimSpace(article.Content)
	if content == "" || domain.IsSentinel(content) || utf8.RuneCountInString(content) < e.cfg.MinContentLength {
		return domain.Skipped(article), nil
	}

	record := domain.Skipped(article)
	normalized := strings.Join(strings.Fields(content), " ")

	if e.summarizer != nil {
		summary, err := e.summarizer.Summarize(ctx, truncate(normalized, e.cfg.Summary.MaxInputChars), ports.SummaryOptions{
			MinLength: e.cfg.Summary.MinLength,
			MaxLength: e.cfg.Summary.MaxLength,
		})
		switch {
		case errors.Is(err, domain.ErrModelUnavailable):
			return record, fmt.Errorf("summarize: %w", err)
		case err != nil:
			e.warn("summarize failed", "url", article.URL, "error", err)
			record.Summary = domain.Failure{Kind: domain.FailureSummarize, Detail: err.Error()}.Placeholder()
		default:
			record.Summary = summary
		}
	}

	if e.sentiment != nil {
		label, score, err := e.sentiment.Classify(ctx, truncate(normalized, e.cfg.Sentiment.MaxInputChars))
		switch {
		case errors.Is(err, domain.ErrModelUnavailable):
			return record, fmt.Errorf("classify sentiment: %w", err)
		case err != nil:
			e.warn("sentiment failed", "url", article.URL, "error", err)
		default:
			record.Sentiment = domain.ParseSentiment(label)
			record.SentimentScore = math.Round(score*1000) / 1000
		}
	}

	if e.topics != nil {
		if topics := e.topics.Topics(content, e.cfg.Topics.Count); len(topics) > 0 {
			record.Topics = strings.Join(topics, ", ")
		}
	}

	return record, nil
}

func (e *Enricher) warn(msg string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}

// truncate keeps at most n runes of s; n <= 0 keeps everything.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
