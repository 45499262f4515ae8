package ports

import (
	"context"
	"time"

	"NewsScanner/internal/domain"
)

// FeedSource queries the aggregator search feed for a keyword.
type FeedSource interface {
	Fetch(ctx context.Context, keyword string) ([]domain.ArticleStub, error)
}

// URLResolver turns an aggregator redirect link into the publisher URL.
// It never fails; an unresolved link is returned unchanged.
type URLResolver interface {
	Resolve(ctx context.Context, redirectURL string) string
	IsAggregator(rawURL string) bool
}

// Extractor pulls the article body and byline out of a publisher page.
type Extractor interface {
	Extract(ctx context.Context, pageURL string) domain.Extraction
}

// PageFetcher is the raw HTTP capability shared by the resolver and extractor.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (Page, error)
}

// Page is a fetched HTML document and the URL it was finally served from.
type Page struct {
	URL        string
	StatusCode int
	HTML       string
}

// BrowserSession is a lazily started headless browser shared across one batch.
type BrowserSession interface {
	Open(ctx context.Context, pageURL string) (BrowserPage, error)
	Release() error
}

// BrowserPage is the currently loaded page of a BrowserSession.
type BrowserPage interface {
	URL() string
	Links() ([]string, error)
	HTML() (string, error)
	Wait(d time.Duration)
}

// SummaryOptions bounds the generated summary.
type SummaryOptions struct {
	MinLength int
	MaxLength int
	Sample    bool
}

// Summarizer generates an abstractive summary.
type Summarizer interface {
	Summarize(ctx context.Context, text string, opts SummaryOptions) (string, error)
}

// SentimentClassifier returns a raw label and confidence for a text.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (label string, score float64, err error)
}

// TopicExtractor ranks keyword phrases of a single document.
type TopicExtractor interface {
	Topics(text string, n int) []string
}

// ProgressSink receives enrichment progress notifications.
type ProgressSink interface {
	Report(fraction float64, status string)
}

// ProgressFunc adapts a plain function to ProgressSink.
type ProgressFunc func(fraction float64, status string)

// Report calls f.
func (f ProgressFunc) Report(fraction float64, status string) {
	f(fraction, status)
}

// Scheduler triggers a job periodically until stopped.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

// Notifier delivers articles a watch run has not delivered before.
type Notifier interface {
	Notify(ctx context.Context, keyword string, articles []domain.EnrichedArticle) error
}
