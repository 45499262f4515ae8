package domain

import (
	"strings"
	"time"
)

// Placeholder marks an enrichment field that was not computed.
const Placeholder = "-"

// ArticleStub is a feed entry before its page has been fetched.
type ArticleStub struct {
	Title       string     `json:"title"`
	Source      string     `json:"source"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	URL         string     `json:"url"`
}

// ScrapedArticle carries the extracted body of a stub. Content is either real text or a
// bracketed diagnostic, see IsSentinel.
type ScrapedArticle struct {
	ArticleStub
	Content     string `json:"content"`
	Journalist  string `json:"journalist"`
	ResolvedURL string `json:"resolved_url"`
}

// Extracted reports whether Content holds real article text.
func (a ScrapedArticle) Extracted() bool {
	return strings.TrimSpace(a.Content) != "" && !IsSentinel(a.Content)
}

// Sentiment is the normalized polarity of an article.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

// ParseSentiment maps a raw model label onto a Sentiment.
func ParseSentiment(raw string) Sentiment {
	upper := strings.ToUpper(raw)
	switch {
	case strings.Contains(upper, "POS"):
		return SentimentPositive
	case strings.Contains(upper, "NEG"):
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// EnrichedArticle is the final record handed to the presentation layer.
type EnrichedArticle struct {
	ScrapedArticle
	Summary        string    `json:"summary"`
	Sentiment      Sentiment `json:"sentiment"`
	SentimentScore float64   `json:"sentiment_score"`
	Topics         string    `json:"topics"`
}

// Skipped returns the enrichment used when content is missing or invalid.
func Skipped(article ScrapedArticle) EnrichedArticle {
	return EnrichedArticle{
		ScrapedArticle: article,
		Summary:        Placeholder,
		Sentiment:      SentimentNeutral,
		SentimentScore: 0,
		Topics:         Placeholder,
	}
}

// Naive drops the zone offset of t while keeping its wall clock.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
