package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

type fakeFeed struct {
	stubs []domain.ArticleStub
	err   error
}

func (f fakeFeed) Fetch(context.Context, string) ([]domain.ArticleStub, error) {
	return f.stubs, f.err
}

// fakeResolver maps aggregator URLs to publisher URLs; unmapped URLs stay unresolved.
type fakeResolver struct {
	mapping map[string]string
}

func (r fakeResolver) Resolve(_ context.Context, u string) string {
	if out, ok := r.mapping[u]; ok {
		return out
	}
	return u
}

func (r fakeResolver) IsAggregator(u string) bool {
	return strings.Contains(u, "news.google.com")
}

type fakeExtractor struct {
	calls   []string
	results map[string]domain.Extraction
	panicOn string
}

func (e *fakeExtractor) Extract(_ context.Context, u string) domain.Extraction {
	e.calls = append(e.calls, u)
	if u == e.panicOn {
		panic("extractor crashed")
	}
	if res, ok := e.results[u]; ok {
		return res
	}
	return domain.Extraction{Text: longText, Journalist: "Redaksi"}
}

type fakeSession struct {
	releases int
}

func (s *fakeSession) Open(context.Context, string) (ports.BrowserPage, error) {
	return nil, errors.New("not used")
}

func (s *fakeSession) Release() error {
	s.releases++
	return nil
}

type fakeSummarizer struct {
	calls  int
	inputs []string
	err    error
}

func (s *fakeSummarizer) Summarize(_ context.Context, text string, _ ports.SummaryOptions) (string, error) {
	s.calls++
	s.inputs = append(s.inputs, text)
	if s.err != nil {
		return "", s.err
	}
	return "Ringkasan berita.", nil
}

type fakeClassifier struct {
	calls  int
	inputs []string
	label  string
	score  float64
	err    error
}

func (c *fakeClassifier) Classify(_ context.Context, text string) (string, float64, error) {
	c.calls++
	c.inputs = append(c.inputs, text)
	return c.label, c.score, c.err
}

type fakeTopics struct {
	calls  int
	topics []string
}

func (t *fakeTopics) Topics(string, int) []string {
	t.calls++
	return t.topics
}

type recordedSleep struct {
	calls []time.Duration
}

func (r *recordedSleep) sleep(_ context.Context, d time.Duration) error {
	r.calls = append(r.calls, d)
	return nil
}

var longText = strings.Repeat("Inflasi di Surabaya naik pada bulan Oktober menurut Badan Pusat Statistik. ", 3)

func googleStub(id string) domain.ArticleStub {
	published := time.Date(2026, time.October, 15, 8, 0, 0, 0, time.UTC)
	return domain.ArticleStub{
		Title:       "Berita " + id,
		Source:      "Kompas",
		PublishedAt: &published,
		URL:         "https://news.google.com/rss/articles/" + id,
	}
}

func publisherURL(id string) string {
	return "https://www.kompas.com/read/" + id
}
