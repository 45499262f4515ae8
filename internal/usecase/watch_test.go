package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"NewsScanner/internal/domain"
)

type scriptedSearcher struct {
	results []SearchResult
	reqs    []SearchRequest
}

func (s *scriptedSearcher) Search(_ context.Context, req SearchRequest) (SearchResult, error) {
	s.reqs = append(s.reqs, req)
	if len(s.results) == 0 {
		return SearchResult{}, errors.New("no more results")
	}
	res := s.results[0]
	s.results = s.results[1:]
	return res, nil
}

type recordingNotifier struct {
	batches [][]domain.EnrichedArticle
	err     error
}

func (n *recordingNotifier) Notify(_ context.Context, _ string, articles []domain.EnrichedArticle) error {
	if n.err != nil {
		return n.err
	}
	n.batches = append(n.batches, articles)
	return nil
}

// manualScheduler records the job so tests can fire it synchronously.
type manualScheduler struct {
	job     func(time.Time)
	stopped bool
}

func (s *manualScheduler) Start(_ context.Context, job func(time.Time)) error {
	s.job = job
	return nil
}

func (s *manualScheduler) Stop(context.Context) error {
	s.stopped = true
	return nil
}

func enrichedAt(id string) domain.EnrichedArticle {
	return domain.Skipped(domain.ScrapedArticle{
		ArticleStub: googleStub(id),
		Content:     longText,
		ResolvedURL: publisherURL(id),
	})
}

func TestWatcherDeliversOnlyUnseenArticles(t *testing.T) {
	t.Parallel()

	searcher := &scriptedSearcher{results: []SearchResult{
		{Articles: []domain.EnrichedArticle{enrichedAt("a"), enrichedAt("b")}},
		{Articles: []domain.EnrichedArticle{enrichedAt("b"), enrichedAt("c"), enrichedAt("c")}},
	}}
	notifier := &recordingNotifier{}
	sched := &manualScheduler{}
	w := NewWatcher(WatcherDeps{Searcher: searcher, Scheduler: sched, Notifier: notifier, Location: time.UTC})

	var batches []WatchBatch
	req := WatchRequest{Keyword: "inflasi", Preset: RangeLast7Days, OnBatch: func(b WatchBatch) {
		batches = append(batches, b)
	}}
	if err := w.Start(context.Background(), req); err != nil {
		t.Fatalf("start: %v", err)
	}

	trigger := time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)
	sched.job(trigger)
	sched.job(trigger.Add(time.Hour))

	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	if len(batches[0].Fresh) != 2 {
		t.Fatalf("first run must deliver both articles, got %d", len(batches[0].Fresh))
	}
	if len(batches[1].Fresh) != 1 || batches[1].Fresh[0].ResolvedURL != publisherURL("c") {
		t.Fatalf("second run must deliver only c once, got %+v", batches[1].Fresh)
	}
	if len(notifier.batches) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifier.batches))
	}

	got := searcher.reqs[0].Range
	if !got.To.Equal(trigger) || !got.From.Equal(trigger.AddDate(0, 0, -7)) {
		t.Fatalf("window must end at the trigger: %+v", got)
	}

	if err := w.Stop(context.Background()); err != nil || !sched.stopped {
		t.Fatalf("stop must reach the scheduler: %v", err)
	}
}

func TestWatcherRetriesAfterNotifyFailure(t *testing.T) {
	t.Parallel()

	searcher := &scriptedSearcher{results: []SearchResult{
		{Articles: []domain.EnrichedArticle{enrichedAt("a")}},
		{Articles: []domain.EnrichedArticle{enrichedAt("a")}},
	}}
	notifier := &recordingNotifier{err: errors.New("telegram down")}
	w := NewWatcher(WatcherDeps{Searcher: searcher, Scheduler: &manualScheduler{}, Notifier: notifier})
	req := WatchRequest{Keyword: "inflasi", Preset: RangeLast7Days}

	if _, err := w.RunOnce(context.Background(), req, time.Now()); err == nil {
		t.Fatal("expected notify error")
	}

	notifier.err = nil
	batch, err := w.RunOnce(context.Background(), req, time.Now())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(batch.Fresh) != 1 {
		t.Fatalf("undelivered article must be retried, got %d", len(batch.Fresh))
	}
}

func TestWatcherStartValidation(t *testing.T) {
	t.Parallel()

	w := NewWatcher(WatcherDeps{Searcher: &scriptedSearcher{}, Scheduler: &manualScheduler{}})

	if err := w.Start(context.Background(), WatchRequest{Preset: RangeLast7Days}); err == nil {
		t.Fatal("expected keyword error")
	}
	err := w.Start(context.Background(), WatchRequest{Keyword: "banjir", Preset: RangeCustom})
	if !errors.Is(err, domain.ErrInvalidRange) {
		t.Fatalf("custom preset must be rejected, got %v", err)
	}
	err = w.Start(context.Background(), WatchRequest{Keyword: "banjir", Preset: "1y"})
	if !errors.Is(err, domain.ErrInvalidRange) {
		t.Fatalf("unknown preset must be rejected, got %v", err)
	}

	bare := NewWatcher(WatcherDeps{})
	if err := bare.Start(context.Background(), WatchRequest{Keyword: "banjir"}); err == nil {
		t.Fatal("expected missing dependency error")
	}
}

func TestWatcherSearchErrorIsWrapped(t *testing.T) {
	t.Parallel()

	w := NewWatcher(WatcherDeps{Searcher: &scriptedSearcher{}, Scheduler: &manualScheduler{}})
	_, err := w.RunOnce(context.Background(), WatchRequest{Keyword: "banjir"}, time.Now())
	if err == nil {
		t.Fatal("expected search error")
	}
}
