package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

// Searcher runs one keyword search; Pipeline and app.Application both satisfy it.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) (SearchResult, error)
}

// WatcherDeps wires the collaborators of a Watcher. Notifier is optional.
type WatcherDeps struct {
	Searcher  Searcher
	Scheduler ports.Scheduler
	Notifier  ports.Notifier
	Location  *time.Location
	Logger    *slog.Logger
}

// WatchRequest describes a recurring search over a rolling preset window.
type WatchRequest struct {
	Keyword string
	Preset  string
	Enrich  bool
	Delay   time.Duration
	OnBatch func(WatchBatch)
}

// WatchBatch is the outcome of one scheduled run.
type WatchBatch struct {
	Trigger time.Time
	Result  SearchResult
	Fresh   []domain.EnrichedArticle
}

// Watcher repeats a search on a schedule and hands on only articles it has not delivered yet.
type Watcher struct {
	searcher  Searcher
	scheduler ports.Scheduler
	notifier  ports.Notifier
	location  *time.Location
	logger    *slog.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewWatcher builds a watcher from its dependencies.
func NewWatcher(deps WatcherDeps) *Watcher {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Watcher{
		searcher:  deps.Searcher,
		scheduler: deps.Scheduler,
		notifier:  deps.Notifier,
		location:  loc,
		logger:    deps.Logger,
		seen:      make(map[string]struct{}),
	}
}

// Start registers the recurring search with the scheduler.
func (w *Watcher) Start(ctx context.Context, req WatchRequest) error {
	if w.searcher == nil || w.scheduler == nil {
		return errors.New("watcher requires a searcher and a scheduler")
	}
	if req.Keyword == "" {
		return errors.New("keyword is required")
	}
	if req.Preset == RangeCustom {
		return fmt.Errorf("%w: watch needs a rolling preset, not %q", domain.ErrInvalidRange, req.Preset)
	}
	if _, err := ResolveRange(req.Preset, time.Now().In(w.location), time.Time{}, time.Time{}); err != nil {
		return err
	}

	job := func(trigger time.Time) {
		if _, err := w.RunOnce(ctx, req, trigger); err != nil {
			w.warn("watch run failed", "keyword", req.Keyword, "error", err)
		}
	}
	return w.scheduler.Start(ctx, job)
}

// Stop tears down the underlying scheduler.
func (w *Watcher) Stop(ctx context.Context) error {
	if w.scheduler == nil {
		return nil
	}
	return w.scheduler.Stop(ctx)
}

// RunOnce searches the window ending at trigger and delivers the unseen articles.
// Articles are marked as seen only after the notifier accepted them.
func (w *Watcher) RunOnce(ctx context.Context, req WatchRequest, trigger time.Time) (WatchBatch, error) {
	window, err := ResolveRange(req.Preset, trigger.In(w.location), time.Time{}, time.Time{})
	if err != nil {
		return WatchBatch{}, err
	}

	res, err := w.searcher.Search(ctx, SearchRequest{
		Keyword: req.Keyword,
		Range:   window,
		Enrich:  req.Enrich,
		Delay:   req.Delay,
	})
	if err != nil {
		return WatchBatch{}, fmt.Errorf("search %q: %w", req.Keyword, err)
	}

	batch := WatchBatch{Trigger: trigger, Result: res, Fresh: w.unseen(res.Articles)}
	w.info("watch run finished", "keyword", req.Keyword, "run_id", res.RunID,
		"filtered", res.Filtered, "fresh", len(batch.Fresh))

	if len(batch.Fresh) > 0 && w.notifier != nil {
		if err := w.notifier.Notify(ctx, req.Keyword, batch.Fresh); err != nil {
			return batch, fmt.Errorf("notify: %w", err)
		}
	}
	w.markSeen(batch.Fresh)

	if req.OnBatch != nil {
		req.OnBatch(batch)
	}
	return batch, nil
}

func (w *Watcher) unseen(articles []domain.EnrichedArticle) []domain.EnrichedArticle {
	w.mu.Lock()
	defer w.mu.Unlock()

	fresh := make([]domain.EnrichedArticle, 0, len(articles))
	batch := make(map[string]struct{}, len(articles))
	for _, article := range articles {
		key := articleKey(article)
		if _, ok := w.seen[key]; ok {
			continue
		}
		if _, ok := batch[key]; ok {
			continue
		}
		batch[key] = struct{}{}
		fresh = append(fresh, article)
	}
	return fresh
}

func (w *Watcher) markSeen(articles []domain.EnrichedArticle) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, article := range articles {
		w.seen[articleKey(article)] = struct{}{}
	}
}

// articleKey prefers the publisher URL so that two aggregator links to one story collapse.
func articleKey(article domain.EnrichedArticle) string {
	if article.ResolvedURL != "" {
		return article.ResolvedURL
	}
	return article.URL
}

func (w *Watcher) info(msg string, args ...any) {
	if w.logger == nil {
		return
	}
	w.logger.Info(msg, args...)
}

func (w *Watcher) warn(msg string, args ...any) {
	if w.logger == nil {
		return
	}
	w.logger.Warn(msg, args...)
}
