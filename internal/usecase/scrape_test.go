package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"NewsScanner/internal/domain"
)

func TestScrapeAllResolvesAndExtracts(t *testing.T) {
	t.Parallel()

	resolver := fakeResolver{mapping: map[string]string{
		googleStub("a").URL: publisherURL("a"),
		googleStub("c").URL: publisherURL("c"),
	}}
	extractor := &fakeExtractor{results: map[string]domain.Extraction{
		publisherURL("c"): domain.Failed(domain.FailureExtraction, ""),
	}}
	session := &fakeSession{}
	sleeper := &recordedSleep{}

	s := NewScraper(ScraperDeps{Resolver: resolver, Extractor: extractor, Browser: session, Sleep: sleeper.sleep})
	stubs := []domain.ArticleStub{googleStub("a"), googleStub("b"), googleStub("c")}

	got, err := s.ScrapeAll(context.Background(), stubs, time.Second)
	if err != nil {
		t.Fatalf("ScrapeAll error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected one article per stub, got %d", len(got))
	}

	if got[0].URL != publisherURL("a") || got[0].ResolvedURL != publisherURL("a") || !got[0].Extracted() {
		t.Fatalf("unexpected first article: %+v", got[0])
	}
	if got[0].Journalist != "Redaksi" || got[0].Title != "Berita a" {
		t.Fatalf("stub fields must carry over: %+v", got[0])
	}
	if got[1].Content != "[unresolved]" || got[1].URL != googleStub("b").URL {
		t.Fatalf("unexpected unresolved article: %+v", got[1])
	}
	if got[2].Content != "[extraction failed]" {
		t.Fatalf("unexpected failed article: %+v", got[2])
	}

	if len(extractor.calls) != 2 {
		t.Fatalf("extractor must skip unresolved urls, calls: %v", extractor.calls)
	}
	if len(sleeper.calls) != 2 {
		t.Fatalf("expected delay between articles only, got %d sleeps", len(sleeper.calls))
	}
	if session.releases != 1 {
		t.Fatalf("expected one release, got %d", session.releases)
	}
	if stubs[0].URL != googleStub("a").URL {
		t.Fatal("input stubs must not be modified")
	}
}

func TestScrapeAllReleasesOnceOnFailure(t *testing.T) {
	t.Parallel()

	resolver := fakeResolver{mapping: map[string]string{
		googleStub("1").URL: publisherURL("1"),
		googleStub("2").URL: publisherURL("2"),
		googleStub("3").URL: publisherURL("3"),
	}}
	extractor := &fakeExtractor{panicOn: publisherURL("2")}
	session := &fakeSession{}
	sleeper := &recordedSleep{}

	s := NewScraper(ScraperDeps{Resolver: resolver, Extractor: extractor, Browser: session, Sleep: sleeper.sleep})

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected the injected failure to propagate")
			}
		}()
		_, _ = s.ScrapeAll(context.Background(), []domain.ArticleStub{googleStub("1"), googleStub("2"), googleStub("3")}, time.Second)
	}()

	if session.releases != 1 {
		t.Fatalf("expected exactly one release, got %d", session.releases)
	}
	if len(extractor.calls) != 2 {
		t.Fatalf("batch must stop at the failing article, calls: %v", extractor.calls)
	}

	if _, err := s.ScrapeAll(context.Background(), []domain.ArticleStub{googleStub("1")}, 0); err != nil {
		t.Fatalf("second batch error: %v", err)
	}
	if session.releases != 2 {
		t.Fatalf("each batch releases once, got %d", session.releases)
	}
}

func TestScrapeAllStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	session := &fakeSession{}
	sleep := func(context.Context, time.Duration) error {
		cancel()
		return nil
	}

	s := NewScraper(ScraperDeps{Resolver: fakeResolver{}, Extractor: &fakeExtractor{}, Browser: session, Sleep: sleep})
	got, err := s.ScrapeAll(ctx, []domain.ArticleStub{googleStub("1"), googleStub("2")}, time.Second)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected the finished article back, got %d", len(got))
	}
	if session.releases != 1 {
		t.Fatalf("expected one release, got %d", session.releases)
	}
}

func TestSleepContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if err := sleepContext(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
