package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/usecase"
)

func sampleResult() usecase.SearchResult {
	published := time.Date(2026, time.October, 15, 8, 30, 0, 0, time.UTC)
	article := domain.EnrichedArticle{
		ScrapedArticle: domain.ScrapedArticle{
			ArticleStub: domain.ArticleStub{
				Title:       "Inflasi Surabaya naik | laporan BPS",
				Source:      "Kompas",
				PublishedAt: &published,
				URL:         "https://www.kompas.com/read/1",
			},
			Content:     "Isi berita",
			Journalist:  "Budi",
			ResolvedURL: "https://www.kompas.com/read/1",
		},
		Summary:        "Inflasi naik.",
		Sentiment:      domain.SentimentNegative,
		SentimentScore: 0.912,
		Topics:         "Inflasi, Surabaya",
	}

	return usecase.SearchResult{
		RunID:     "run-1",
		Keyword:   "inflasi",
		From:      published.AddDate(0, 0, -7),
		To:        published,
		Fetched:   3,
		Filtered:  1,
		Extracted: 1,
		Articles:  []domain.EnrichedArticle{article, domain.Skipped(domain.ScrapedArticle{Content: "[unresolved]"})},
	}
}

func TestWriteTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, FormatTable, sampleResult()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"SENTIMENT", "2026-10-15 08:30", "Negative", "0.912", "Inflasi, Surabaya"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n"); lines != 3 {
		t.Fatalf("expected header and two rows, got %d lines", lines)
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, sampleResult()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var decoded struct {
		RunID    string `json:"run_id"`
		Articles []struct {
			Title     string `json:"title"`
			Sentiment string `json:"sentiment"`
		} `json:"articles"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.RunID != "run-1" || len(decoded.Articles) != 2 || decoded.Articles[0].Sentiment != "Negative" {
		t.Fatalf("unexpected json: %+v", decoded)
	}
}

func TestWriteHTML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, FormatHTML, sampleResult()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "<table>") || !strings.Contains(out, `<a href="https://www.kompas.com/read/1">`) {
		t.Fatalf("unexpected html:\n%s", out)
	}
	if !strings.Contains(out, "<h1>inflasi</h1>") {
		t.Fatalf("missing heading:\n%s", out)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	t.Parallel()

	if err := Write(&bytes.Buffer{}, "csv", sampleResult()); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestClip(t *testing.T) {
	t.Parallel()

	if got := clip("Surabaya", 5); got != "Sura…" {
		t.Fatalf("unexpected clip: %s", got)
	}
	if got := clip("Kompas", 10); got != "Kompas" {
		t.Fatalf("unexpected clip: %s", got)
	}
}
