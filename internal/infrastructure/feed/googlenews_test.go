package feed

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"NewsScanner/internal/config"
	"NewsScanner/internal/testutil"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>"inflasi" - Google News</title>
  <item>
    <title>Inflasi Surabaya naik - Detik Jatim - detikJatim</title>
    <link>https://news.google.com/rss/articles/CBMiAAA?oc=5</link>
    <pubDate>Wed, 14 Oct 2026 20:30:00 GMT</pubDate>
    <description>&lt;a href="https://news.google.com/rss/articles/CBMiAAA"&gt;Inflasi&lt;/a&gt;</description>
  </item>
  <item>
    <title>Harga beras stabil</title>
    <link>https://news.google.com/rss/articles/CBMiBBB?oc=5</link>
    <pubDate>Tue, 13 Oct 2026 01:00:00 GMT</pubDate>
    <description>&lt;a href="x"&gt;Harga beras&lt;/a&gt;&amp;nbsp;&amp;nbsp;&lt;font color="#6f6f6f"&gt;Kompas.com&lt;/font&gt;</description>
  </item>
  <item>
    <title>Tanpa tanggal</title>
    <link>https://news.google.com/rss/articles/CBMiCCC?oc=5</link>
  </item>
</channel>
</rss>`

func feedConfig() config.FeedConfig {
	cfg := config.Default().Feed
	cfg.Endpoint = "https://news.google.com/rss/search"
	return cfg
}

func TestBuildURL(t *testing.T) {
	t.Parallel()

	u, err := BuildURL(feedConfig(), "inflasi surabaya")
	if err != nil {
		t.Fatalf("BuildURL returned error: %v", err)
	}

	parsed, err := url.Parse(u)
	if err != nil {
		t.Fatalf("parse result: %v", err)
	}
	if parsed.Host != "news.google.com" || parsed.Path != "/rss/search" {
		t.Fatalf("unexpected url: %s", u)
	}

	q := parsed.Query()
	if q.Get("q") != "inflasi surabaya" {
		t.Fatalf("unexpected keyword: %s", q.Get("q"))
	}
	if q.Get("hl") != "id" || q.Get("gl") != "ID" || q.Get("ceid") != "ID:id" {
		t.Fatalf("unexpected locale params: %s", parsed.RawQuery)
	}
}

func TestSplitTitle(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, headline, source string
	}{
		{"Inflasi naik - Kompas", "Inflasi naik", "Kompas"},
		{"Pro - kontra UU - Tempo.co", "Pro - kontra UU", "Tempo.co"},
		{"Tanpa sumber", "Tanpa sumber", ""},
		{" - Kompas", " - Kompas", ""},
	}
	for _, tc := range cases {
		headline, source := splitTitle(tc.in)
		if headline != tc.headline || source != tc.source {
			t.Fatalf("splitTitle(%q) = (%q, %q), want (%q, %q)", tc.in, headline, source, tc.headline, tc.source)
		}
	}
}

func TestSourceFromDescription(t *testing.T) {
	t.Parallel()

	if got := sourceFromDescription(`<a href="x">t</a>&nbsp;<font color="#6f6f6f">CNN Indonesia</font>`); got != "CNN Indonesia" {
		t.Fatalf("unexpected source: %s", got)
	}
	if got := sourceFromDescription(`<a href="x">t</a>`); got != unknownSource {
		t.Fatalf("expected Unknown, got %s", got)
	}
	if got := sourceFromDescription(""); got != unknownSource {
		t.Fatalf("expected Unknown, got %s", got)
	}
}

func TestFetchParsesEntries(t *testing.T) {
	t.Parallel()

	var query url.Values
	hosts := testutil.Hosts{
		"news.google.com": func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.Query()
			w.Header().Set("Content-Type", "application/rss+xml")
			_, _ = w.Write([]byte(sampleFeed))
		},
	}

	jakarta := time.FixedZone("WIB", 7*3600)
	g := NewGoogleNews(testutil.Client(hosts), feedConfig(), jakarta, nil)

	stubs, err := g.Fetch(context.Background(), "inflasi")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if query.Get("q") != "inflasi" {
		t.Fatalf("unexpected query: %v", query)
	}
	if len(stubs) != 3 {
		t.Fatalf("expected 3 stubs, got %d", len(stubs))
	}

	first := stubs[0]
	if first.Title != "Inflasi Surabaya naik - Detik Jatim" || first.Source != "detikJatim" {
		t.Fatalf("unexpected first stub: %+v", first)
	}
	if first.URL != "https://news.google.com/rss/articles/CBMiAAA?oc=5" {
		t.Fatalf("unexpected url: %s", first.URL)
	}
	if first.PublishedAt == nil {
		t.Fatal("expected publish date")
	}
	// 20:30 GMT is 03:30 the next day in WIB; the wall clock is kept without offset.
	want := time.Date(2026, time.October, 15, 3, 30, 0, 0, time.UTC)
	if !first.PublishedAt.Equal(want) {
		t.Fatalf("unexpected publish date: %v", first.PublishedAt)
	}

	if stubs[1].Source != "Kompas.com" || stubs[1].Title != "Harga beras stabil" {
		t.Fatalf("unexpected second stub: %+v", stubs[1])
	}
	if stubs[2].PublishedAt != nil || stubs[2].Source != unknownSource {
		t.Fatalf("unexpected third stub: %+v", stubs[2])
	}
}

func TestFetchCapsResults(t *testing.T) {
	t.Parallel()

	hosts := testutil.Hosts{"news.google.com": testutil.HTML(sampleFeed)}
	cfg := feedConfig()
	cfg.MaxResults = 2

	stubs, err := NewGoogleNews(testutil.Client(hosts), cfg, time.UTC, nil).Fetch(context.Background(), "x")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(stubs) != 2 {
		t.Fatalf("expected 2 stubs, got %d", len(stubs))
	}
}

func TestFetchFailure(t *testing.T) {
	t.Parallel()

	hosts := testutil.Hosts{
		"news.google.com": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		},
	}

	stubs, err := NewGoogleNews(testutil.Client(hosts), feedConfig(), time.UTC, nil).Fetch(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error on feed failure")
	}
	if len(stubs) != 0 {
		t.Fatalf("expected no stubs on failure, got %d", len(stubs))
	}

	hosts["news.google.com"] = testutil.HTML("<html>not a feed</html>")
	if _, err := NewGoogleNews(testutil.Client(hosts), feedConfig(), time.UTC, nil).Fetch(context.Background(), "x"); err == nil {
		t.Fatal("expected parse error")
	}
}
