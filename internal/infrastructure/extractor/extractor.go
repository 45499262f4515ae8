package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"NewsScanner/internal/config"
	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
	"NewsScanner/internal/strategy"
)

const noiseSelector = "script, style, nav, header, footer, aside, noscript, form, iframe, svg"

var errTooShort = errors.New("text too short")

// RobotsPolicy decides whether a page may be fetched.
type RobotsPolicy interface {
	Allowed(ctx context.Context, pageURL string) bool
}

// ReadableFunc extracts the main text and byline of a document.
type ReadableFunc func(html string, pageURL *url.URL) (text, byline string, err error)

// Extractor pulls article bodies with readability first and DOM heuristics second.
type Extractor struct {
	fetcher  ports.PageFetcher
	browser  ports.BrowserSession
	robots   RobotsPolicy
	cfg      config.ExtractorConfig
	readable ReadableFunc
	fallback *strategy.Chain[*goquery.Document, string]
	logger   *slog.Logger
}

var _ ports.Extractor = (*Extractor)(nil)

// New wires the page sources. browser may be nil.
func New(fetcher ports.PageFetcher, browser ports.BrowserSession, cfg config.ExtractorConfig, logger *slog.Logger) *Extractor {
	e := &Extractor{
		fetcher:  fetcher,
		browser:  browser,
		cfg:      cfg,
		readable: Readability,
		logger:   logger,
	}
	e.fallback = strategy.New(e.longEnough, logger,
		strategy.Step[*goquery.Document, string]{Name: "article", Run: e.fromArticle},
		strategy.Step[*goquery.Document, string]{Name: "content-class", Run: e.fromContentClass},
		strategy.Step[*goquery.Document, string]{Name: "paragraphs", Run: e.fromParagraphs},
	)
	return e
}

// UseRobots enables the robots.txt check before every fetch.
func (e *Extractor) UseRobots(policy RobotsPolicy) *Extractor {
	e.robots = policy
	return e
}

// UseReadable replaces the primary extraction algorithm.
func (e *Extractor) UseReadable(fn ReadableFunc) *Extractor {
	if fn != nil {
		e.readable = fn
	}
	return e
}

// Extract returns the body and journalist of pageURL, or a typed failure.
func (e *Extractor) Extract(ctx context.Context, pageURL string) domain.Extraction {
	if e.robots != nil && !e.robots.Allowed(ctx, pageURL) {
		e.debug("disallowed by robots.txt", "url", pageURL)
		return domain.Failed(domain.FailureDisallowed, "")
	}

	html, finalURL, err := e.load(ctx, pageURL)
	if err != nil {
		e.debug("page unavailable", "url", pageURL, "error", err)
		return domain.Failed(domain.FailureFetch, err.Error())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.Failed(domain.FailureExtraction, err.Error())
	}
	journalist := e.metaAuthor(doc)

	var byline string
	if u, perr := url.Parse(finalURL); perr == nil {
		text, by, rerr := e.readable(html, u)
		byline = e.trimByline(by)
		if rerr != nil {
			e.debug("readability failed", "url", pageURL, "error", rerr)
		} else if text = normalizeSpace(text); runeLen(text) > e.cfg.MinContentLength {
			return domain.Extraction{Text: text, Journalist: firstNonEmpty(journalist, byline)}
		}
	}

	doc.Find(noiseSelector).Remove()
	text, name, ok := e.fallback.Run(ctx, doc)
	if !ok {
		return domain.Failed(domain.FailureExtraction, "")
	}

	e.debug("fallback extraction", "url", pageURL, "strategy", name)
	return domain.Extraction{Text: text, Journalist: firstNonEmpty(journalist, byline)}
}

// load fetches over HTTP and renders in the browser when plain HTTP fails.
func (e *Extractor) load(ctx context.Context, pageURL string) (string, string, error) {
	page, err := e.fetcher.Fetch(ctx, pageURL)
	if err == nil && strings.TrimSpace(page.HTML) != "" {
		return page.HTML, page.URL, nil
	}
	if err == nil {
		err = errors.New("empty response")
	}
	if e.browser == nil {
		return "", "", err
	}

	bp, berr := e.browser.Open(ctx, pageURL)
	if berr != nil {
		return "", "", fmt.Errorf("%v; browser: %w", err, berr)
	}
	html, berr := bp.HTML()
	if berr != nil {
		return "", "", fmt.Errorf("%v; browser: %w", err, berr)
	}
	return html, bp.URL(), nil
}

func (e *Extractor) fromArticle(_ context.Context, doc *goquery.Document) (string, error) {
	article := doc.Find("article").First()
	if article.Length() == 0 {
		return "", errors.New("no article element")
	}
	return spacedText(article), nil
}

func (e *Extractor) fromContentClass(_ context.Context, doc *goquery.Document) (string, error) {
	for _, class := range e.cfg.ContentClasses {
		elem := doc.Find("." + class).First()
		if elem.Length() == 0 {
			continue
		}
		if text := spacedText(elem); e.longEnough(text) {
			return text, nil
		}
	}
	return "", errTooShort
}

func (e *Extractor) fromParagraphs(_ context.Context, doc *goquery.Document) (string, error) {
	var texts []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := spacedText(p); runeLen(text) > e.cfg.MinParagraphLength {
			texts = append(texts, text)
		}
	})
	if len(texts) == 0 {
		return "", errTooShort
	}
	return strings.Join(texts, " "), nil
}

func (e *Extractor) longEnough(text string) bool {
	return runeLen(text) >= e.cfg.MinContentLength
}

func (e *Extractor) metaAuthor(doc *goquery.Document) string {
	var author string
	doc.Find("meta[name]").EachWithBreak(func(_ int, m *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(m.AttrOr("name", "")), "author") {
			return true
		}
		author = e.trimByline(m.AttrOr("content", ""))
		return author == ""
	})
	return author
}

func (e *Extractor) trimByline(s string) string {
	s = normalizeSpace(s)
	if e.cfg.MaxBylineLength > 0 && runeLen(s) > e.cfg.MaxBylineLength {
		return ""
	}
	return s
}

func (e *Extractor) debug(msg string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

// Readability runs go-readability over html.
func Readability(html string, pageURL *url.URL) (string, string, error) {
	article, err := readability.FromReader(strings.NewReader(html), pageURL)
	if err != nil {
		return "", "", err
	}
	return article.TextContent, article.Byline, nil
}

// spacedText joins the text nodes under sel with single spaces.
func spacedText(sel *goquery.Selection) string {
	var parts []string
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			if goquery.NodeName(c) == "#text" {
				parts = append(parts, c.Text())
				return
			}
			walk(c)
		})
	}
	walk(sel)
	return normalizeSpace(strings.Join(parts, " "))
}

// normalizeSpace collapses every whitespace run to a single space.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
