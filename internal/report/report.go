// Package report renders search results for the command line.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/usecase"
)

// Output formats.
const (
	FormatTable    = "table"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

const (
	maxTitle  = 60
	maxSource = 24
	dateShape = "2006-01-02 15:04"
)

// Formats lists the accepted output formats.
func Formats() []string {
	return []string{FormatTable, FormatJSON, FormatMarkdown, FormatHTML}
}

// Write renders res to w in the given format.
func Write(w io.Writer, format string, res usecase.SearchResult) error {
	switch strings.ToLower(format) {
	case FormatTable, "":
		return writeTable(w, res)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case FormatMarkdown:
		_, err := io.WriteString(w, markdown(res))
		return err
	case FormatHTML:
		md := goldmark.New(goldmark.WithExtensions(extension.GFM))
		var buf bytes.Buffer
		if err := md.Convert([]byte(markdown(res)), &buf); err != nil {
			return fmt.Errorf("render html: %w", err)
		}
		_, err := w.Write(buf.Bytes())
		return err
	default:
		return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats(), ", "))
	}
}

func writeTable(w io.Writer, res usecase.SearchResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NO\tDATE\tSOURCE\tTITLE\tSENTIMENT\tSCORE\tTOPICS\tURL")
	for i, a := range res.Articles {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%.3f\t%s\t%s\n",
			i+1,
			published(a.PublishedAt),
			clip(a.Source, maxSource),
			clip(a.Title, maxTitle),
			a.Sentiment,
			a.SentimentScore,
			a.Topics,
			a.URL,
		)
	}
	return tw.Flush()
}

func markdown(res usecase.SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", res.Keyword)
	fmt.Fprintf(&b, "%s to %s: %d fetched, %d in range, %d extracted.\n\n",
		res.From.Format(time.DateOnly), res.To.Format(time.DateOnly), res.Fetched, res.Filtered, res.Extracted)

	if len(res.Articles) == 0 {
		b.WriteString("No articles found.\n")
		return b.String()
	}

	b.WriteString("| No | Date | Source | Title | Journalist | Sentiment | Topics |\n")
	b.WriteString("|---:|------|--------|-------|------------|-----------|--------|\n")
	for i, a := range res.Articles {
		fmt.Fprintf(&b, "| %d | %s | %s | [%s](%s) | %s | %s (%.3f) | %s |\n",
			i+1, published(a.PublishedAt), cell(a.Source), cell(a.Title), a.URL,
			cell(a.Journalist), a.Sentiment, a.SentimentScore, cell(a.Topics))
	}

	b.WriteString("\n## Summaries\n\n")
	for i, a := range res.Articles {
		fmt.Fprintf(&b, "%d. **%s**: %s\n", i+1, cell(a.Title), cell(a.Summary))
	}
	return b.String()
}

func published(t *time.Time) string {
	if t == nil {
		return domain.Placeholder
	}
	return t.Format(dateShape)
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
