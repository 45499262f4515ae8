// NewsScanner searches Google News for a keyword, extracts the full text of every
// article in a date window and optionally enriches it with summary, sentiment and topics.
//
// Usage:
//
//	newsscanner search "inflasi surabaya" --range 7d
//	newsscanner search banjir --range custom --from 2026-10-01 --to 2026-10-10 --format json
//	newsscanner watch "harga beras" --every 30m --range 7d
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"NewsScanner/internal/app"
	"NewsScanner/internal/config"
	"NewsScanner/internal/logging"
	"NewsScanner/internal/ports"
	"NewsScanner/internal/report"
	"NewsScanner/internal/usecase"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "newsscanner",
		Short:         "Keyword news acquisition from Google News",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type searchOptions struct {
	configPath string
	preset     string
	from       string
	to         string
	nlp        bool
	browser    bool
	delay      time.Duration
	format     string
}

func searchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Fetch, scrape and enrich the articles matching a keyword",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "YAML config file (default $NEWS_SCANNER_CONFIG)")
	cmd.Flags().StringVar(&opts.preset, "range", usecase.RangeLast7Days, "date range: 7d, 14d, 30d, month or custom")
	cmd.Flags().StringVar(&opts.from, "from", "", "first day for --range custom (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.to, "to", "", "last day for --range custom (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&opts.nlp, "nlp", true, "run summary, sentiment and topic enrichment")
	cmd.Flags().BoolVar(&opts.browser, "browser", false, "render pages in headless Chromium when plain HTTP is not enough")
	cmd.Flags().DurationVar(&opts.delay, "delay", 0, "pause between articles (default from config)")
	cmd.Flags().StringVar(&opts.format, "format", report.FormatTable, "output format: "+strings.Join(report.Formats(), ", "))
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "newsscanner %s\n", version)
		},
	}
}

func runSearch(cmd *cobra.Command, keyword string, opts searchOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, delay := loadConfig(cmd, opts)
	flags := cmd.Flags()

	preset := opts.preset
	if !flags.Changed("range") && (opts.from != "" || opts.to != "") {
		preset = usecase.RangeCustom
	}
	window, err := resolveWindow(preset, opts.from, opts.to, cfg.Location())
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "Searching %q from %s to %s\n", keyword, window.From.Format(time.DateOnly), window.To.Format(time.DateOnly))

	res, err := application.Search(ctx, usecase.SearchRequest{
		Keyword:  keyword,
		Range:    window,
		Enrich:   cfg.NLP.Enabled,
		Delay:    delay,
		Progress: progress(stderr),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stderr, "\nFetched %d articles, %d in range, extracted %d/%d\n",
		res.Fetched, res.Filtered, res.Extracted, res.Filtered)
	return report.Write(cmd.OutOrStdout(), opts.format, res)
}

type watchOptions struct {
	searchOptions
	every time.Duration
}

func watchCmd() *cobra.Command {
	var opts watchOptions

	cmd := &cobra.Command{
		Use:   "watch <keyword>",
		Short: "Repeat a search on an interval and print only articles not seen before",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "YAML config file (default $NEWS_SCANNER_CONFIG)")
	cmd.Flags().StringVar(&opts.preset, "range", "", "rolling date range: 7d, 14d, 30d or month (default from config)")
	cmd.Flags().DurationVar(&opts.every, "every", 0, "interval between runs (default from config)")
	cmd.Flags().BoolVar(&opts.nlp, "nlp", true, "run summary, sentiment and topic enrichment")
	cmd.Flags().BoolVar(&opts.browser, "browser", false, "render pages in headless Chromium when plain HTTP is not enough")
	cmd.Flags().DurationVar(&opts.delay, "delay", 0, "pause between articles (default from config)")
	cmd.Flags().StringVar(&opts.format, "format", report.FormatTable, "output format: "+strings.Join(report.Formats(), ", "))
	return cmd
}

func runWatch(cmd *cobra.Command, keyword string, opts watchOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, delay := loadConfig(cmd, opts.searchOptions)
	preset := cfg.Watch.Range
	if opts.preset != "" {
		preset = opts.preset
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}
	watcher, err := application.NewWatcher(opts.every)
	if err != nil {
		return fmt.Errorf("build watcher: %w", err)
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	err = watcher.Start(ctx, usecase.WatchRequest{
		Keyword: keyword,
		Preset:  preset,
		Enrich:  cfg.NLP.Enabled,
		Delay:   delay,
		OnBatch: func(batch usecase.WatchBatch) {
			fmt.Fprintf(stderr, "[%s] %d in range, %d new\n",
				batch.Trigger.Format(time.DateTime), batch.Result.Filtered, len(batch.Fresh))
			if len(batch.Fresh) == 0 {
				return
			}
			res := batch.Result
			res.Articles = batch.Fresh
			if err := report.Write(stdout, opts.format, res); err != nil {
				logger.Warn("write report failed", "error", err)
			}
		},
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stderr, "Watching %q every %s, press Ctrl+C to stop\n", keyword, intervalOrDefault(opts.every, cfg))

	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return watcher.Stop(stopCtx)
}

func intervalOrDefault(every time.Duration, cfg config.Config) time.Duration {
	if every > 0 {
		return every
	}
	return cfg.Watch.Interval
}

// loadConfig reads configuration and applies only the flags the user set explicitly.
func loadConfig(cmd *cobra.Command, opts searchOptions) (config.Config, time.Duration) {
	cfg := config.Load()
	if opts.configPath != "" {
		cfg = config.LoadFile(opts.configPath)
	}

	flags := cmd.Flags()
	if flags.Changed("browser") {
		cfg.Browser.Enabled = opts.browser
	}
	if flags.Changed("nlp") {
		cfg.NLP.Enabled = opts.nlp
	}
	delay := cfg.Scraper.Delay
	if flags.Changed("delay") {
		delay = opts.delay
	}
	return cfg, delay
}

func resolveWindow(preset, from, to string, loc *time.Location) (usecase.DateRange, error) {
	var fromDay, toDay time.Time
	var err error
	if from != "" {
		if fromDay, err = time.ParseInLocation(time.DateOnly, from, loc); err != nil {
			return usecase.DateRange{}, fmt.Errorf("parse --from: %w", err)
		}
	}
	if to != "" {
		if toDay, err = time.ParseInLocation(time.DateOnly, to, loc); err != nil {
			return usecase.DateRange{}, fmt.Errorf("parse --to: %w", err)
		}
	}
	return usecase.ResolveRange(preset, time.Now().In(loc), fromDay, toDay)
}

func progress(w io.Writer) ports.ProgressSink {
	return ports.ProgressFunc(func(fraction float64, status string) {
		fmt.Fprintf(w, "\r%s (%3.0f%%)", status, fraction*100)
	})
}
