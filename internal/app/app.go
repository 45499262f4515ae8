package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsScanner/internal/config"
	"NewsScanner/internal/infrastructure/browser"
	"NewsScanner/internal/infrastructure/extractor"
	"NewsScanner/internal/infrastructure/feed"
	"NewsScanner/internal/infrastructure/httpfetch"
	"NewsScanner/internal/infrastructure/nlp"
	"NewsScanner/internal/infrastructure/resolver"
	"NewsScanner/internal/infrastructure/scheduler"
	"NewsScanner/internal/infrastructure/telegram"
	"NewsScanner/internal/logging"
	"NewsScanner/internal/ports"
	"NewsScanner/internal/usecase"
)

const robotsAgent = "NewsScanner"

// Application wires configs to use cases.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance from configuration.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	fetcher := httpfetch.New(cfg.HTTP)

	var session ports.BrowserSession
	if cfg.Browser.Enabled {
		session = browser.NewSession(cfg.Browser, baseLogger.With("component", "browser"))
	}

	source := feed.NewGoogleNews(nil, cfg.Feed, cfg.Location(), baseLogger.With("component", "feed"))
	urlResolver := resolver.New(fetcher, session, cfg.Resolver, baseLogger.With("component", "resolver"))
	baseLogger.Debug("resolver ready", "strategies", urlResolver.Strategies())

	textExtractor := extractor.New(fetcher, session, cfg.Extractor, baseLogger.With("component", "extractor"))
	if cfg.Extractor.RespectRobots {
		textExtractor.UseRobots(httpfetch.NewRobotsGuard(fetcher, robotsAgent, baseLogger.With("component", "robots")))
	}

	scraper := usecase.NewScraper(usecase.ScraperDeps{
		Resolver:  urlResolver,
		Extractor: textExtractor,
		Browser:   session,
		Logger:    baseLogger.With("component", "scraper"),
	})

	var enricher *usecase.Enricher
	if cfg.NLP.Enabled {
		var err error
		enricher, err = newEnricher(cfg.NLP, baseLogger.With("component", "nlp"))
		if err != nil {
			return nil, err
		}
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Feed:     source,
		Scraper:  scraper,
		Enricher: enricher,
		Logger:   baseLogger.With("component", "pipeline"),
	})
	return &Application{cfg: cfg, logger: baseLogger, pipeline: pipeline}, nil
}

func newEnricher(cfg config.NLPConfig, logger *slog.Logger) (*usecase.Enricher, error) {
	inference := nlp.NewInference(nil, cfg.Inference, logger)

	var summarizer ports.Summarizer
	switch cfg.Summarizer {
	case config.SummarizerInference:
		summarizer = inference
	case config.SummarizerOpenAI:
		openAI, err := nlp.NewOpenAISummarizer(cfg.OpenAI, nil)
		if err != nil {
			return nil, fmt.Errorf("openai summarizer: %w", err)
		}
		summarizer = openAI
	default:
		return nil, fmt.Errorf("summarizer %q not supported", cfg.Summarizer)
	}

	return usecase.NewEnricher(usecase.EnricherDeps{
		Summarizer: summarizer,
		Sentiment:  inference,
		Topics:     nlp.NewTFIDF(cfg.Topics),
		Config:     cfg,
		Logger:     logger,
	}), nil
}

// Config returns the configuration the application was built with.
func (a *Application) Config() config.Config {
	return a.cfg
}

// Search runs one keyword search; NLP is skipped when it is disabled in configuration.
func (a *Application) Search(ctx context.Context, req usecase.SearchRequest) (usecase.SearchResult, error) {
	req.Enrich = req.Enrich && a.cfg.NLP.Enabled
	return a.pipeline.Search(ctx, req)
}

// NewWatcher builds a recurring search on the configured interval. Telegram delivery is
// attached when bot credentials are configured.
func (a *Application) NewWatcher(interval time.Duration) (*usecase.Watcher, error) {
	if interval <= 0 {
		interval = a.cfg.Watch.Interval
	}

	var notifier ports.Notifier
	if a.cfg.Telegram.Enabled() {
		tg, err := telegram.NewNotifier(a.cfg.Telegram, nil, a.logger.With("component", "telegram"))
		if err != nil {
			return nil, err
		}
		notifier = tg
	}

	return usecase.NewWatcher(usecase.WatcherDeps{
		Searcher:  a,
		Scheduler: scheduler.NewIntervalScheduler(interval),
		Notifier:  notifier,
		Location:  a.cfg.Location(),
		Logger:    a.logger.With("component", "watch"),
	}), nil
}
