package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"NewsScanner/internal/config"
	"NewsScanner/internal/ports"
)

const linksScript = `() => Array.from(document.querySelectorAll('a[href]')).map(a => a.href)`

// Session is a lazily started headless Chromium reused until Release.
// One page is shared across navigations, so callers must not use it concurrently.
type Session struct {
	cfg    config.BrowserConfig
	logger *slog.Logger

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
}

var _ ports.BrowserSession = (*Session)(nil)

// NewSession prepares a session; nothing is started before the first Open.
func NewSession(cfg config.BrowserConfig, logger *slog.Logger) *Session {
	return &Session{cfg: cfg, logger: logger}
}

// Open navigates the shared page to pageURL, starting the browser on first use.
func (s *Session) Open(ctx context.Context, pageURL string) (ports.BrowserPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.start(); err != nil {
		return nil, err
	}

	opts := playwright.PageGotoOptions{WaitUntil: playwright.WaitUntilStateDomcontentloaded}
	if s.cfg.NavTimeout > 0 {
		opts.Timeout = playwright.Float(float64(s.cfg.NavTimeout.Milliseconds()))
	}
	if _, err := s.page.Goto(pageURL, opts); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", pageURL, err)
	}

	return &page{page: s.page}, nil
}

func (s *Session) start() error {
	if s.page != nil {
		return nil
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(s.cfg.Headless),
		Args:     []string{"--no-sandbox", "--disable-dev-shm-usage", "--disable-gpu"},
	})
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("launch chromium: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: 1920, Height: 1080},
	}
	if s.cfg.UserAgent != "" {
		contextOpts.UserAgent = playwright.String(s.cfg.UserAgent)
	}
	bctx, err := browser.NewContext(contextOpts)
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return fmt.Errorf("new browser context: %w", err)
	}

	pg, err := bctx.NewPage()
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return fmt.Errorf("new page: %w", err)
	}

	if s.cfg.BlockImages {
		err = pg.Route("**/*", func(route playwright.Route) {
			if route.Request().ResourceType() == "image" {
				_ = route.Abort()
				return
			}
			_ = route.Continue()
		})
		if err != nil && s.logger != nil {
			s.logger.Warn("image blocking unavailable", "error", err)
		}
	}

	s.pw, s.browser, s.page = pw, browser, pg
	if s.logger != nil {
		s.logger.Info("browser started", "headless", s.cfg.Headless)
	}
	return nil
}

// Release stops the browser; a later Open starts a fresh one.
func (s *Session) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pw == nil {
		return nil
	}

	var errs []error
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	if err := s.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop playwright: %w", err))
	}
	s.pw, s.browser, s.page = nil, nil, nil

	if s.logger != nil {
		s.logger.Info("browser released")
	}
	return errors.Join(errs...)
}

// running reports whether a browser process is currently up.
func (s *Session) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pw != nil
}

type page struct {
	page playwright.Page
}

func (p *page) URL() string {
	return p.page.URL()
}

func (p *page) Links() ([]string, error) {
	raw, err := p.page.Evaluate(linksScript)
	if err != nil {
		return nil, fmt.Errorf("collect links: %w", err)
	}
	return toStrings(raw), nil
}

func (p *page) HTML() (string, error) {
	html, err := p.page.Content()
	if err != nil {
		return "", fmt.Errorf("page content: %w", err)
	}
	return html, nil
}

func (p *page) Wait(d time.Duration) {
	if d <= 0 {
		return
	}
	p.page.WaitForTimeout(float64(d.Milliseconds()))
}

func toStrings(raw interface{}) []string {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
