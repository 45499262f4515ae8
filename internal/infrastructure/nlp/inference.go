package nlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"

	"NewsScanner/internal/config"
	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

const probeInput = "ok"

// waitForModel asks the serving API to hold the request while a cold model loads.
var waitForModel = map[string]any{"wait_for_model": true}

// Inference talks to a Hugging Face style model-serving API for summaries and sentiment.
type Inference struct {
	client *resty.Client
	logger *slog.Logger

	summarizer *model
	classifier *model
}

var _ ports.Summarizer = (*Inference)(nil)
var _ ports.SentimentClassifier = (*Inference)(nil)

// model binds lazily to the first candidate that answers a probe. Candidates that
// reject the probe are skipped for good; a transient failure leaves the model unbound.
type model struct {
	task       string
	candidates []string

	mu   sync.Mutex
	next int
	errs []error
	name string
	err  error
}

// statusError is a non-200 answer from the serving API.
type statusError struct {
	model string
	code  int
	body  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("model %s: unexpected status %d %s: %s", e.model, e.code, http.StatusText(e.code), e.body)
}

// rejected reports whether err means the model itself is unusable. Rate limits, server
// errors and transport failures are transient.
func rejected(err error) bool {
	var se *statusError
	if !errors.As(err, &se) {
		return false
	}
	return se.code >= 400 && se.code < 500 && se.code != http.StatusTooManyRequests
}

// NewInference creates a reusable client. A nil client gets one bounded by cfg.Timeout.
func NewInference(client *http.Client, cfg config.InferenceConfig, logger *slog.Logger) *Inference {
	var rc *resty.Client
	if client != nil {
		rc = resty.NewWithClient(client)
	} else {
		rc = resty.New().SetTimeout(cfg.Timeout)
	}
	rc.SetBaseURL(strings.TrimRight(cfg.Endpoint, "/")).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		rc.SetAuthToken(cfg.APIKey)
	}

	return &Inference{
		client:     rc,
		logger:     logger,
		summarizer: &model{task: "summarization", candidates: nonEmpty(cfg.SummarizationModel)},
		classifier: &model{task: "sentiment", candidates: nonEmpty(cfg.SentimentModel, cfg.SentimentFallbackModel)},
	}
}

// Summarize requests a deterministic abstractive summary.
func (c *Inference) Summarize(ctx context.Context, text string, opts ports.SummaryOptions) (string, error) {
	name, err := c.load(ctx, c.summarizer)
	if err != nil {
		return "", err
	}

	payload := map[string]any{
		"inputs": text,
		"parameters": map[string]any{
			"min_length": opts.MinLength,
			"max_length": opts.MaxLength,
			"do_sample":  opts.Sample,
		},
		"options": waitForModel,
	}

	var resp []struct {
		SummaryText string `json:"summary_text"`
	}
	if err := c.post(ctx, name, payload, &resp); err != nil {
		return "", err
	}
	if len(resp) == 0 || strings.TrimSpace(resp[0].SummaryText) == "" {
		return "", errors.New("empty summary")
	}

	return strings.TrimSpace(resp[0].SummaryText), nil
}

// Classify returns the highest scoring label for text.
func (c *Inference) Classify(ctx context.Context, text string) (string, float64, error) {
	name, err := c.load(ctx, c.classifier)
	if err != nil {
		return "", 0, err
	}

	var raw json.RawMessage
	payload := map[string]any{
		"inputs":  text,
		"options": waitForModel,
	}
	if err := c.post(ctx, name, payload, &raw); err != nil {
		return "", 0, err
	}

	best, err := topLabel(raw)
	if err != nil {
		return "", 0, err
	}
	return best.Label, best.Score, nil
}

// models reports the bound summarization and sentiment models, empty until loaded.
func (c *Inference) models() (summarization, sentiment string) {
	c.summarizer.mu.Lock()
	summarization = c.summarizer.name
	c.summarizer.mu.Unlock()
	c.classifier.mu.Lock()
	sentiment = c.classifier.name
	c.classifier.mu.Unlock()
	return summarization, sentiment
}

// load binds the first candidate that answers a probe and keeps it for good. Only a
// candidate that rejects the probe moves on to the next; when every candidate has been
// rejected the model is reported unavailable for the rest of the process.
func (c *Inference) load(ctx context.Context, m *model) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.name != "" || m.err != nil {
		return m.name, m.err
	}
	if len(m.candidates) == 0 {
		m.err = fmt.Errorf("%w: %s: no model configured", domain.ErrModelUnavailable, m.task)
		return "", m.err
	}

	for m.next < len(m.candidates) {
		name := m.candidates[m.next]
		err := c.post(ctx, name, map[string]any{"inputs": probeInput, "options": waitForModel}, nil)
		if err == nil {
			m.name = name
			if c.logger != nil {
				c.logger.Info("model loaded", "task", m.task, "model", name, "fallback", m.next > 0)
			}
			return name, nil
		}
		if !rejected(err) {
			return "", fmt.Errorf("%s: load %s: %w", m.task, name, err)
		}

		m.errs = append(m.errs, err)
		m.next++
		if c.logger != nil {
			c.logger.Warn("model load failed", "task", m.task, "model", name, "error", err)
		}
	}

	m.err = fmt.Errorf("%w: %s: %v", domain.ErrModelUnavailable, m.task, errors.Join(m.errs...))
	return "", m.err
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// topLabel accepts both [[{label,score}]] and [{label,score}] responses.
func topLabel(raw json.RawMessage) (labelScore, error) {
	var nested [][]labelScore
	var flat []labelScore
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 {
		flat = nested[0]
	} else if err := json.Unmarshal(raw, &flat); err != nil {
		return labelScore{}, fmt.Errorf("decode classification: %w", err)
	}
	if len(flat) == 0 {
		return labelScore{}, errors.New("empty classification")
	}

	best := flat[0]
	for _, ls := range flat[1:] {
		if ls.Score > best.Score {
			best = ls
		}
	}
	return best, nil
}

func (c *Inference) post(ctx context.Context, modelName string, payload any, v any) error {
	req := c.client.R().
		SetContext(ctx).
		SetBody(payload).
		ForceContentType("application/json")
	if v != nil {
		req.SetResult(v)
	}

	resp, err := req.Post("/models/" + modelName)
	if err != nil {
		if resp != nil && resp.StatusCode() == http.StatusOK {
			return fmt.Errorf("decode response: %w", err)
		}
		return fmt.Errorf("do request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		body := resp.String()
		if len(body) > 512 {
			body = body[:512]
		}
		return &statusError{model: modelName, code: resp.StatusCode(), body: strings.TrimSpace(body)}
	}
	return nil
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
