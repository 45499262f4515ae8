package nlp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"NewsScanner/internal/config"
	"NewsScanner/internal/ports"
)

const summaryPrompt = "You summarize Indonesian news articles. Answer in the language of the article " +
	"with one plain paragraph of %d to %d words. Do not add facts that are not in the article."

// OpenAISummarizer implements ports.Summarizer on OpenAI-compatible chat completions.
type OpenAISummarizer struct {
	client openai.Client
	model  string
}

var _ ports.Summarizer = (*OpenAISummarizer)(nil)

// NewOpenAISummarizer builds the client from configuration. hc may be nil.
func NewOpenAISummarizer(cfg config.OpenAIConfig, hc *http.Client) (*OpenAISummarizer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing; set OPENAI_API_KEY or nlp.openai.apiKey")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai model is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if hc != nil {
		opts = append(opts, option.WithHTTPClient(hc), option.WithMaxRetries(0))
	}

	return &OpenAISummarizer{client: openai.NewClient(opts...), model: cfg.Model}, nil
}

// Summarize asks the chat model for a bounded summary at temperature 0.
func (s *OpenAISummarizer) Summarize(ctx context.Context, text string, opts ports.SummaryOptions) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(fmt.Sprintf(summaryPrompt, opts.MinLength, opts.MaxLength)),
			openai.UserMessage(text),
		},
	}
	if !opts.Sample {
		params.Temperature = openai.Float(0)
	}
	if opts.MaxLength > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxLength) * 2)
	}

	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", errors.New("openai: empty summary")
	}
	return summary, nil
}
