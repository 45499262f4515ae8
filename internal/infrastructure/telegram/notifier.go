package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"NewsScanner/internal/config"
	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

// maxMessageLength is the Telegram limit for one text message, in characters.
const maxMessageLength = 4096

// Notifier posts new watch articles to a Telegram chat via the bot API.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier authenticates the bot; a nil client gets one with the configured timeout.
func NewNotifier(cfg config.TelegramConfig, client tgbotapi.HTTPClient, logger *slog.Logger) (*Notifier, error) {
	if !cfg.Enabled() {
		return nil, errors.New("telegram notifier misconfigured")
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	if logger != nil {
		logger.Info("telegram bot ready", "bot", api.Self.UserName, "chat_id", cfg.ChatID)
	}
	return &Notifier{api: api, chatID: cfg.ChatID, logger: logger}, nil
}

// Notify sends one HTML digest, split across messages when it exceeds the size limit.
func (n *Notifier) Notify(ctx context.Context, keyword string, articles []domain.EnrichedArticle) error {
	if len(articles) == 0 {
		return nil
	}

	for i, text := range Digest(keyword, articles, maxMessageLength) {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(n.chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		if _, err := n.api.Send(msg); err != nil {
			return fmt.Errorf("send message %d: %w", i+1, err)
		}
	}

	if n.logger != nil {
		n.logger.Debug("telegram digest sent", "keyword", keyword, "articles", len(articles))
	}
	return nil
}

// Digest renders articles as Telegram HTML messages of at most limit characters each.
// An entry is never split between messages.
func Digest(keyword string, articles []domain.EnrichedArticle, limit int) []string {
	header := fmt.Sprintf("<b>%s</b>: %d new article(s)\n", html.EscapeString(keyword), len(articles))

	var messages []string
	var b strings.Builder
	b.WriteString(header)
	for _, article := range articles {
		entry := digestEntry(article)
		if b.Len() > 0 && utf8.RuneCountInString(b.String())+utf8.RuneCountInString(entry) > limit {
			messages = append(messages, strings.TrimSpace(b.String()))
			b.Reset()
		}
		b.WriteString(entry)
	}
	if b.Len() > 0 {
		messages = append(messages, strings.TrimSpace(b.String()))
	}
	return messages
}

func digestEntry(article domain.EnrichedArticle) string {
	link := article.ResolvedURL
	if link == "" {
		link = article.URL
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n• <a href=\"%s\">%s</a>", html.EscapeString(link), html.EscapeString(article.Title))
	if article.Source != "" {
		fmt.Fprintf(&b, " (%s)", html.EscapeString(article.Source))
	}
	b.WriteString("\n")
	if article.Summary != "" && article.Summary != domain.Placeholder && !domain.IsSentinel(article.Summary) {
		fmt.Fprintf(&b, "%s\n", html.EscapeString(article.Summary))
	}
	if article.Topics != "" && article.Topics != domain.Placeholder {
		fmt.Fprintf(&b, "<i>%s</i> · %s\n", html.EscapeString(article.Topics), article.Sentiment)
	}
	return b.String()
}
