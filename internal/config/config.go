package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone    = "Asia/Jakarta"
	configPathEnv      = "NEWS_SCANNER_CONFIG"
	logLevelEnv        = "LOG_LEVEL"
	logFormatEnv       = "LOG_FORMAT"
	timezoneEnv        = "NEWS_SCANNER_TIMEZONE"
	browserEnabledEnv  = "NEWS_SCANNER_BROWSER"
	inferenceURLEnv    = "INFERENCE_ENDPOINT"
	inferenceAPIKeyEnv = "INFERENCE_API_KEY"
	openAIAPIKeyEnv    = "OPENAI_API_KEY"
	openAIModelEnv     = "OPENAI_MODEL"
	openAIBaseURLEnv   = "OPENAI_BASE_URL"
	summarizerEnv      = "NLP_SUMMARIZER"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv    = "TELEGRAM_CHAT_ID"
)

// Summarizer backends.
const (
	SummarizerInference = "inference"
	SummarizerOpenAI    = "openai"
)

// Config holds high-level settings required across the application.
type Config struct {
	Timezone  string          `yaml:"timezone"`
	Logging   LoggingConfig   `yaml:"logging"`
	Feed      FeedConfig      `yaml:"feed"`
	HTTP      HTTPConfig      `yaml:"http"`
	Resolver  ResolverConfig  `yaml:"resolver"`
	Browser   BrowserConfig   `yaml:"browser"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	NLP       NLPConfig       `yaml:"nlp"`
	Watch     WatchConfig     `yaml:"watch"`
	Telegram  TelegramConfig  `yaml:"telegram"`

	location *time.Location
}

// LoggingConfig selects slog level and handler format (text or json).
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// FeedConfig describes the aggregator search feed.
type FeedConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	Language   string        `yaml:"language"`
	Country    string        `yaml:"country"`
	MaxResults int           `yaml:"maxResults"`
	Timeout    time.Duration `yaml:"timeout"`
}

// HTTPConfig tunes the raw page fetcher.
type HTTPConfig struct {
	Timeout        time.Duration `yaml:"timeout"`
	RetryCount     int           `yaml:"retryCount"`
	MaxRedirects   int           `yaml:"maxRedirects"`
	AcceptLanguage string        `yaml:"acceptLanguage"`
	UserAgents     []string      `yaml:"userAgents"`
}

// ResolverConfig lists aggregator domains and candidate thresholds.
type ResolverConfig struct {
	AggregatorDomains  []string      `yaml:"aggregatorDomains"`
	ExcludedDomains    []string      `yaml:"excludedDomains"`
	MinCandidateLength int           `yaml:"minCandidateLength"`
	RedirectWait       time.Duration `yaml:"redirectWait"`
	LinkTimeout        time.Duration `yaml:"linkTimeout"`
}

// BrowserConfig toggles headless-browser rendering.
type BrowserConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Headless    bool          `yaml:"headless"`
	UserAgent   string        `yaml:"userAgent"`
	NavTimeout  time.Duration `yaml:"navTimeout"`
	BlockImages bool          `yaml:"blockImages"`
}

// ExtractorConfig holds full-text extraction thresholds.
type ExtractorConfig struct {
	MinContentLength   int      `yaml:"minContentLength"`
	MinParagraphLength int      `yaml:"minParagraphLength"`
	MaxBylineLength    int      `yaml:"maxBylineLength"`
	ContentClasses     []string `yaml:"contentClasses"`
	RespectRobots      bool     `yaml:"respectRobots"`
}

// ScraperConfig sets the politeness delay between articles.
type ScraperConfig struct {
	Delay time.Duration `yaml:"delay"`
}

// NLPConfig groups enrichment settings.
type NLPConfig struct {
	Enabled          bool            `yaml:"enabled"`
	Summarizer       string          `yaml:"summarizer"`
	MinContentLength int             `yaml:"minContentLength"`
	Summary          SummaryConfig   `yaml:"summary"`
	Sentiment        SentimentConfig `yaml:"sentiment"`
	Topics           TopicsConfig    `yaml:"topics"`
	Inference        InferenceConfig `yaml:"inference"`
	OpenAI           OpenAIConfig    `yaml:"openai"`
}

// SummaryConfig bounds summarization input and output.
type SummaryConfig struct {
	MaxInputChars int `yaml:"maxInputChars"`
	MinLength     int `yaml:"minLength"`
	MaxLength     int `yaml:"maxLength"`
}

// SentimentConfig bounds the classifier input.
type SentimentConfig struct {
	MaxInputChars int `yaml:"maxInputChars"`
}

// TopicsConfig tunes keyword extraction.
type TopicsConfig struct {
	Count             int `yaml:"count"`
	MinWordLength     int `yaml:"minWordLength"`
	MinSentenceLength int `yaml:"minSentenceLength"`
	MaxFeatures       int `yaml:"maxFeatures"`
}

// InferenceConfig describes the model-serving HTTP API.
type InferenceConfig struct {
	Endpoint               string        `yaml:"endpoint"`
	APIKey                 string        `yaml:"apiKey"`
	Timeout                time.Duration `yaml:"timeout"`
	SummarizationModel     string        `yaml:"summarizationModel"`
	SentimentModel         string        `yaml:"sentimentModel"`
	SentimentFallbackModel string        `yaml:"sentimentFallbackModel"`
}

// OpenAIConfig defines how to contact an OpenAI-compatible API.
type OpenAIConfig struct {
	Model   string `yaml:"model"`
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseUrl"`
}

// WatchConfig sets the recurring search schedule.
type WatchConfig struct {
	Interval time.Duration `yaml:"interval"`
	Range    string        `yaml:"range"`
}

// TelegramConfig holds bot credentials for watch notifications.
type TelegramConfig struct {
	BotToken string        `yaml:"botToken"`
	ChatID   int64         `yaml:"chatId"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Enabled reports whether both the token and the chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != 0
}

// Location returns the timezone used to localize feed dates.
func (c Config) Location() *time.Location {
	if c.location != nil {
		return c.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Load reads YAML configuration from NEWS_SCANNER_CONFIG (if set) and applies environment overrides.
func Load() Config {
	return LoadFile(os.Getenv(configPathEnv))
}

// LoadFile reads YAML configuration from path (if non-empty) and applies environment overrides.
func LoadFile(path string) Config {
	cfg := Default()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			fileCfg := Default()
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = fileCfg
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()
	cfg.fillGaps()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(timezoneEnv); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv(browserEnabledEnv); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Browser.Enabled = enabled
		}
	}
	if v := os.Getenv(inferenceURLEnv); v != "" {
		c.NLP.Inference.Endpoint = v
	}
	if v := os.Getenv(inferenceAPIKeyEnv); v != "" {
		c.NLP.Inference.APIKey = v
	}
	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.NLP.OpenAI.APIKey = v
	}
	if v := os.Getenv(openAIModelEnv); v != "" {
		c.NLP.OpenAI.Model = v
	}
	if v := os.Getenv(openAIBaseURLEnv); v != "" {
		c.NLP.OpenAI.BaseURL = v
	}
	if v := os.Getenv(summarizerEnv); v != "" {
		c.NLP.Summarizer = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatEnv); v != "" {
		if id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			c.Telegram.ChatID = id
		} else {
			log.Printf("config: invalid %s %q: %v", telegramChatEnv, v, err)
		}
	}
}

func (c *Config) bindTimezone() {
	tz := c.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		tz = defaultTimezone
		if loc, err = time.LoadLocation(tz); err != nil {
			loc = time.Local
		}
	}
	c.Timezone = tz
	c.location = loc
}

// fillGaps restores defaults for list and threshold fields a file left empty or zeroed.
func (c *Config) fillGaps() {
	def := Default()

	if len(c.HTTP.UserAgents) == 0 {
		c.HTTP.UserAgents = def.HTTP.UserAgents
	}
	if len(c.Resolver.AggregatorDomains) == 0 {
		c.Resolver.AggregatorDomains = def.Resolver.AggregatorDomains
	}
	if len(c.Extractor.ContentClasses) == 0 {
		c.Extractor.ContentClasses = def.Extractor.ContentClasses
	}
	if c.Extractor.MinContentLength <= 0 {
		c.Extractor.MinContentLength = def.Extractor.MinContentLength
	}
	if c.NLP.Topics.Count <= 0 {
		c.NLP.Topics.Count = def.NLP.Topics.Count
	}
	if c.Scraper.Delay < 0 {
		c.Scraper.Delay = 0
	}
	if c.NLP.Summarizer == "" {
		c.NLP.Summarizer = SummarizerInference
	}
	if c.Watch.Interval <= 0 {
		c.Watch.Interval = def.Watch.Interval
	}
	if c.Watch.Range == "" {
		c.Watch.Range = def.Watch.Range
	}
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Timezone: defaultTimezone,
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Feed: FeedConfig{
			Endpoint:   "https://news.google.com/rss/search",
			Language:   "id",
			Country:    "ID",
			MaxResults: 100,
			Timeout:    20 * time.Second,
		},
		HTTP: HTTPConfig{
			Timeout:        15 * time.Second,
			RetryCount:     1,
			MaxRedirects:   10,
			AcceptLanguage: "id-ID,id;q=0.9,en-US;q=0.8,en;q=0.7",
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
				"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
			},
		},
		Resolver: ResolverConfig{
			AggregatorDomains:  []string{"google.com", "gstatic.com", "googleusercontent.com"},
			ExcludedDomains:    []string{"youtube.com"},
			MinCandidateLength: 30,
			RedirectWait:       2 * time.Second,
			LinkTimeout:        10 * time.Second,
		},
		Browser: BrowserConfig{
			Enabled:     false,
			Headless:    true,
			UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
			NavTimeout:  30 * time.Second,
			BlockImages: true,
		},
		Extractor: ExtractorConfig{
			MinContentLength:   100,
			MinParagraphLength: 50,
			MaxBylineLength:    100,
			ContentClasses: []string{
				"article-content", "article-body", "post-content", "entry-content",
				"detail__body-text", "read__content", "detail-text", "txt-article",
			},
		},
		Scraper: ScraperConfig{Delay: time.Second},
		NLP: NLPConfig{
			Enabled:          true,
			Summarizer:       SummarizerInference,
			MinContentLength: 50,
			Summary:          SummaryConfig{MaxInputChars: 3000, MinLength: 40, MaxLength: 150},
			Sentiment:        SentimentConfig{MaxInputChars: 500},
			Topics:           TopicsConfig{Count: 3, MinWordLength: 3, MinSentenceLength: 20, MaxFeatures: 100},
			Inference: InferenceConfig{
				Endpoint:               "https://api-inference.huggingface.co",
				Timeout:                60 * time.Second,
				SummarizationModel:     "facebook/bart-large-cnn",
				SentimentModel:         "cahya/bert2bert-indonlu-sentiment",
				SentimentFallbackModel: "distilbert-base-uncased-finetuned-sst-2-english",
			},
			OpenAI: OpenAIConfig{Model: "gpt-4o-mini"},
		},
		Watch:    WatchConfig{Interval: time.Hour, Range: "7d"},
		Telegram: TelegramConfig{Timeout: 10 * time.Second},
	}
}
