// Package openai is an upstream client for OpenAI-compatible chat
// completion endpoints, such as DashScope's compatible mode.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"component-generator/internal/domain"
	"component-generator/internal/integrations/apikey"
)

const (
	DefaultBaseURL = "https://dashscope-intl.aliyuncs.com/compatible-mode/v1/"
	DefaultModel   = "qwen-max"

	defaultTemperature = 0.7
	defaultMaxTokens   = 4000
	defaultTimeout     = 120 * time.Second
	maxLoggedBody      = 500
)

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("openai: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

var ErrNoChoices = errors.New("openai: no choices in response")

// Client wraps the openai-go SDK with retries disabled.
type Client struct {
	sdk         openai.Client
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	httpClient  *http.Client
	logger      *slog.Logger
	keys        *apikey.Resolver
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithModel(model string) Option {
	return func(c *Client) {
		if model = strings.TrimSpace(model); model != "" {
			c.model = model
		}
	}
}

func WithTemperature(t float64) Option {
	return func(c *Client) {
		c.temperature = t
	}
}

func WithMaxTokens(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client whose API key is produced by keyFn on first use.
func NewClient(keyFn apikey.Func, opts ...Option) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		model:       DefaultModel,
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
		timeout:     defaultTimeout,
		logger:      slog.Default(),
		keys:        apikey.NewResolver(keyFn),
	}
	for _, opt := range opts {
		opt(c)
	}

	sdkOpts := []option.RequestOption{
		option.WithBaseURL(withTrailingSlash(c.baseURL)),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(c.timeout),
	}
	if c.httpClient != nil {
		sdkOpts = append(sdkOpts, option.WithHTTPClient(c.httpClient))
	}
	c.sdk = openai.NewClient(sdkOpts...)
	return c
}

func withTrailingSlash(u string) string {
	return strings.TrimRight(u, "/") + "/"
}

// Send issues one chat completion and returns the first choice's content.
func (c *Client) Send(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	apiKey, err := c.keys.Key(ctx)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}

	c.logger.Info("upstream call issued", "url", c.baseURL, "model", c.model, "messages", len(messages))
	resp, err := c.sdk.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    toSDKMessages(messages),
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(int64(c.maxTokens)),
	}, option.WithAPIKey(apiKey))
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			c.logger.Info("upstream response received", "status", apiErr.StatusCode, "body", truncate(apiErr.Message, maxLoggedBody))
			return "", fmt.Errorf("openai: request failed: %w", statusError(apiErr, c.baseURL))
		}
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	content := resp.Choices[0].Message.Content
	c.logger.Info("upstream response received", "status", http.StatusOK, "body", truncate(content, maxLoggedBody))
	return content, nil
}

func toSDKMessages(messages []domain.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case domain.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case domain.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func statusError(apiErr *openai.Error, baseURL string) *HTTPStatusError {
	url := baseURL
	if apiErr.Request != nil && apiErr.Request.URL != nil {
		url = apiErr.Request.URL.String()
	}
	return &HTTPStatusError{
		StatusCode: apiErr.StatusCode,
		URL:        url,
		Body:       apiErr.Message,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
