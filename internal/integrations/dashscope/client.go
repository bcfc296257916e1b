// Package dashscope is an upstream client for the DashScope native
// text-generation endpoint.
package dashscope

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"component-generator/internal/domain"
	"component-generator/internal/integrations/apikey"
)

const (
	DefaultBaseURL = "https://dashscope-intl.aliyuncs.com/api/v1"
	DefaultModel   = "qwen-max"

	defaultTemperature = 0.7
	defaultMaxTokens   = 4000
	defaultTimeout     = 120 * time.Second
	maxLoggedBody      = 500
)

type generationRequest struct {
	Model      string               `json:"model"`
	Input      generationInput      `json:"input"`
	Parameters generationParameters `json:"parameters"`
}

type generationInput struct {
	Messages []domain.ChatMessage `json:"messages"`
}

type generationParameters struct {
	ResultFormat string  `json:"result_format"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens"`
}

// generationResponse accepts both envelope shapes the endpoint returns:
// output.message and output.choices[].message.
type generationResponse struct {
	Output *struct {
		Message *domain.ChatMessage `json:"message"`
		Choices []struct {
			Message domain.ChatMessage `json:"message"`
		} `json:"choices"`
		Text string `json:"text"`
	} `json:"output"`
	RequestID string `json:"request_id"`
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("dashscope: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

var ErrEmptyOutput = errors.New("dashscope: no message in response output")

// Client sends one generation request per call. It never retries.
type Client struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
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
		httpClient:  &http.Client{Timeout: defaultTimeout},
		logger:      slog.Default(),
		keys:        apikey.NewResolver(keyFn),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func generationURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return base + "/services/aigc/text-generation/generation"
}

// Send posts messages to the generation endpoint and returns the assistant's
// raw reply text.
func (c *Client) Send(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	apiKey, err := c.keys.Key(ctx)
	if err != nil {
		return "", fmt.Errorf("dashscope: %w", err)
	}

	body, err := json.Marshal(generationRequest{
		Model: c.model,
		Input: generationInput{Messages: messages},
		Parameters: generationParameters{
			ResultFormat: "message",
			Temperature:  c.temperature,
			MaxTokens:    c.maxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("dashscope: marshal request: %w", err)
	}

	url := generationURL(c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("dashscope: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	c.logger.Info("upstream call issued", "url", url, "model", c.model, "messages", len(messages))
	raw, err := c.doJSONRequest(req, url)
	if err != nil {
		return "", fmt.Errorf("dashscope: request failed: %w", err)
	}

	var payload generationResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("dashscope: decode response: %w", err)
	}
	return payload.content()
}

func (r generationResponse) content() (string, error) {
	if r.Output == nil {
		return "", ErrEmptyOutput
	}
	switch {
	case r.Output.Message != nil:
		return r.Output.Message.Content, nil
	case len(r.Output.Choices) > 0:
		return r.Output.Choices[0].Message.Content, nil
	case r.Output.Text != "":
		return r.Output.Text, nil
	}
	return "", ErrEmptyOutput
}

func (c *Client) doJSONRequest(req *http.Request, url string) ([]byte, error) {
	httpClient := c.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	res, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	c.logger.Info("upstream response received", "status", res.StatusCode, "body", truncate(string(buf), maxLoggedBody))

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       truncate(string(buf), 4096),
		}
	}
	return buf, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
