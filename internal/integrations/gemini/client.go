// Package gemini is an upstream client for the Gemini API built on the
// official genai SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	genai "google.golang.org/genai"

	"component-generator/internal/domain"
	"component-generator/internal/integrations/apikey"
)

const (
	DefaultModel = "gemini-2.5-flash"

	defaultTemperature = 0.7
	defaultMaxTokens   = 4000
	defaultTimeout     = 120 * time.Second
	maxLoggedBody      = 500
)

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("gemini: unexpected status %d (%s): %s", e.StatusCode, e.Status, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

var ErrNoCandidates = errors.New("gemini: no candidates in response")

// Client builds the SDK client on first use, once the API key is known.
type Client struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
	logger      *slog.Logger
	keys        *apikey.Resolver

	mu  sync.Mutex
	cli *genai.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
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

func NewClient(keyFn apikey.Func, opts ...Option) *Client {
	c := &Client{
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

func (c *Client) sdk(ctx context.Context) (*genai.Client, error) {
	apiKey, err := c.keys.Key(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cli != nil {
		return c.cli, nil
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	c.cli = cli
	return cli, nil
}

// Send maps system messages onto the system instruction and the rest onto
// the conversation, then returns the first candidate's text.
func (c *Client) Send(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	cli, err := c.sdk(ctx)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}

	system, contents := toContents(messages)
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(c.temperature)),
		MaxOutputTokens: int32(c.maxTokens),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	c.logger.Info("upstream call issued", "model", c.model, "messages", len(messages))
	resp, err := cli.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		if statusErr := apiStatusError(err); statusErr != nil {
			c.logger.Info("upstream response received", "status", statusErr.StatusCode, "body", truncate(statusErr.Body, maxLoggedBody))
			return "", fmt.Errorf("gemini: request failed: %w", statusErr)
		}
		return "", fmt.Errorf("gemini: request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoCandidates
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	text := b.String()
	c.logger.Info("upstream response received", "status", http.StatusOK, "body", truncate(text, maxLoggedBody))
	return text, nil
}

func toContents(messages []domain.ChatMessage) (string, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case domain.RoleSystem:
			system = append(system, m.Content)
		case domain.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return strings.Join(system, "\n"), contents
}

func apiStatusError(err error) *HTTPStatusError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &HTTPStatusError{StatusCode: apiErr.Code, Status: apiErr.Status, Body: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &HTTPStatusError{StatusCode: apiErrPtr.Code, Status: apiErrPtr.Status, Body: apiErrPtr.Message}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
