// Package bootstrap wires configuration into the generation service for both
// entry points.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"component-generator/internal/config"
	"component-generator/internal/integrations/apikey"
	"component-generator/internal/integrations/dashscope"
	"component-generator/internal/integrations/gemini"
	"component-generator/internal/integrations/openai"
	"component-generator/internal/integrations/paramstore"
	"component-generator/internal/repair"
	"component-generator/internal/repository"
	"component-generator/internal/usecase"
)

// App holds the wired components. Generations is nil when the generation
// log is disabled.
type App struct {
	Service     *usecase.GenerateService
	Generations *repository.Client
}

// NewLogger builds the process logger from the log section.
func NewLogger(cfg config.Log, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Build creates the upstream client, the optional generation log and the
// service. AWS configuration is only loaded when SSM or DynamoDB is used.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg != nil {
			return *awsCfg, nil
		}
		c, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return aws.Config{}, fmt.Errorf("bootstrap: load AWS config: %w", err)
		}
		awsCfg = &c
		return c, nil
	}

	keyFn := apikey.Static(cfg.Upstream.APIKey)
	if param := strings.TrimSpace(cfg.Upstream.KeyParam); param != "" {
		ac, err := loadAWS()
		if err != nil {
			return nil, err
		}
		ps, err := paramstore.New(awsssm.NewFromConfig(ac))
		if err != nil {
			return nil, fmt.Errorf("bootstrap: create SSM client: %w", err)
		}
		keyFn = func(ctx context.Context) (string, error) {
			return ps.Token(ctx, param)
		}
	}

	upstream, err := NewUpstream(cfg.Upstream, keyFn, logger)
	if err != nil {
		return nil, err
	}

	opts := []usecase.Option{
		usecase.WithLogger(logger),
		usecase.WithRepairer(repair.New(
			repair.WithMaxSize(cfg.Pipeline.MaxCodeSize),
			repair.WithLogger(logger),
		)),
	}

	app := &App{}
	if table := strings.TrimSpace(cfg.Store.Table); table != "" {
		ac, err := loadAWS()
		if err != nil {
			return nil, err
		}
		repo, err := repository.New(awsdynamodb.NewFromConfig(ac), table)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: create generation log: %w", err)
		}
		app.Generations = repo
		opts = append(opts, usecase.WithRecorder(repo))
	}

	svc, err := usecase.NewGenerateService(upstream, opts...)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: create generate service: %w", err)
	}
	app.Service = svc
	return app, nil
}

// NewUpstream selects the upstream client for the configured provider.
func NewUpstream(cfg config.Upstream, keyFn apikey.Func, logger *slog.Logger) (usecase.UpstreamClient, error) {
	switch cfg.Provider {
	case config.ProviderDashScope:
		return dashscope.NewClient(keyFn,
			dashscope.WithBaseURL(cfg.BaseURL),
			dashscope.WithModel(cfg.Model),
			dashscope.WithTemperature(cfg.Temperature),
			dashscope.WithMaxTokens(cfg.MaxTokens),
			dashscope.WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
			dashscope.WithLogger(logger),
		), nil
	case config.ProviderOpenAI:
		return openai.NewClient(keyFn,
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithModel(cfg.Model),
			openai.WithTemperature(cfg.Temperature),
			openai.WithMaxTokens(cfg.MaxTokens),
			openai.WithTimeout(cfg.Timeout()),
			openai.WithLogger(logger),
		), nil
	case config.ProviderGemini:
		return gemini.NewClient(keyFn,
			gemini.WithBaseURL(cfg.BaseURL),
			gemini.WithModel(cfg.Model),
			gemini.WithTemperature(cfg.Temperature),
			gemini.WithMaxTokens(cfg.MaxTokens),
			gemini.WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
			gemini.WithLogger(logger),
		), nil
	}
	return nil, fmt.Errorf("bootstrap: unknown upstream provider %q", cfg.Provider)
}
