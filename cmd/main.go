package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"component-generator/handler"
	"component-generator/internal/bootstrap"
	"component-generator/internal/config"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load("")
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	logger := bootstrap.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	// ---- Service ----
	app, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		slog.Error("failed to build service", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	opts := []handler.Option{handler.WithLogger(logger)}
	if app.Generations != nil {
		opts = append(opts, handler.WithLookup(app.Generations))
	}
	h, err := handler.NewHandler(app.Service, opts...)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
