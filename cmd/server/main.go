package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"component-generator/internal/bootstrap"
	"component-generator/internal/config"
	"component-generator/internal/server"
)

const version = "0.1.0"

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:    "component-generator",
		Usage:   "Generate React UI components from natural language prompts",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen on `ADDR` instead of server.addr",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if addr := c.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	logger := bootstrap.NewLogger(cfg.Log, os.Stderr)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}

	opts := []server.Option{server.WithLogger(logger)}
	if app.Generations != nil {
		opts = append(opts, server.WithLookup(app.Generations))
	}
	srv, err := server.New(app.Service, cfg.Server.Addr, opts...)
	if err != nil {
		return err
	}
	if cfg.Upstream.APIKey == "" && cfg.Upstream.KeyParam == "" {
		logger.Warn("no upstream API key configured; every request will return a fallback component")
	}
	return srv.Run(ctx)
}
