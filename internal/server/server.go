// Package server exposes the generation routes over plain HTTP for local and
// container deployments.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"component-generator/internal/domain"
	"component-generator/internal/repository"
	"component-generator/internal/usecase"
	"component-generator/internal/util/jsonutil"
)

const (
	correlationHeader = "X-Correlation-Id"
	shutdownTimeout   = 10 * time.Second
)

type Generator interface {
	Generate(ctx context.Context, in usecase.GenerateInput) usecase.GenerateOutput
}

type GenerationLookup interface {
	LatestGeneration(ctx context.Context, requestID string) (domain.GenerationLog, error)
}

const invalidBodyMessage = "request body must be a JSON object"

type generateRequest struct {
	Prompt   string `json:"prompt"`
	Platform string `json:"platform"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server represents the API server
type Server struct {
	echo      *echo.Echo
	addr      string
	generator Generator
	lookup    GenerationLookup
	logger    *slog.Logger
}

type Option func(*Server)

// WithLookup enables GET /generations/:id.
func WithLookup(lookup GenerationLookup) Option {
	return func(s *Server) {
		s.lookup = lookup
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates the echo server with its middleware and routes.
func New(generator Generator, addr string, opts ...Option) (*Server, error) {
	if generator == nil {
		return nil, errors.New("server: generator must not be nil")
	}
	s := &Server{
		echo:      echo.New(),
		addr:      addr,
		generator: generator,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{TargetHeader: correlationHeader}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method, "uri", v.URI, "status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"correlation_id", c.Response().Header().Get(correlationHeader),
			}
			if v.Error != nil {
				s.logger.Warn("request failed", append(attrs, "err", v.Error)...)
				return nil
			}
			s.logger.Info("request served", attrs...)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderContentType, correlationHeader},
		ExposeHeaders: []string{correlationHeader},
	}))

	s.setupRoutes()
	return s, nil
}

// setupRoutes mounts every route at the root and under /api/v1.
func (s *Server) setupRoutes() {
	for _, g := range []*echo.Group{s.echo.Group(""), s.echo.Group("/api/v1")} {
		g.GET("", s.welcome)
		g.GET("/", s.welcome)
		g.GET("/health", s.health)
		g.POST("/generate-component", s.generate)
		g.GET("/generations/:id", s.generation)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(s.addr)
	}()
	s.logger.Info("http server listening", "addr", s.addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen on %s: %w", s.addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) welcome(c echo.Context) error {
	return writeJSON(c, http.StatusOK, domain.WelcomeResponse{Message: domain.WelcomeMessage})
}

func (s *Server) health(c echo.Context) error {
	return writeJSON(c, http.StatusOK, domain.HealthResponse{Status: domain.StatusOK, Message: domain.HealthMessage})
}

func (s *Server) generate(c echo.Context) error {
	req := c.Request()
	if req.ContentLength == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, invalidBodyMessage)
	}
	if req.Header.Get(echo.HeaderContentType) == "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	var in generateRequest
	if err := c.Bind(&in); err != nil {
		s.logger.Warn("invalid generate request body", "correlation_id", c.Response().Header().Get(correlationHeader), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, invalidBodyMessage).SetInternal(err)
	}
	out := s.generator.Generate(c.Request().Context(), usecase.GenerateInput{
		Prompt:    in.Prompt,
		Platform:  in.Platform,
		RequestID: c.Response().Header().Get(correlationHeader),
	})
	return writeJSON(c, http.StatusOK, out.Response())
}

func (s *Server) generation(c echo.Context) error {
	if s.lookup == nil {
		return writeJSON(c, http.StatusNotFound, errorResponse{Error: "NOT_FOUND", Message: "generation log is disabled"})
	}
	id := c.Param("id")
	log, err := s.lookup.LatestGeneration(c.Request().Context(), id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return writeJSON(c, http.StatusNotFound, errorResponse{Error: "NOT_FOUND", Message: "no generation recorded for " + id})
	case err != nil:
		return fmt.Errorf("server: lookup %s: %w", id, err)
	}
	return writeJSON(c, http.StatusOK, log)
}

// handleError renders routing and unexpected errors in the same envelope as
// the Lambda handler.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	code := string(usecase.ErrorInternal)
	message := ""

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok && m != http.StatusText(he.Code) {
			message = m
		}
		switch he.Code {
		case http.StatusNotFound:
			code = "NOT_FOUND"
		case http.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case http.StatusBadRequest:
			code = string(usecase.ErrorInvalidInput)
		}
	} else {
		s.logger.Error("unhandled request error", "err", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = writeJSON(c, status, errorResponse{Error: code, Message: message})
}

// writeJSON encodes without HTML escaping so markup fields stay readable.
func writeJSON(c echo.Context, status int, payload any) error {
	body, err := jsonutil.MarshalNoEscape(payload)
	if err != nil {
		return fmt.Errorf("server: encode response: %w", err)
	}
	return c.Blob(status, echo.MIMEApplicationJSON, body)
}
