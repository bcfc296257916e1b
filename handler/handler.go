// Package handler adapts API Gateway proxy events to the generation service.
package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"component-generator/internal/domain"
	"component-generator/internal/repository"
	"component-generator/internal/usecase"
	"component-generator/internal/util/jsonutil"
)

const (
	correlationHeader = "X-Correlation-Id"
	apiPrefix         = "/api/v1"
	generationsPath   = "/generations/"
)

// Generator produces a component for every input; it has no error result.
type Generator interface {
	Generate(ctx context.Context, in usecase.GenerateInput) usecase.GenerateOutput
}

// GenerationLookup reads back recorded generation outcomes.
type GenerationLookup interface {
	LatestGeneration(ctx context.Context, requestID string) (domain.GenerationLog, error)
}

type generateRequest struct {
	Prompt   string `json:"prompt"`
	Platform string `json:"platform"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type Handler struct {
	generator Generator
	lookup    GenerationLookup
	logger    *slog.Logger
}

type Option func(*Handler)

// WithLookup enables GET /generations/{id}.
func WithLookup(lookup GenerationLookup) Option {
	return func(h *Handler) {
		h.lookup = lookup
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func NewHandler(generator Generator, opts ...Option) (*Handler, error) {
	if generator == nil {
		return nil, errors.New("handler: generator must not be nil")
	}
	h := &Handler{generator: generator, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Handle routes one API Gateway request. Transport problems map to 4xx;
// generation itself always answers 200.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(req.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	path := routePath(req.Path)
	method := strings.ToUpper(req.HTTPMethod)

	if method == http.MethodOptions {
		return h.respond(correlationID, http.StatusNoContent, nil), nil
	}

	switch {
	case path == "/":
		if method != http.MethodGet {
			return h.methodNotAllowed(correlationID), nil
		}
		return h.respond(correlationID, http.StatusOK, domain.WelcomeResponse{Message: domain.WelcomeMessage}), nil
	case path == "/health":
		if method != http.MethodGet {
			return h.methodNotAllowed(correlationID), nil
		}
		return h.respond(correlationID, http.StatusOK, domain.HealthResponse{Status: domain.StatusOK, Message: domain.HealthMessage}), nil
	case path == "/generate-component":
		if method != http.MethodPost {
			return h.methodNotAllowed(correlationID), nil
		}
		return h.generate(ctx, correlationID, req), nil
	case strings.HasPrefix(path, generationsPath):
		if method != http.MethodGet {
			return h.methodNotAllowed(correlationID), nil
		}
		return h.generation(ctx, correlationID, strings.TrimPrefix(path, generationsPath)), nil
	}
	return h.respond(correlationID, http.StatusNotFound, errorResponse{Error: "NOT_FOUND", Message: "no route for " + req.Path}), nil
}

func (h *Handler) generate(ctx context.Context, correlationID string, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	body, err := requestBody(req)
	if err != nil {
		return h.respond(correlationID, http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput), Message: "request body is not valid base64"})
	}
	var in generateRequest
	if err := json.Unmarshal(body, &in); err != nil {
		h.logger.Warn("invalid generate request body", "correlation_id", correlationID, "err", err)
		return h.respond(correlationID, http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput), Message: "request body must be a JSON object"})
	}

	out := h.generator.Generate(ctx, usecase.GenerateInput{
		Prompt:    in.Prompt,
		Platform:  in.Platform,
		RequestID: correlationID,
	})
	return h.respond(out.RequestID, http.StatusOK, out.Response())
}

func (h *Handler) generation(ctx context.Context, correlationID, requestID string) events.APIGatewayProxyResponse {
	if h.lookup == nil {
		return h.respond(correlationID, http.StatusNotFound, errorResponse{Error: "NOT_FOUND", Message: "generation log is disabled"})
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" || strings.Contains(requestID, "/") {
		return h.respond(correlationID, http.StatusNotFound, errorResponse{Error: "NOT_FOUND"})
	}

	log, err := h.lookup.LatestGeneration(ctx, requestID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return h.respond(correlationID, http.StatusNotFound, errorResponse{Error: "NOT_FOUND", Message: "no generation recorded for " + requestID})
	case err != nil:
		h.logger.Error("generation lookup failed", "correlation_id", correlationID, "request_id", requestID, "err", err)
		return h.respond(correlationID, http.StatusInternalServerError, errorResponse{Error: string(usecase.ErrorInternal)})
	}
	return h.respond(correlationID, http.StatusOK, log)
}

func (h *Handler) methodNotAllowed(correlationID string) events.APIGatewayProxyResponse {
	return h.respond(correlationID, http.StatusMethodNotAllowed, errorResponse{Error: "METHOD_NOT_ALLOWED"})
}

func (h *Handler) respond(correlationID string, status int, payload any) events.APIGatewayProxyResponse {
	headers := map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type, " + correlationHeader,
		"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
		correlationHeader:              correlationID,
	}
	if payload == nil {
		return events.APIGatewayProxyResponse{StatusCode: status, Headers: headers}
	}
	body, err := jsonutil.MarshalNoEscape(payload)
	if err != nil {
		h.logger.Error("failed to encode response", "correlation_id", correlationID, "err", err)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    headers,
			Body:       `{"error":"INTERNAL_ERROR"}`,
		}
	}
	return events.APIGatewayProxyResponse{StatusCode: status, Headers: headers, Body: string(body)}
}

// routePath strips the optional /api/v1 prefix and any trailing slash.
func routePath(p string) string {
	p = strings.TrimPrefix(p, apiPrefix)
	if p != "/" {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}

func requestBody(req events.APIGatewayProxyRequest) ([]byte, error) {
	if !req.IsBase64Encoded {
		return []byte(req.Body), nil
	}
	return base64.StdEncoding.DecodeString(req.Body)
}

// headerValue looks a header up case-insensitively; API Gateway preserves
// the client's casing.
func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
