package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"component-generator/internal/domain"
	"component-generator/internal/extract"
	"component-generator/internal/repair"
	"component-generator/internal/sanitize"
)

const (
	// Dashboard and footer results shorter than this are treated as stubs.
	minTemplatedLength = 100
	maxDebugResponse   = 2000
)

type UpstreamClient interface {
	Send(ctx context.Context, messages []domain.ChatMessage) (string, error)
}

type GenerationRecorder interface {
	RecordGeneration(ctx context.Context, log domain.GenerationLog) error
}

type CodeRepairer interface {
	Repair(code string, p domain.PromptContext) (string, error)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

type GenerateService struct {
	upstream UpstreamClient
	recorder GenerationRecorder
	repairer CodeRepairer
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*GenerateService)

func WithRecorder(r GenerationRecorder) Option {
	return func(s *GenerateService) {
		s.recorder = r
	}
}

func WithRepairer(r CodeRepairer) Option {
	return func(s *GenerateService) {
		if r != nil {
			s.repairer = r
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *GenerateService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type GenerateInput struct {
	Prompt    string
	Platform  string
	RequestID string
}

type GenerateOutput struct {
	RequestID   string
	Component   domain.ComponentRecord
	Source      string
	Failure     *Error
	RawResponse string
	Duration    time.Duration
}

// Debug renders the diagnostic payload returned alongside every component.
func (o GenerateOutput) Debug() map[string]any {
	debug := map[string]any{
		"request_id": o.RequestID,
		"source":     o.Source,
	}
	if o.Failure != nil {
		debug["stage"] = string(o.Failure.Code)
		debug["reason"] = o.Failure.Reason
		if o.Failure.Err != nil {
			debug["error"] = o.Failure.Err.Error()
		} else {
			debug["error"] = o.Failure.Error()
		}
	}
	if o.RawResponse != "" {
		debug["api_response"] = truncate(o.RawResponse, maxDebugResponse)
	}
	return debug
}

// Response is the HTTP body for this output. Generation never fails at the
// boundary, so the status is always success.
func (o GenerateOutput) Response() domain.GenerateResponse {
	component := o.Component
	return domain.GenerateResponse{
		Status:    domain.StatusSuccess,
		Component: &component,
		APIDebug:  o.Debug(),
	}
}

func NewGenerateService(upstream UpstreamClient, opts ...Option) (*GenerateService, error) {
	if upstream == nil {
		return nil, errors.New("usecase: upstream client must not be nil")
	}
	s := &GenerateService{
		upstream: upstream,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.repairer == nil {
		s.repairer = repair.New(repair.WithLogger(s.logger))
	}
	return s, nil
}

// Generate always produces a complete component. Every failure is turned
// into a fallback template and reported through GenerateOutput.Failure.
func (s *GenerateService) Generate(ctx context.Context, in GenerateInput) GenerateOutput {
	start := s.now()
	p := domain.NewPromptContext(in.Prompt, in.Platform)

	out := s.generateSafely(ctx, p)
	out.RequestID = strings.TrimSpace(in.RequestID)
	if out.RequestID == "" {
		out.RequestID = newUUID()
	}
	out.Duration = s.now().Sub(start)

	attrs := []any{"request_id", out.RequestID, "source", out.Source, "duration_ms", out.Duration.Milliseconds()}
	if out.Failure != nil {
		s.logger.Warn("component generation degraded to fallback",
			append(attrs, "stage", out.Failure.Code, "reason", out.Failure.Reason, "err", out.Failure.Err)...)
	} else {
		s.logger.Info("component generated", attrs...)
	}

	s.record(ctx, p, out)
	return out
}

func (s *GenerateService) generateSafely(ctx context.Context, p domain.PromptContext) (out GenerateOutput) {
	defer func() {
		if r := recover(); r != nil {
			out = fallback(p, newError(ErrorInternal, "panic", fmt.Errorf("%v", r)), out.RawResponse)
		}
	}()
	return s.generate(ctx, p)
}

func (s *GenerateService) generate(ctx context.Context, p domain.PromptContext) GenerateOutput {
	if p.RawPrompt == "" {
		return fallback(p, newError(ErrorInvalidInput, "empty_prompt", nil), "")
	}

	raw, err := s.upstream.Send(ctx, buildPromptMessages(p))
	if err != nil {
		return fallback(p, upstreamError(err), "")
	}

	obj, err := extract.Extract(raw)
	if err != nil {
		return fallback(p, newError(ErrorExtract, "no_json_object", err), raw)
	}
	rec := normalize(obj, p)

	preview, err := safely(func() (string, error) { return sanitize.Sanitize(rec.PreviewHTML, p) })
	if err != nil {
		s.logger.Warn("preview sanitization failed, using default preview", "err", err)
		preview = defaultPreview(p)
	}
	rec.PreviewHTML = preview

	code, err := safely(func() (string, error) { return s.repairer.Repair(rec.ComponentCode, p) })
	if err != nil {
		return fallback(p, newError(ErrorRepair, "repair_failed", err), raw)
	}
	rec.ComponentCode = code

	if p.EchoedBy(rec.PreviewHTML) {
		return fallback(p, newError(ErrorImplausible, "echoed_prompt", nil), raw)
	}
	if reason, ok := templatedStub(p, rec); ok {
		return fallback(p, newError(ErrorImplausible, reason, nil), raw)
	}

	return GenerateOutput{
		Component:   rec,
		Source:      domain.SourceModel,
		RawResponse: raw,
	}
}

func fallback(p domain.PromptContext, failure *Error, raw string) GenerateOutput {
	return GenerateOutput{
		Component:   SelectFallback(p),
		Source:      domain.SourceFallback,
		Failure:     failure,
		RawResponse: raw,
	}
}

func (s *GenerateService) record(ctx context.Context, p domain.PromptContext, out GenerateOutput) {
	if s.recorder == nil {
		return
	}
	entry := domain.GenerationLog{
		RequestID:  out.RequestID,
		Prompt:     p.RawPrompt,
		Platform:   p.Platform,
		Source:     out.Source,
		DurationMS: out.Duration.Milliseconds(),
		CreatedAt:  s.now().UTC(),
	}
	if out.Failure != nil {
		entry.Stage = string(out.Failure.Code)
		entry.Reason = out.Failure.Reason
	}
	if err := s.recorder.RecordGeneration(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("failed to record generation", "request_id", out.RequestID, "err", err)
	}
}

// safely converts a panic inside fn into an error.
func safely(fn func() (string, error)) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("usecase: recovered panic: %v", r)
		}
	}()
	return fn()
}

func upstreamError(err error) *Error {
	switch {
	case errors.Is(err, domain.ErrMissingAPIKey):
		return newError(ErrorUpstream, "missing_api_key", err)
	case errors.Is(err, context.DeadlineExceeded):
		return newError(ErrorUpstream, "upstream_timeout", err)
	case errors.Is(err, context.Canceled):
		return newError(ErrorUpstream, "request_canceled", err)
	}
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return newError(ErrorUpstream, "upstream_timeout", err)
	}
	if status, ok := upstreamStatusCode(err); ok {
		if status == http.StatusTooManyRequests {
			return newError(ErrorRateLimited, "upstream_rate_limited", err)
		}
		return newError(ErrorUpstream, fmt.Sprintf("upstream_status_%d", status), err)
	}
	return newError(ErrorUpstream, "upstream_error", err)
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var newUUID = func() string {
	return uuid.NewString()
}
