package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"component-generator/internal/domain"
	"component-generator/internal/integrations/dashscope"
	"component-generator/internal/repair"
	"component-generator/internal/templates"
)

type stubUpstream struct {
	reply    string
	err      error
	calls    int
	captured []domain.ChatMessage
}

func (s *stubUpstream) Send(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	s.calls++
	s.captured = messages
	if s.err != nil {
		return "", s.err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.reply, nil
}

type stubRecorder struct {
	logs    []domain.GenerationLog
	ctxErrs []error
	err     error
}

func (s *stubRecorder) RecordGeneration(ctx context.Context, log domain.GenerationLog) error {
	s.logs = append(s.logs, log)
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	return s.err
}

type panicRepairer struct{}

func (panicRepairer) Repair(string, domain.PromptContext) (string, error) {
	panic("formatter exploded")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustNewService(t *testing.T, upstream UpstreamClient, opts ...Option) *GenerateService {
	t.Helper()
	opts = append([]Option{WithLogger(discardLogger())}, opts...)
	svc, err := NewGenerateService(upstream, opts...)
	require.NoError(t, err)
	return svc
}

// modelReply renders a component the way the model usually returns it: a
// json fence surrounded by chatter.
func modelReply(t *testing.T, description, preview, code string) string {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"visual_description": description,
		"preview_html":       preview,
		"component_code":     code,
	})
	require.NoError(t, err)
	return "Here is your component:\n```json\n" + string(body) + "\n```\nEnjoy!"
}

func TestNewGenerateService_NilUpstream(t *testing.T) {
	_, err := NewGenerateService(nil)
	require.Error(t, err)
}

func TestGenerate_ModelResult(t *testing.T) {
	code := "import React from 'react';\n\nconst PricingCard = () => {\n  return (\n    <div>Tiers</div>\n  );\n};\n\nexport default PricingCard;"
	preview := `<div style="display: inline-flex; gap: 8px;"><span>Basic</span><span>Pro</span><span>Team</span></div>`
	upstream := &stubUpstream{reply: modelReply(t, "Three pricing tiers", preview, code)}
	recorder := &stubRecorder{}
	svc := mustNewService(t, upstream, WithRecorder(recorder))

	out := svc.Generate(context.Background(), GenerateInput{Prompt: "pricing card with three tiers", RequestID: "req-1"})

	require.Nil(t, out.Failure)
	require.Equal(t, domain.SourceModel, out.Source)
	require.Equal(t, "req-1", out.RequestID)
	require.Equal(t, "Three pricing tiers", out.Component.VisualDescription)
	require.Contains(t, out.Component.PreviewHTML, "<span>Pro</span>")
	require.Equal(t, code, out.Component.ComponentCode)

	require.Equal(t, 1, upstream.calls)
	require.Len(t, upstream.captured, 2)
	require.Equal(t, domain.RoleSystem, upstream.captured[0].Role)
	require.Contains(t, upstream.captured[0].Content, "UI component generator for web")
	require.Equal(t, domain.RoleUser, upstream.captured[1].Role)
	require.Contains(t, upstream.captured[1].Content, `"Web component: pricing card with three tiers"`)

	require.Len(t, recorder.logs, 1)
	require.Equal(t, "req-1", recorder.logs[0].RequestID)
	require.Equal(t, domain.SourceModel, recorder.logs[0].Source)
	require.Empty(t, recorder.logs[0].Stage)

	debug := out.Debug()
	require.Equal(t, "req-1", debug["request_id"])
	require.NotContains(t, debug, "stage")
	require.Contains(t, debug["api_response"], "Here is your component")
}

func TestGenerate_UpstreamTimeoutFallsBackToGeneric(t *testing.T) {
	upstream := &stubUpstream{err: fmt.Errorf("dashscope: send request: %w", context.DeadlineExceeded)}
	svc := mustNewService(t, upstream)

	out := svc.Generate(context.Background(), GenerateInput{Prompt: "red button"})

	p := domain.NewPromptContext("red button", "")
	require.Equal(t, templates.Generic(p), out.Component)
	require.Contains(t, out.Component.PreviewHTML, "#ff3333")
	require.Contains(t, out.Component.ComponentCode, "const RedButton")
	require.Equal(t, domain.SourceFallback, out.Source)
	require.NotEmpty(t, out.RequestID)

	debug := out.Debug()
	require.Equal(t, "UPSTREAM_ERROR", debug["stage"])
	require.Equal(t, "upstream_timeout", debug["reason"])
	require.Contains(t, debug["error"], "deadline exceeded")
	require.NotContains(t, debug, "api_response")
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "Client.Timeout exceeded while awaiting headers" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestGenerate_UpstreamErrorReasons(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   ErrorCode
		reason string
	}{
		{"missing key", fmt.Errorf("dashscope: %w", domain.ErrMissingAPIKey), ErrorUpstream, "missing_api_key"},
		{"client timeout", fmt.Errorf("post: %w", timeoutError{}), ErrorUpstream, "upstream_timeout"},
		{"rate limited", &dashscope.HTTPStatusError{StatusCode: http.StatusTooManyRequests}, ErrorRateLimited, "upstream_rate_limited"},
		{"bad gateway", fmt.Errorf("wrapped: %w", &dashscope.HTTPStatusError{StatusCode: http.StatusBadGateway}), ErrorUpstream, "upstream_status_502"},
		{"opaque", errors.New("connection reset"), ErrorUpstream, "upstream_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := mustNewService(t, &stubUpstream{err: tc.err})
			out := svc.Generate(context.Background(), GenerateInput{Prompt: "blue card"})
			require.NotNil(t, out.Failure)
			require.Equal(t, tc.code, out.Failure.Code)
			require.Equal(t, tc.reason, out.Failure.Reason)
			require.ErrorIs(t, out.Failure, tc.err)
			require.True(t, out.Component.Complete())
		})
	}
}

func TestGenerate_CanceledRequestStillRecorded(t *testing.T) {
	recorder := &stubRecorder{}
	svc := mustNewService(t, &stubUpstream{reply: "{}"}, WithRecorder(recorder))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := svc.Generate(ctx, GenerateInput{Prompt: "blue card"})

	require.Equal(t, "request_canceled", out.Failure.Reason)
	require.Len(t, recorder.logs, 1)
	require.NoError(t, recorder.ctxErrs[0])
	require.Equal(t, "UPSTREAM_ERROR", recorder.logs[0].Stage)
	require.Equal(t, domain.SourceFallback, recorder.logs[0].Source)
}

func TestGenerate_RecorderErrorIsIgnored(t *testing.T) {
	recorder := &stubRecorder{err: errors.New("dynamodb unavailable")}
	svc := mustNewService(t, &stubUpstream{err: errors.New("boom")}, WithRecorder(recorder))

	out := svc.Generate(context.Background(), GenerateInput{Prompt: "blue card"})

	require.True(t, out.Component.Complete())
	require.Len(t, recorder.logs, 1)
}

func TestGenerate_EmptyPromptSkipsUpstream(t *testing.T) {
	upstream := &stubUpstream{reply: "{}"}
	svc := mustNewService(t, upstream)

	out := svc.Generate(context.Background(), GenerateInput{Prompt: "   "})

	require.Zero(t, upstream.calls)
	require.Equal(t, ErrorInvalidInput, out.Failure.Code)
	require.Contains(t, out.Component.ComponentCode, "const UIComponent")
}

func TestGenerate_ExtractFailureKeepsRawResponse(t *testing.T) {
	svc := mustNewService(t, &stubUpstream{reply: "Sorry, I cannot help with that."})

	out := svc.Generate(context.Background(), GenerateInput{Prompt: "blue card"})

	require.Equal(t, ErrorExtract, out.Failure.Code)
	require.Equal(t, "no_json_object", out.Failure.Reason)
	require.Equal(t, "Sorry, I cannot help with that.", out.Debug()["api_response"])
}

func TestGenerate_EchoedPromptFallsBack(t *testing.T) {
	code := "import React from 'react';\n\nconst RedButton = () => {\n  return (\n    <button>Go</button>\n  );\n};\n\nexport default RedButton;"
	svc := mustNewService(t, &stubUpstream{reply: modelReply(t, "A button", "<div>red button</div>", code)})

	out := svc.Generate(context.Background(), GenerateInput{Prompt: "red button"})

	require.Equal(t, ErrorImplausible, out.Failure.Code)
	require.Equal(t, "echoed_prompt", out.Failure.Reason)
	require.Equal(t, templates.Generic(domain.NewPromptContext("red button", "")), out.Component)
}

func TestGenerate_TemplatedStubsFallBack(t *testing.T) {
	longPreview := `<nav style="display: inline-flex; gap: 12px; padding: 16px; background: #222;"><a href="/a">Home</a><a href="/b">About</a><a href="/c">Contact</a></nav>`
	longCode := "import React from 'react';\n\nconst Links = () => {\n  return (\n    <nav style={{ display: 'flex', gap: '12px' }}>\n      <a href=\"/a\">Home</a>\n    </nav>\n  );\n};\n\nexport default Links;"
	shortCode := "import React from 'react';\nconst D = () => <div />;\nexport default D;"
	plainFooter := "import React from 'react';\n\nconst Footer = () => {\n  return (\n    <footer style={{ display: 'flex', gap: '12px' }}>\n      <p>All rights reserved</p>\n    </footer>\n  );\n};\n\nexport default Footer;"

	cases := []struct {
		name    string
		prompt  string
		preview string
		code    string
		reason  string
	}{
		{"short dashboard", "analytics dashboard with sidebar, dark theme", "<div>Dash</div>", shortCode, "too_short"},
		{"short footer", "simple footer", longPreview, shortCode, "too_short"},
		{"footer without footer code", "simple footer", longPreview, longCode, "missing_footer"},
		{"footer without social links", "simple footer", longPreview, plainFooter, "missing_social"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := mustNewService(t, &stubUpstream{reply: modelReply(t, "stub", tc.preview, tc.code)})
			out := svc.Generate(context.Background(), GenerateInput{Prompt: tc.prompt})
			require.Equal(t, ErrorImplausible, out.Failure.Code)
			require.Equal(t, tc.reason, out.Failure.Reason)
			require.Equal(t, SelectFallback(domain.NewPromptContext(tc.prompt, "")), out.Component)
		})
	}
}

func TestGenerate_FooterMissingExportIsRepaired(t *testing.T) {
	preview := `<footer style="display: flex; justify-content: center; gap: 12px; padding: 16px; background: #222;"><a href="https://facebook.com">Facebook</a><a href="https://twitter.com">Twitter</a></footer>`
	code := "import React from 'react';\n\nconst Footer = () => {\n  return (\n    <footer style={{ display: 'flex', gap: '12px' }}>\n      <a href=\"https://facebook.com\">Facebook</a>\n    </footer>\n  );\n};"
	svc := mustNewService(t, &stubUpstream{reply: modelReply(t, "A footer", preview, code)})

	out := svc.Generate(context.Background(), GenerateInput{Prompt: "footer with social icons"})

	require.Nil(t, out.Failure)
	require.Equal(t, domain.SourceModel, out.Source)
	require.True(t, strings.HasSuffix(out.Component.ComponentCode, "export default Footer;"))
	require.NoError(t, repair.Verify(out.Component.ComponentCode))
	require.Contains(t, out.Component.PreviewHTML, "facebook")
}

func TestGenerate_PanickingRepairerFallsBack(t *testing.T) {
	code := "import React from 'react';\nconst Card = () => null;\nexport default Card;"
	preview := `<section style="display: inline-flex;"><h2>Title</h2><p>Body</p></section>`
	svc := mustNewService(t, &stubUpstream{reply: modelReply(t, "Card", preview, code)}, WithRepairer(panicRepairer{}))

	out := svc.Generate(context.Background(), GenerateInput{Prompt: "green card"})

	require.Equal(t, ErrorRepair, out.Failure.Code)
	require.Contains(t, out.Failure.Error(), "formatter exploded")
	require.Equal(t, templates.Generic(domain.NewPromptContext("green card", "")), out.Component)
}

func TestGenerate_AlwaysReturnsWellFormedComponent(t *testing.T) {
	replies := []string{
		"",
		"{",
		"null",
		`"just a string"`,
		"```json\n{\"preview_html\": \"<div><div><p>x</p></div></div>\"}\n```",
		`{"component_code": "}}}{{{"}`,
		`{"component_code": "function () {"}`,
		`{"component_code": "const Broken = () => { return (<div><span>hi", "preview_html": "<img src='a.png'>"}`,
		`{"visual_description": 42, "preview_html": ["x"], "component_code": {"a": 1}}`,
		"```\n{\"component_code\": \"import React from 'react';\\nimport React from 'react';\\nfunction Card() { return null; }\"}\n```",
	}
	prompts := []string{"blue card", "footer with creator name", "dashboard", "登录 表单"}

	for _, reply := range replies {
		for _, prompt := range prompts {
			svc := mustNewService(t, &stubUpstream{reply: reply})
			out := svc.Generate(context.Background(), GenerateInput{Prompt: prompt})
			require.True(t, out.Component.Complete(), "reply=%q prompt=%q", reply, prompt)
			require.NoError(t, repair.Verify(out.Component.ComponentCode), "reply=%q prompt=%q", reply, prompt)
		}
	}
}

func TestGenerate_AssignsRequestID(t *testing.T) {
	orig := newUUID
	newUUID = func() string { return "generated-id" }
	t.Cleanup(func() { newUUID = orig })

	svc := mustNewService(t, &stubUpstream{err: errors.New("down")})
	out := svc.Generate(context.Background(), GenerateInput{Prompt: "blue card", RequestID: "  "})

	require.Equal(t, "generated-id", out.RequestID)
}

func TestDebugTruncatesRawResponse(t *testing.T) {
	out := GenerateOutput{RawResponse: strings.Repeat("a", maxDebugResponse+50)}
	got := out.Debug()["api_response"].(string)
	require.Len(t, got, maxDebugResponse+3)
	require.True(t, strings.HasSuffix(got, "..."))
}

func TestNormalizeFillsDefaults(t *testing.T) {
	p := domain.NewPromptContext("blue card", "mobile")
	rec := normalize(nil, p)

	require.Equal(t, "Mobile component: blue card", rec.VisualDescription)
	require.Equal(t, templates.BorderedPreview("blue card"), rec.PreviewHTML)
	require.Equal(t, templates.DefaultCode("blue card", "BlueCard"), rec.ComponentCode)
}

func TestSelectFallback(t *testing.T) {
	cases := []struct {
		prompt string
		want   func(domain.PromptContext) domain.ComponentRecord
	}{
		{"admin dashboard with footer", templates.Dashboard},
		{"dark footer", templates.Footer},
		{"blue card", templates.Generic},
	}
	for _, tc := range cases {
		p := domain.NewPromptContext(tc.prompt, "")
		require.Equal(t, tc.want(p), SelectFallback(p), tc.prompt)
	}
}

func TestSafelyRecoversPanics(t *testing.T) {
	_, err := safely(func() (string, error) { panic("bad markup") })
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad markup")
}

func TestResponseAlwaysSuccess(t *testing.T) {
	svc := mustNewService(t, &stubUpstream{err: errors.New("down")})
	out := svc.Generate(context.Background(), GenerateInput{Prompt: "blue card", RequestID: "r"})

	resp := out.Response()
	require.Equal(t, domain.StatusSuccess, resp.Status)
	require.NotNil(t, resp.Component)
	require.Equal(t, out.Component, *resp.Component)
	require.Equal(t, "UPSTREAM_ERROR", resp.APIDebug["stage"])
}
