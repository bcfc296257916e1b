package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"component-generator/internal/config"
	"component-generator/internal/domain"
	"component-generator/internal/integrations/apikey"
	"component-generator/internal/integrations/dashscope"
	"component-generator/internal/integrations/gemini"
	"component-generator/internal/integrations/openai"
	"component-generator/internal/repair"
	"component-generator/internal/usecase"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	orig := config.DefaultPaths
	config.DefaultPaths = nil
	t.Cleanup(func() { config.DefaultPaths = orig })
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewUpstreamSelectsProvider(t *testing.T) {
	cfg := testConfig(t)

	up, err := NewUpstream(cfg.Upstream, apikey.Static("k"), quiet())
	require.NoError(t, err)
	require.IsType(t, &dashscope.Client{}, up)

	cfg.Upstream.Provider = config.ProviderOpenAI
	up, err = NewUpstream(cfg.Upstream, apikey.Static("k"), quiet())
	require.NoError(t, err)
	require.IsType(t, &openai.Client{}, up)

	cfg.Upstream.Provider = config.ProviderGemini
	up, err = NewUpstream(cfg.Upstream, apikey.Static("k"), quiet())
	require.NoError(t, err)
	require.IsType(t, &gemini.Client{}, up)

	cfg.Upstream.Provider = "bedrock"
	_, err = NewUpstream(cfg.Upstream, apikey.Static("k"), quiet())
	require.Error(t, err)
}

func TestBuildWithoutAWS(t *testing.T) {
	cfg := testConfig(t)

	app, err := Build(context.Background(), cfg, quiet())
	require.NoError(t, err)
	require.NotNil(t, app.Service)
	require.Nil(t, app.Generations)
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Pipeline.MaxCodeSize = 0

	_, err := Build(context.Background(), cfg, quiet())
	require.ErrorContains(t, err, "max_code_size")
}

// A missing key never reaches the network and still yields a component.
func TestBuildMissingKeyDegradesToFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Upstream.BaseURL = srv.URL
	cfg.Upstream.APIKey = apikey.Placeholder

	app, err := Build(context.Background(), cfg, quiet())
	require.NoError(t, err)

	out := app.Service.Generate(context.Background(), usecase.GenerateInput{Prompt: "red button"})
	require.False(t, called)
	require.Equal(t, "missing_api_key", out.Failure.Reason)
	require.True(t, out.Component.Complete())
}

func TestBuildEndToEndWithDashScope(t *testing.T) {
	content := "```json\n" + `{"visual_description":"A login form","preview_html":"<form style=\"display: inline-flex; gap: 8px;\"><input placeholder=\"Email\"/><button>Sign in</button></form>","component_code":"import React from 'react'; const LoginForm = () => { return (<form><input placeholder=\"Email\"/><button>Sign in</button></form>); }; export default LoginForm;"}` + "\n```"
	body, err := json.Marshal(map[string]any{
		"output": map[string]any{"message": map[string]string{"role": "assistant", "content": content}},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer sk-e2e", r.Header.Get("Authorization"))
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Upstream.BaseURL = srv.URL
	cfg.Upstream.APIKey = "sk-e2e"

	app, err := Build(context.Background(), cfg, quiet())
	require.NoError(t, err)

	out := app.Service.Generate(context.Background(), usecase.GenerateInput{Prompt: "login form"})
	require.Nil(t, out.Failure)
	require.Equal(t, domain.SourceModel, out.Source)
	require.Equal(t, "A login form", out.Component.VisualDescription)
	require.Contains(t, out.Component.ComponentCode, "const LoginForm = () => {\n")
	require.NoError(t, repair.Verify(out.Component.ComponentCode))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(config.Log{Level: "warn", Format: "json"}, &buf).Info("hidden")
	require.Empty(t, buf.String())

	NewLogger(config.Log{Level: "warn", Format: "json"}, &buf).Warn("shown", "k", "v")
	require.Contains(t, buf.String(), `"msg":"shown"`)
}
