package usecase

import (
	"strings"

	"component-generator/internal/domain"
	"component-generator/internal/extract"
	"component-generator/internal/templates"
)

// normalize fills any missing or blank field of the extracted object with a
// default derived from the prompt. It never fails.
func normalize(obj extract.Object, p domain.PromptContext) domain.ComponentRecord {
	rec := domain.ComponentRecord{
		VisualDescription: obj.String("visual_description"),
		PreviewHTML:       obj.String("preview_html"),
		ComponentCode:     obj.String("component_code"),
	}
	if rec.VisualDescription == "" {
		rec.VisualDescription = p.PlatformLabel() + " component: " + p.RawPrompt
	}
	if rec.PreviewHTML == "" {
		rec.PreviewHTML = defaultPreview(p)
	}
	if rec.ComponentCode == "" {
		rec.ComponentCode = templates.DefaultCode(p.RawPrompt, p.ComponentName())
	}
	return rec
}

func defaultPreview(p domain.PromptContext) string {
	return templates.BorderedPreview(p.RawPrompt)
}

// SelectFallback picks the template for a prompt: dashboard, then footer,
// then the generic accent-colored component.
func SelectFallback(p domain.PromptContext) domain.ComponentRecord {
	switch {
	case p.IsDashboard():
		return templates.Dashboard(p)
	case p.IsFooter():
		return templates.Footer(p)
	default:
		return templates.Generic(p)
	}
}

// templatedStub reports whether a dashboard or footer result is too thin to
// keep, returning the reason.
func templatedStub(p domain.PromptContext, rec domain.ComponentRecord) (string, bool) {
	if !p.IsDashboard() && !p.IsFooter() {
		return "", false
	}
	if len(rec.ComponentCode) < minTemplatedLength || len(rec.PreviewHTML) < minTemplatedLength {
		return "too_short", true
	}
	if !p.IsDashboard() {
		if !strings.Contains(strings.ToLower(rec.ComponentCode), "footer") {
			return "missing_footer", true
		}
		if !templates.HasSocialIcon(rec.ComponentCode) {
			return "missing_social", true
		}
	}
	return "", false
}
