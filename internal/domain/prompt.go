package domain

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	defaultPlatform = "web"
	// Prompts shorter than this are only treated as echoed when the preview
	// text equals them exactly.
	minEchoContainLen = 16
)

// PromptContext is the immutable request input that drives the upstream
// prompt and every fallback template.
type PromptContext struct {
	RawPrompt string
	Platform  string
}

// NewPromptContext trims the inputs and defaults the platform to "web".
func NewPromptContext(prompt, platform string) PromptContext {
	platform = strings.ToLower(strings.TrimSpace(platform))
	if platform == "" {
		platform = defaultPlatform
	}
	return PromptContext{
		RawPrompt: strings.TrimSpace(prompt),
		Platform:  platform,
	}
}

// PlatformLabel returns the platform with its first letter upper-cased.
func (p PromptContext) PlatformLabel() string {
	platform := p.Platform
	if platform == "" {
		platform = defaultPlatform
	}
	r := []rune(platform)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// Mentions reports whether any keyword appears in the prompt starting at a
// word boundary. Suffixes are allowed so plurals still match.
func (p PromptContext) Mentions(keywords ...string) bool {
	lower := strings.ToLower(p.RawPrompt)
	for _, kw := range keywords {
		re := keywordPattern(kw)
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

var keywordCache = map[string]*regexp.Regexp{}

func keywordPattern(kw string) *regexp.Regexp {
	if re, ok := keywordCache[kw]; ok {
		return re
	}
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(kw)))
}

func init() {
	for _, kw := range []string{
		"dashboard", "footer", "social", "creator", "name",
		"vertical", "column", "left", "side", "sidebar",
		"dark", "black", "night", "shadcn",
		"red", "green", "blue", "yellow",
	} {
		keywordCache[kw] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw))
	}
}

// IsDashboard selects the dashboard template family.
func (p PromptContext) IsDashboard() bool { return p.Mentions("dashboard") }

// IsFooter selects the footer-with-social-icons template.
func (p PromptContext) IsFooter() bool { return p.Mentions("footer") }

// WantsSocialIcons reports whether the preview must carry social icon links.
func (p PromptContext) WantsSocialIcons() bool { return p.Mentions("footer", "social") }

// WantsAttribution reports whether the preview must carry a "Created by" line.
func (p PromptContext) WantsAttribution() bool { return p.Mentions("creator", "name") }

// WantsVerticalLayout picks the sidebar dashboard over the horizontal one.
func (p PromptContext) WantsVerticalLayout() bool {
	return p.Mentions("vertical", "column", "left", "side", "sidebar")
}

// WantsDarkTheme picks the dark dashboard palette.
func (p PromptContext) WantsDarkTheme() bool { return p.Mentions("dark", "black", "night") }

// WantsShadcn picks the shadcn/ui flavoured dashboard.
func (p PromptContext) WantsShadcn() bool { return p.Mentions("shadcn") }

// Accent is a background/foreground color pair.
type Accent struct {
	Background string
	Text       string
}

// AccentColor scans the prompt for a color word; gray is the default.
func (p PromptContext) AccentColor() Accent {
	switch {
	case p.Mentions("red"):
		return Accent{Background: "#ff3333", Text: "#ffffff"}
	case p.Mentions("green"):
		return Accent{Background: "#33cc33", Text: "#ffffff"}
	case p.Mentions("blue"):
		return Accent{Background: "#3366ff", Text: "#ffffff"}
	case p.Mentions("yellow"):
		return Accent{Background: "#ffcc00", Text: "#000000"}
	default:
		return Accent{Background: "#f0f0f0", Text: "#000000"}
	}
}

// ComponentName derives a PascalCase identifier from the first two words of
// the prompt, or "UIComponent" when that does not yield a valid identifier.
func (p PromptContext) ComponentName() string {
	var b strings.Builder
	words := strings.Fields(p.RawPrompt)
	if len(words) > 2 {
		words = words[:2]
	}
	for _, w := range words {
		word := identifierChars(w)
		if word == "" {
			continue
		}
		r := []rune(strings.ToLower(word))
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	name := b.String()
	if name == "" || !isASCIILetter(rune(name[0])) {
		return "UIComponent"
	}
	return name
}

func identifierChars(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// EchoedBy reports whether a generated preview merely repeats the prompt
// instead of rendering a component.
func (p PromptContext) EchoedBy(previewHTML string) bool {
	prompt := strings.TrimSpace(p.RawPrompt)
	if prompt == "" {
		return false
	}
	visible := tagPattern.ReplaceAllString(previewHTML, " ")
	visible = strings.TrimSpace(whitespacePattern.ReplaceAllString(visible, " "))
	if strings.EqualFold(visible, whitespacePattern.ReplaceAllString(prompt, " ")) {
		return true
	}
	return len(prompt) >= minEchoContainLen && strings.Contains(previewHTML, prompt)
}
