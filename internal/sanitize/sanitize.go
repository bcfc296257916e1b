// Package sanitize rewrites model-generated preview HTML so it renders as a
// compact inline element in the preview pane.
package sanitize

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"component-generator/internal/domain"
	"component-generator/internal/templates"
)

// PlaceholderImage replaces image sources that are not absolute URLs.
const PlaceholderImage = "https://placehold.co/400x300?text=Image"

const maxPasses = 8

var ErrEmpty = errors.New("sanitize: empty preview")

// Sanitize applies the rewrite rules until the output stops changing, so a
// second call on its own result is a no-op.
func Sanitize(markup string, p domain.PromptContext) (string, error) {
	out := markup
	for i := 0; i < maxPasses; i++ {
		next, err := pass(out, p)
		if err != nil {
			return "", err
		}
		if next == out {
			break
		}
		out = next
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrEmpty
	}
	return out, nil
}

func pass(s string, p domain.PromptContext) (string, error) {
	s, err := unwrapFragment(s)
	if err != nil {
		return "", err
	}
	s = wrapText(s)
	if s, err = collapseWrappers(s); err != nil {
		return "", err
	}
	if s, err = ensureInlineDisplay(s); err != nil {
		return "", err
	}
	s = fixImages(s)
	if p.WantsSocialIcons() && !templates.HasSocialIcon(s) {
		s = insertBeforeClose(s, templates.SocialIconRow())
	}
	if p.WantsAttribution() && !strings.Contains(s, "YourName") && !strings.Contains(s, "Created by") {
		s = insertBeforeClose(s, templates.Attribution)
	}
	return strings.TrimSpace(s), nil
}

var previewField = regexp.MustCompile(`"preview_html"\s*:\s*"((?:[^"\\]|\\.)*)"`)

// unwrapFragment recovers the HTML from a value that still looks like a
// JSON or markdown fragment.
func unwrapFragment(s string) (string, error) {
	if !strings.Contains(s, `"preview_html"`) && !strings.Contains(s, "```") {
		return s, nil
	}
	if m := previewField.FindStringSubmatch(s); m != nil {
		var decoded string
		if err := json.Unmarshal([]byte(`"`+m[1]+`"`), &decoded); err == nil {
			return decoded, nil
		}
		return strings.NewReplacer(`\"`, `"`, `\n`, "\n").Replace(m[1]), nil
	}
	elems, _, err := scanTopLevel(s)
	if err != nil {
		return "", err
	}
	for _, e := range elems {
		if e.closed && e.innerEnd > e.innerStart {
			return s[e.start:e.end], nil
		}
	}
	return s, nil
}

// wrapText turns a tag-free preview into an inline pill.
func wrapText(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || hasTag(trimmed) {
		return s
	}
	return `<span style="display: inline-block; padding: 12px 24px; border-radius: 8px; font-family: Arial, sans-serif;">` +
		trimmed + `</span>`
}

var leafWrapper = regexp.MustCompile(`<div[^>]*>\s*(<[^>/][^>]*>[^<]*</[^>]+>)\s*</div>`)

// collapseWrappers removes div wrappers around a single child: anywhere in
// the document when the child is a text-only element, and at the root for
// any single child.
func collapseWrappers(s string) (string, error) {
	for i := 0; i < maxPasses; i++ {
		next := leafWrapper.ReplaceAllString(s, "$1")
		next, err := collapseRoot(next)
		if err != nil {
			return "", err
		}
		if next == s {
			break
		}
		s = next
	}
	return s, nil
}

func collapseRoot(s string) (string, error) {
	elems, hasText, err := scanTopLevel(s)
	if err != nil {
		return "", err
	}
	if hasText || len(elems) != 1 || elems[0].name != "div" || !elems[0].closed {
		return s, nil
	}
	root := elems[0]
	inner := s[root.innerStart:root.innerEnd]
	children, innerText, err := scanTopLevel(inner)
	if err != nil {
		return "", err
	}
	if innerText || len(children) != 1 || !children[0].closed {
		return s, nil
	}
	return strings.TrimSpace(inner), nil
}

var (
	displayDecl  = regexp.MustCompile(`(?i)display\s*:`)
	inlineishVal = regexp.MustCompile(`(?i)display\s*:\s*(inline-flex|inline-block|inline|flex)\b`)
	styleAttr    = regexp.MustCompile(`(?is)\sstyle\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	tagName      = regexp.MustCompile(`^<[A-Za-z][A-Za-z0-9-]*`)
)

// ensureInlineDisplay makes the root element inline-flex when the markup
// declares no display at all, or only block-level display values.
func ensureInlineDisplay(s string) (string, error) {
	if inlineishVal.MatchString(s) {
		return s, nil
	}
	elems, _, err := scanTopLevel(s)
	if err != nil {
		return "", err
	}
	if len(elems) == 0 {
		return s, nil
	}
	root := elems[0]
	tag := root.startTag(s)
	prepend := !displayDecl.MatchString(s)
	return s[:root.start] + withInlineFlex(tag, prepend) + s[root.start+len(tag):], nil
}

func withInlineFlex(tag string, prepend bool) string {
	const decl = "display: inline-flex;"
	loc := styleAttr.FindStringSubmatchIndex(tag)
	if loc == nil {
		name := tagName.FindString(tag)
		if name == "" {
			return tag
		}
		return name + ` style="` + decl + `"` + tag[len(name):]
	}
	// Group 1 is the double-quoted value, group 2 the single-quoted one.
	vs, ve := loc[2], loc[3]
	if vs < 0 {
		vs, ve = loc[4], loc[5]
	}
	value := strings.TrimSpace(tag[vs:ve])
	switch {
	case value == "":
		value = decl
	case prepend:
		value = decl + " " + value
	default:
		if !strings.HasSuffix(value, ";") {
			value += ";"
		}
		value += " " + decl
	}
	return tag[:vs] + value + tag[ve:]
}

var imgSrc = regexp.MustCompile(`(?i)(<img\b[^>]*?\ssrc\s*=\s*)(?:"([^"]*)"|'([^']*)')`)
var absoluteURL = regexp.MustCompile(`(?i)^https?://`)

// fixImages points relative or broken image sources at a placeholder.
func fixImages(s string) string {
	return imgSrc.ReplaceAllStringFunc(s, func(m string) string {
		sub := imgSrc.FindStringSubmatch(m)
		src := sub[2]
		if src == "" {
			src = sub[3]
		}
		if absoluteURL.MatchString(strings.TrimSpace(src)) {
			return m
		}
		return sub[1] + `"` + PlaceholderImage + `"`
	})
}

// insertBeforeClose places block before the last </footer>, else before a
// trailing </div>, else at the end.
func insertBeforeClose(s, block string) string {
	lower := strings.ToLower(s)
	if i := strings.LastIndex(lower, "</footer>"); i >= 0 {
		return s[:i] + block + s[i:]
	}
	trimmed := strings.TrimRight(s, " \t\r\n")
	if strings.HasSuffix(strings.ToLower(trimmed), "</div>") {
		i := len(trimmed) - len("</div>")
		return trimmed[:i] + block + trimmed[i:]
	}
	return s + block
}
