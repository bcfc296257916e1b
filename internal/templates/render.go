// Package templates holds the hand-written fallback components returned when
// generation fails or produces an implausible result.
package templates

import (
	"html"
	"strings"
	"text/template"
)

func mustParse(name, body string) *template.Template {
	return template.Must(template.New(name).
		Delims("[[", "]]").
		Funcs(template.FuncMap{
			"jsx":     JSXText,
			"html":    html.EscapeString,
			"comment": commentText,
			"jslist":  jsList,
		}).
		Parse(body))
}

func render(t *template.Template, data any) string {
	var b strings.Builder
	// Every template is parsed at init and executed with fixed data shapes.
	if err := t.Execute(&b, data); err != nil {
		panic("templates: " + t.Name() + ": " + err.Error())
	}
	return b.String()
}

var jsxReplacer = strings.NewReplacer(
	"{", "&#123;",
	"}", "&#125;",
	"<", "&lt;",
	">", "&gt;",
)

// JSXText escapes s for use as literal JSX text content. Braces are encoded so
// user input can never unbalance the generated code.
func JSXText(s string) string {
	return jsxReplacer.Replace(s)
}

func commentText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return JSXText(s)
}

// jsList renders a JavaScript array literal of single-quoted strings.
func jsList(items []string) string {
	quoted := make([]string, 0, len(items))
	for _, it := range items {
		quoted = append(quoted, "'"+strings.ReplaceAll(it, "'", `\'`)+"'")
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
