// Package repair rewrites model-generated component code into a well-formed
// React module: one import from 'react', a default export of the declared
// component and balanced braces.
package repair

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"component-generator/internal/domain"
	"component-generator/internal/templates"
)

const (
	DefaultMaxSize = 10000
	reactImport    = "import React from 'react';"
)

var ErrMalformed = errors.New("repair: code is not well formed")

type Repairer struct {
	maxSize int
	logger  *slog.Logger
}

type Option func(*Repairer)

func WithMaxSize(n int) Option {
	return func(r *Repairer) {
		if n > 0 {
			r.maxSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Repairer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func New(opts ...Option) *Repairer {
	r := &Repairer{maxSize: DefaultMaxSize, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Repair runs every repair step in order. A step that panics is skipped and
// the previous code is kept; an error is returned only when the final code
// still violates the import/export/brace invariants.
func (r *Repairer) Repair(code string, p domain.PromptContext) (string, error) {
	var skipped []string
	step := func(name string, fn func(string) string) {
		next, err := guard(fn, code)
		if err != nil {
			skipped = append(skipped, name)
			r.logger.Warn("repair step skipped", "step", name, "err", err)
			return
		}
		code = next
	}

	step("unescape", unescape)
	step("format", func(c string) string {
		if !strings.Contains(c, "\n") && strings.Contains(c, "{") && strings.Contains(c, "}") {
			return Format(c)
		}
		return c
	})
	step("import", ensureImport)
	step("export", func(c string) string { return ensureExport(c, p) })
	step("jsx", fixJSX)
	step("size", func(c string) string {
		if len(c) <= r.maxSize {
			return c
		}
		name, _ := ComponentName(c)
		return templates.Simplified(p.RawPrompt, name)
	})

	if err := Verify(code); err != nil {
		if len(skipped) > 0 {
			return code, fmt.Errorf("%w (skipped steps: %s)", err, strings.Join(skipped, ", "))
		}
		return code, err
	}
	return code, nil
}

func guard(fn func(string) string, in string) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("repair: panic: %v", rec)
		}
	}()
	return fn(in), nil
}

var unescaper = strings.NewReplacer(
	`\n`, "\n",
	`\t`, "    ",
	`\"`, `"`,
	`\'`, `'`,
	`\/`, `/`,
)

func unescape(code string) string {
	code = unescaper.Replace(code)
	for strings.Contains(code, "///") {
		code = strings.ReplaceAll(code, "///", "//")
	}
	return code
}

var reactImportStmt = regexp.MustCompile(`(?m)^[ \t]*import\s+([^;'"]+?)\s+from\s+['"]react['"][ \t]*;?[ \t]*\n?`)

// reactImports returns the value imports from 'react'; type-only imports
// are left alone.
func reactImports(code string) [][]int {
	var locs [][]int
	for _, m := range reactImportStmt.FindAllStringSubmatchIndex(code, -1) {
		if strings.HasPrefix(strings.TrimSpace(code[m[2]:m[3]]), "type ") {
			continue
		}
		locs = append(locs, m)
	}
	return locs
}

type importClause struct {
	def   string
	ns    string
	named []string
}

func (c *importClause) add(clause string) {
	clause = strings.TrimSpace(clause)
	if i := strings.IndexByte(clause, '{'); i >= 0 {
		inner := clause[i+1:]
		if j := strings.IndexByte(inner, '}'); j >= 0 {
			inner = inner[:j]
		}
		for _, spec := range strings.Split(inner, ",") {
			spec = strings.Join(strings.Fields(spec), " ")
			if spec != "" && !contains(c.named, spec) {
				c.named = append(c.named, spec)
			}
		}
		clause = clause[:i]
	}
	for _, part := range strings.Split(clause, ",") {
		part = strings.Join(strings.Fields(part), " ")
		switch {
		case part == "":
		case strings.HasPrefix(part, "* as "):
			if c.ns == "" {
				c.ns = strings.TrimPrefix(part, "* as ")
			}
		case c.def == "":
			c.def = part
		}
	}
}

// statement renders the single import. A namespace import survives only
// when nothing else is imported; otherwise its name becomes the default.
func (c importClause) statement() string {
	if c.ns != "" && c.def == "" && len(c.named) == 0 {
		return "import * as " + c.ns + " from 'react';"
	}
	def := c.def
	if def == "" {
		def = c.ns
	}
	if def == "" {
		def = "React"
	}
	if len(c.named) == 0 {
		return "import " + def + " from 'react';"
	}
	return "import " + def + ", { " + strings.Join(c.named, ", ") + " } from 'react';"
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ensureImport merges every import from 'react' into one statement that
// carries the React default, prepending one when none exists.
func ensureImport(code string) string {
	locs := reactImports(code)
	if len(locs) == 0 {
		return reactImport + "\n\n" + strings.TrimLeft(code, "\n")
	}
	var clause importClause
	for _, m := range locs {
		clause.add(code[m[2]:m[3]])
	}
	var b strings.Builder
	b.WriteString(code[:locs[0][0]])
	b.WriteString(clause.statement())
	b.WriteString("\n")
	prev := locs[0][1]
	for _, loc := range locs[1:] {
		b.WriteString(code[prev:loc[0]])
		prev = loc[1]
	}
	b.WriteString(code[prev:])
	return b.String()
}

var (
	exportDefault    = regexp.MustCompile(`\bexport\s+default\s+[A-Za-z_$]`)
	capitalizedDecl  = regexp.MustCompile(`(?:function|const|class)\s+([A-Z][A-Za-z0-9_]*)`)
	anyDecl          = regexp.MustCompile(`(?:function|const)\s+([A-Za-z_][A-Za-z0-9_]*)`)
	trailingExportRe = regexp.MustCompile(`\n*[ \t]*export\s+default\s+[A-Za-z_][A-Za-z0-9_]*\s*;?\s*$`)
)

// ComponentName returns the declared component name, preferring a
// capitalized declaration.
func ComponentName(code string) (string, bool) {
	if m := capitalizedDecl.FindStringSubmatch(code); m != nil {
		return m[1], true
	}
	if m := anyDecl.FindStringSubmatch(code); m != nil {
		return m[1], true
	}
	return "", false
}

// ensureExport appends a default export for the declared component. Code
// without any declaration cannot be exported and is replaced by the default
// component.
func ensureExport(code string, p domain.PromptContext) string {
	if exportDefault.MatchString(code) {
		return code
	}
	name, ok := ComponentName(code)
	if !ok {
		return templates.DefaultCode(p.RawPrompt, p.ComponentName())
	}
	return strings.TrimRight(code, " \t\n") + "\n\nexport default " + name + ";"
}

// splitTrailingExport separates a final "export default X;" statement so
// closers can be appended before it.
func splitTrailingExport(code string) (body, tail string) {
	loc := trailingExportRe.FindStringIndex(code)
	if loc == nil {
		return code, ""
	}
	return code[:loc[0]], strings.TrimSpace(code[loc[0]:])
}

var lastOpenTag = regexp.MustCompile(`<([a-zA-Z][^\s/>]*)[^>]*>[^<]*$`)

// openReturn returns the offset of the last "return (" whose parenthesis is
// never closed, or -1.
func openReturn(body string) int {
	locs := returnParen.FindAllStringIndex(body, -1)
	if len(locs) == 0 {
		return -1
	}
	last := locs[len(locs)-1]
	if matchParen(body, last[1]-1) >= 0 {
		return -1
	}
	return last[0]
}

// fixJSX closes a dangling tag inside an unterminated return (, the return
// itself and balances braces.
func fixJSX(code string) string {
	body, tail := splitTrailingExport(code)

	if start := openReturn(body); start >= 0 {
		if m := lastOpenTag.FindStringSubmatchIndex(body[start:]); m != nil {
			full := body[start+m[0] : start+m[1]]
			tag := body[start+m[2] : start+m[3]]
			openTag := full[:strings.IndexByte(full, '>')+1]
			if !strings.HasSuffix(openTag, "/>") && !strings.Contains(body[start:], "</"+tag+">") {
				body = strings.TrimRight(body, " \t\n") + "</" + tag + ">"
			}
		}
		body = strings.TrimRight(body, " \t\n") + "\n  );"
	}
	body = BalanceBraces(body)

	if tail == "" {
		return body
	}
	return strings.TrimRight(body, " \t\n") + "\n\n" + tail
}

// BalanceBraces drops closing braces that have no opener and appends the
// closers that are missing, so the counts of '{' and '}' are equal.
func BalanceBraces(code string) string {
	var b strings.Builder
	b.Grow(len(code))
	depth := 0
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch c {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
		}
		b.WriteByte(c)
	}
	if depth == 0 {
		return b.String()
	}
	return strings.TrimRight(b.String(), " \t\n") + "\n" + strings.Repeat("}", depth)
}

// Verify checks the invariants every returned component must satisfy.
func Verify(code string) error {
	if n := len(reactImports(code)); n != 1 {
		return fmt.Errorf("%w: %d react imports", ErrMalformed, n)
	}
	if !exportDefault.MatchString(code) {
		return fmt.Errorf("%w: missing default export", ErrMalformed)
	}
	if open, closed := strings.Count(code, "{"), strings.Count(code, "}"); open != closed {
		return fmt.Errorf("%w: %d opening and %d closing braces", ErrMalformed, open, closed)
	}
	return nil
}
