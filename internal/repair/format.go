package repair

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	importStmt    = regexp.MustCompile(`import\s+[^;]+;`)
	functionDecl  = regexp.MustCompile(`function\s+([A-Za-z_][A-Za-z0-9_]*)\s*(\([^)]*\))\s*\{`)
	arrowDecl     = regexp.MustCompile(`const\s+([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(\([^)]*\)|[A-Za-z_][A-Za-z0-9_]*)\s*=>\s*\{`)
	returnParen   = regexp.MustCompile(`return\s*\(`)
	componentEnd  = regexp.MustCompile(`^\s*;?\s*\}\s*;?`)
)

// Format reflows single-line component code. Code that imports React and
// has a return statement is rebuilt around its component declaration;
// anything else goes through a generic line breaker.
func Format(code string) string {
	if reactImportStmt.MatchString(code) && strings.Contains(code, "return") {
		if out, ok := formatStructural(code); ok {
			return out
		}
	}
	return formatGeneral(code)
}

type declaration struct {
	arrow  bool
	name   string
	params string
	start  int
	end    int
}

func findDeclaration(code string) (declaration, bool) {
	var best declaration
	found := false
	if m := functionDecl.FindStringSubmatchIndex(code); m != nil {
		best = declaration{name: code[m[2]:m[3]], params: code[m[4]:m[5]], start: m[0], end: m[1]}
		found = true
	}
	if m := arrowDecl.FindStringSubmatchIndex(code); m != nil && (!found || m[0] < best.start) {
		params := code[m[4]:m[5]]
		if !strings.HasPrefix(params, "(") {
			params = "(" + params + ")"
		}
		best = declaration{arrow: true, name: code[m[2]:m[3]], params: params, start: m[0], end: m[1]}
		found = true
	}
	return best, found
}

func formatStructural(code string) (string, bool) {
	code = strings.TrimSpace(whitespaceRun.ReplaceAllString(code, " "))

	imports := importStmt.FindAllString(code, -1)
	for _, imp := range imports {
		code = strings.Replace(code, imp, "", 1)
	}

	decl, ok := findDeclaration(code)
	if !ok {
		return "", false
	}
	body := code[decl.end:]

	retStart, parenOpen, ok := topLevelReturn(body)
	if !ok {
		return "", false
	}
	parenClose := matchParen(body, parenOpen)
	jsx := body[parenOpen+1:]
	rest := ""
	if parenClose >= 0 {
		jsx = body[parenOpen+1 : parenClose]
		rest = body[parenClose+1:]
		if loc := componentEnd.FindStringIndex(rest); loc != nil {
			rest = rest[loc[1]:]
		}
	}

	var b strings.Builder
	b.WriteString(strings.Join(imports, "\n"))
	b.WriteString("\n\n")
	before, modifier := splitExportModifier(strings.TrimSpace(code[:decl.start]))
	if before != "" {
		b.WriteString(before)
		b.WriteString("\n\n")
	}
	b.WriteString(modifier)
	if decl.arrow {
		b.WriteString("const " + decl.name + " = " + decl.params + " => {\n")
	} else {
		b.WriteString("function " + decl.name + decl.params + " {\n")
	}
	if vars := formatVariables(body[:retStart]); vars != "" {
		b.WriteString(vars)
		b.WriteString("\n\n")
	}
	b.WriteString("  return (\n")
	for _, line := range strings.Split(formatJSX(jsx), "\n") {
		if line == "" {
			continue
		}
		b.WriteString("    " + line + "\n")
	}
	if decl.arrow {
		b.WriteString("  );\n};")
	} else {
		b.WriteString("  );\n}")
	}
	if rest = strings.TrimSpace(rest); rest != "" {
		b.WriteString("\n\n")
		b.WriteString(formatGeneral(rest))
	}
	return b.String(), true
}

var exportModifier = regexp.MustCompile(`(?:^|[;}\s])(export(?:\s+default)?)$`)

// splitExportModifier moves a trailing "export" or "export default" off the
// preceding text so it stays on the declaration line.
func splitExportModifier(before string) (rest, modifier string) {
	m := exportModifier.FindStringSubmatchIndex(before)
	if m == nil {
		return before, ""
	}
	return strings.TrimSpace(before[:m[2]]), before[m[2]:m[3]] + " "
}

// topLevelReturn finds the first "return (" outside nested blocks of the
// component body and the offset of its opening parenthesis.
func topLevelReturn(body string) (start, paren int, ok bool) {
	depth := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '{':
			depth++
		case '}':
			depth--
		case 'r':
			if depth != 0 {
				continue
			}
			if i > 0 && isIdentByte(body[i-1]) {
				continue
			}
			if loc := returnParen.FindStringIndex(body[i:]); loc != nil && loc[0] == 0 {
				return i, i + loc[1] - 1, true
			}
		}
	}
	return 0, 0, false
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// matchParen returns the index of the parenthesis closing the one at open,
// or -1 when the input ends first.
func matchParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

var (
	afterOpenTag    = regexp.MustCompile(`(<[^/<>][^<>]*>)([^<\s])`)
	beforeCloseTag  = regexp.MustCompile(`([^>\s])\s*(</[^>]+>)`)
	betweenTags     = regexp.MustCompile(`>\s*<`)
	selfClosingLine = regexp.MustCompile(`/>$`)
	openingLine     = regexp.MustCompile(`^<[A-Za-z]`)
)

// formatJSX puts tags and text on their own lines and indents by tag depth.
func formatJSX(jsx string) string {
	jsx = strings.TrimSpace(whitespaceRun.ReplaceAllString(jsx, " "))
	jsx = betweenTags.ReplaceAllString(jsx, ">\n<")
	jsx = afterOpenTag.ReplaceAllString(jsx, "$1\n$2")
	jsx = beforeCloseTag.ReplaceAllString(jsx, "$1\n$2")

	var out []string
	indent := 0
	for _, line := range strings.Split(jsx, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "</") && indent > 0 {
			indent--
		}
		out = append(out, strings.Repeat("  ", indent)+line)
		if openingLine.MatchString(line) && !selfClosingLine.MatchString(line) && !strings.Contains(line, "</") {
			indent++
		}
	}
	return strings.Join(out, "\n")
}

// formatVariables puts each top-level statement before the return on its
// own line with one level of indentation.
func formatVariables(text string) string {
	var out []string
	var cur strings.Builder
	depth := 0
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, "  "+s)
		}
		cur.Reset()
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		cur.WriteByte(c)
		switch c {
		case '{', '(', '[':
			depth++
		case '}', ')', ']':
			if depth > 0 {
				depth--
			}
		case ';':
			if depth == 0 {
				flush()
			}
		}
	}
	flush()
	return strings.Join(out, "\n")
}

var (
	generalImport    = regexp.MustCompile(`(import [^;]+;)`)
	generalOpenBrace = regexp.MustCompile(`\{`)
	generalClose     = regexp.MustCompile(`\}`)
	generalSemicolon = regexp.MustCompile(`;`)
	generalReturn    = regexp.MustCompile(`return\s*\(`)
	generalOpenTag   = regexp.MustCompile(`(<[a-zA-Z][^<>]*>)([^<])`)
	generalCloseTag  = regexp.MustCompile(`(</[a-zA-Z][^>]*>)`)
	closerLine       = regexp.MustCompile(`^[})]`)
	openerLine       = regexp.MustCompile(`([{(]|<[a-zA-Z][^/]*>)$`)
)

// formatGeneral is the fallback line breaker: newlines around braces,
// statements and tags, then indentation by opener/closer lines.
func formatGeneral(code string) string {
	code = strings.TrimSpace(whitespaceRun.ReplaceAllString(code, " "))
	code = generalImport.ReplaceAllString(code, "$1\n")
	code = generalOpenBrace.ReplaceAllString(code, "{\n")
	code = generalClose.ReplaceAllString(code, "\n}")
	code = generalSemicolon.ReplaceAllString(code, ";\n")
	code = generalReturn.ReplaceAllString(code, "\nreturn (\n")
	code = generalOpenTag.ReplaceAllString(code, "$1\n$2")
	code = generalCloseTag.ReplaceAllString(code, "\n$1")

	var out []string
	indent := 0
	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if closerLine.MatchString(line) && indent > 0 {
			indent--
		}
		out = append(out, strings.Repeat("  ", indent)+line)
		if openerLine.MatchString(line) {
			indent++
		}
	}
	return strings.Join(out, "\n")
}
