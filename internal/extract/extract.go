// Package extract locates the JSON component object inside a model reply.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"component-generator/internal/util/jsonutil"
)

var (
	ErrEmpty  = errors.New("extract: empty reply")
	ErrNoJSON = errors.New("extract: no json object found")
)

// Object is a decoded JSON object from the model reply.
type Object map[string]any

// String returns the trimmed string value for key, or "" when the key is
// absent or not a string.
func (o Object) String(key string) string {
	v, ok := o[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// Extract returns the first JSON object found in raw. A fenced block tagged
// json (or untagged) is preferred; otherwise the first brace-delimited object
// anywhere in the text is used. Truncated or slightly malformed objects are
// repaired before decoding.
func Extract(raw string) (Object, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmpty
	}
	for _, block := range fencedBlocks([]byte(raw)) {
		if candidate, ok := firstObject(block); ok {
			return decode(candidate)
		}
	}
	if candidate, ok := firstObject(raw); ok {
		return decode(candidate)
	}
	return nil, ErrNoJSON
}

// fencedBlocks returns the bodies of json or untagged fenced code blocks in
// document order.
func fencedBlocks(src []byte) []string {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	var blocks []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		lang := strings.ToLower(string(fence.Language(src)))
		if lang != "" && lang != "json" {
			return ast.WalkSkipChildren, nil
		}
		var b strings.Builder
		lines := fence.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(src))
		}
		blocks = append(blocks, b.String())
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

// firstObject returns the text from the first '{' to its matching '}'.
// Braces inside JSON strings are ignored. When the object never closes the
// remainder of s is returned so the repair step can complete it.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return strings.TrimSpace(s[start:]), true
}

func decode(candidate string) (Object, error) {
	var obj Object
	if err := jsonutil.UnmarshalFlex([]byte(candidate), &obj); err == nil && obj != nil {
		return obj, nil
	}
	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return nil, fmt.Errorf("extract: repair json: %w", err)
	}
	obj = nil
	if err := json.Unmarshal([]byte(repaired), &obj); err != nil {
		return nil, fmt.Errorf("extract: decode repaired json: %w", err)
	}
	if obj == nil {
		return nil, ErrNoJSON
	}
	return obj, nil
}
