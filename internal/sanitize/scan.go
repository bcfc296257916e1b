package sanitize

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// element is a top-level element located by byte offsets into the scanned
// string. For void or self-closing tags the inner span is empty.
type element struct {
	name       string
	start, end int
	innerStart int
	innerEnd   int
	closed     bool
}

func (e element) startTag(s string) string {
	if e.innerStart == e.end && e.innerEnd == e.end {
		return s[e.start:e.end]
	}
	return s[e.start:e.innerStart]
}

type frame struct {
	name       string
	start      int
	innerStart int
}

// scanTopLevel tokenizes s and returns its top-level elements in order.
// hasText reports non-whitespace text outside any element. Elements left open
// at the end of input are returned with closed=false and end=len(s).
func scanTopLevel(s string) (elems []element, hasText bool, err error) {
	z := html.NewTokenizer(strings.NewReader(s))
	var stack []frame
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				break
			}
			return nil, false, fmt.Errorf("sanitize: tokenize: %w", z.Err())
		}
		pos := offset
		offset += len(z.Raw())
		tok := z.Token()

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			if tt == html.SelfClosingTagToken || voidElements[tok.Data] {
				if len(stack) == 0 {
					elems = append(elems, element{
						name: tok.Data, start: pos, end: offset,
						innerStart: offset, innerEnd: offset, closed: true,
					})
				}
				continue
			}
			stack = append(stack, frame{name: tok.Data, start: pos, innerStart: offset})
		case html.EndTagToken:
			idx := -1
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].name == tok.Data {
					idx = i
					break
				}
			}
			if idx < 0 {
				continue
			}
			f := stack[idx]
			stack = stack[:idx]
			if idx == 0 {
				elems = append(elems, element{
					name: f.name, start: f.start, end: offset,
					innerStart: f.innerStart, innerEnd: pos, closed: true,
				})
			}
		case html.TextToken:
			if len(stack) == 0 && strings.TrimSpace(tok.Data) != "" {
				hasText = true
			}
		}
	}
	if len(stack) > 0 {
		f := stack[0]
		elems = append(elems, element{
			name: f.name, start: f.start, end: len(s),
			innerStart: f.innerStart, innerEnd: len(s),
		})
	}
	return elems, hasText, nil
}

// hasTag reports whether s contains at least one start or self-closing tag.
func hasTag(s string) bool {
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			return true
		}
	}
}
