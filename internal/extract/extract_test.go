package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractFencedJSON(t *testing.T) {
	raw := "Here is your component:\n\n```json\n" +
		`{"visual_description": "A red button", "preview_html": "<button>Go</button>", "component_code": "const A = () => { return (<b/>); };"}` +
		"\n```\n\nEnjoy!"

	obj, err := Extract(raw)
	require.NoError(t, err)
	require.Equal(t, "A red button", obj.String("visual_description"))
	require.Equal(t, "<button>Go</button>", obj.String("preview_html"))
	require.Equal(t, "const A = () => { return (<b/>); };", obj.String("component_code"))
}

func TestExtractPrefersJSONFenceOverOtherLanguages(t *testing.T) {
	raw := "```jsx\nconst A = () => { return null; };\n```\n\n```\n{\"visual_description\": \"second\"}\n```\n"

	obj, err := Extract(raw)
	require.NoError(t, err)
	require.Equal(t, "second", obj.String("visual_description"))
}

func TestExtractFirstFenceWins(t *testing.T) {
	raw := "```json\n{\"visual_description\": \"first\"}\n```\n```json\n{\"visual_description\": \"second\"}\n```"

	obj, err := Extract(raw)
	require.NoError(t, err)
	require.Equal(t, "first", obj.String("visual_description"))
}

func TestExtractBareObjectWithNestedBraces(t *testing.T) {
	raw := `Sure! {"component_code": "const Card = () => { const s = {a: '}'}; return s; };", "meta": {"v": 1}} trailing {"x": 2}`

	obj, err := Extract(raw)
	require.NoError(t, err)
	require.Equal(t, "const Card = () => { const s = {a: '}'}; return s; };", obj.String("component_code"))
	require.Contains(t, obj, "meta")
	require.NotContains(t, obj, "x")
}

func TestExtractRepairsTruncatedObject(t *testing.T) {
	raw := "```json\n{\"visual_description\": \"A card\", \"preview_html\": \"<div>x</div>\"\n"

	obj, err := Extract(raw)
	require.NoError(t, err)
	require.Equal(t, "A card", obj.String("visual_description"))
	require.Equal(t, "<div>x</div>", obj.String("preview_html"))
}

func TestExtractUnwrapsDoubleEncodedObject(t *testing.T) {
	obj, err := decode(`"{\"visual_description\": \"quoted\"}"`)
	require.NoError(t, err)
	require.Equal(t, "quoted", obj.String("visual_description"))
}

func TestExtractFailures(t *testing.T) {
	_, err := Extract("   ")
	require.ErrorIs(t, err, ErrEmpty)

	_, err = Extract("I cannot help with that request.")
	require.ErrorIs(t, err, ErrNoJSON)
}

func TestObjectStringIgnoresNonStrings(t *testing.T) {
	obj := Object{"a": 1, "b": "  text ", "c": nil}
	require.Equal(t, "", obj.String("a"))
	require.Equal(t, "text", obj.String("b"))
	require.Equal(t, "", obj.String("c"))
	require.Equal(t, "", obj.String("missing"))
}

func TestFirstObject(t *testing.T) {
	got, ok := firstObject(`x {"a": "\"}"} y`)
	require.True(t, ok)
	require.Equal(t, `{"a": "\"}"}`, got)

	_, ok = firstObject("no braces")
	require.False(t, ok)
}
