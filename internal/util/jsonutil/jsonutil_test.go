package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarshalNoEscapeKeepsMarkup(t *testing.T) {
	out, err := MarshalNoEscape(map[string]string{"preview_html": "<b>a & b</b>"})
	require.NoError(t, err)
	require.Equal(t, `{"preview_html":"<b>a & b</b>"}`, string(out))
}

func TestUnmarshalFlexUnwrapsQuotedObject(t *testing.T) {
	var got struct {
		Name string `json:"name"`
	}
	require.NoError(t, UnmarshalFlex([]byte(`"{\"name\":\"card\"}"`), &got))
	require.Equal(t, "card", got.Name)
}

func TestUnmarshalFlexReturnsOriginalError(t *testing.T) {
	var got map[string]any
	require.Error(t, UnmarshalFlex([]byte(`{"name":`), &got))
	require.Error(t, UnmarshalFlex([]byte(`"plain text"`), &got))
}
