package jsonutil

import (
	"bytes"
	"encoding/json"
	"strings"
)

// MarshalNoEscape encodes v without turning <, > and & into < style
// escapes, so HTML and JSX fields stay readable on the wire.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalFlex decodes raw into v. When the payload is itself a quoted JSON
// string (a double-encoded object) it is unwrapped once before retrying.
func UnmarshalFlex(raw []byte, v any) error {
	err := json.Unmarshal(raw, v)
	if err == nil {
		return nil
	}
	var inner string
	if err2 := json.Unmarshal(raw, &inner); err2 != nil {
		return err
	}
	inner = strings.TrimSpace(inner)
	if !strings.HasPrefix(inner, "{") {
		return err
	}
	return json.Unmarshal([]byte(inner), v)
}
