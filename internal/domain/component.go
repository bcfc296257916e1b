package domain

import "strings"

// ComponentRecord is the generated UI component returned to the front-end.
type ComponentRecord struct {
	VisualDescription string `json:"visual_description"`
	PreviewHTML       string `json:"preview_html"`
	ComponentCode     string `json:"component_code"`
}

// Complete reports whether all three fields carry non-blank content.
func (r ComponentRecord) Complete() bool {
	return strings.TrimSpace(r.VisualDescription) != "" &&
		strings.TrimSpace(r.PreviewHTML) != "" &&
		strings.TrimSpace(r.ComponentCode) != ""
}

// Response statuses.
const (
	StatusSuccess = "success"
	StatusOK      = "ok"
)

// GenerateResponse is the body of POST /generate-component.
type GenerateResponse struct {
	Status    string           `json:"status"`
	Component *ComponentRecord `json:"component"`
	APIDebug  map[string]any   `json:"api_debug,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Fixed messages for the informational routes.
const (
	WelcomeMessage = "Welcome to the UI Component Generator API"
	HealthMessage  = "Server is running"
)

// WelcomeResponse is the body of GET /.
type WelcomeResponse struct {
	Message string `json:"message"`
}
