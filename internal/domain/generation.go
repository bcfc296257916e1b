package domain

import (
	"errors"
	"time"
)

// Generation sources.
const (
	SourceModel    = "model"
	SourceFallback = "fallback"
)

// ErrMissingAPIKey is returned by upstream clients when no usable key is
// configured.
var ErrMissingAPIKey = errors.New("upstream api key is not configured")

// GenerationLog is one generation outcome kept for auditing.
type GenerationLog struct {
	RequestID  string    `json:"request_id"`
	Prompt     string    `json:"prompt"`
	Platform   string    `json:"platform"`
	Source     string    `json:"source"`
	Stage      string    `json:"stage,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}
