package domain

// Chat roles accepted by the upstream providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is the provider-agnostic chat message shape used by the prompt
// builders and the upstream integrations.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
