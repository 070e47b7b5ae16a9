package interfaces

import (
	"context"
	"encoding/json"

	"github.com/nanaosei-dev/chatvendor/internal/domain"
)

// ToolDef is a function tool schema passed to the model backend.
type ToolDef struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is a structured action the model requested instead of text.
type ToolCall struct {
	Name      string
	Arguments json.RawMessage
}

// ChatResponse carries either plain text or a tool call.
type ChatResponse struct {
	Text     string
	ToolCall *ToolCall
}

// ChatModel is the language-model backend. Implementations own credential
// rotation and fail-over; a returned error means the whole pool was
// exhausted.
type ChatModel interface {
	Chat(ctx context.Context, system string, history []domain.Turn, tools []ToolDef) (*ChatResponse, error)
}
