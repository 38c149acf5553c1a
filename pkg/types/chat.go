// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// PaperRef identifies the paper a per-paper chat is about. Field names follow
// the wire contract of the chat endpoints.
type PaperRef struct {
	Title      string   `json:"title"`
	Authors    string   `json:"authors"`
	Journal    string   `json:"journal"`
	Year       string   `json:"year"`
	Categories []string `json:"categories"`
	Status     string   `json:"status,omitempty"`
}

// ChatRequest is the body accepted by both chat endpoints. Paper is present
// only for the per-paper endpoint.
type ChatRequest struct {
	Message             string    `json:"message"`
	ConversationHistory []Message `json:"conversationHistory"`
	Paper               *PaperRef `json:"paper,omitempty"`
}

// ChatResponse is the success body of a chat endpoint.
type ChatResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is the body of every non-200 chat response.
type ErrorResponse struct {
	Error string `json:"error"`
}
