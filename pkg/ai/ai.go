// Package ai holds the chat completion and embedding providers.
// Components receive them as the ChatModel and Embedder capabilities.
package ai

import (
	"context"
	"fmt"
)

// Role of a chat message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat message
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest describes one chat completion call. When Schema is set
// the provider is asked for JSON output matching it.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	SchemaName  string
	Schema      map[string]interface{}
}

// Usage reports token accounting for a completion
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the provider answer
type Completion struct {
	Content string
	Model   string
	Usage   *Usage
}

// ChatModel generates chat completions
type ChatModel interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
	ModelName() string
}

// Embedder turns texts into vectors, one per input, in input order
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
	Dimensions() int
}

// StatusError is returned when a provider answers with a non-2xx status
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Retryable reports whether the call may succeed when repeated
func (e *StatusError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
