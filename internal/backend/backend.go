// Package backend defines the completion API the bot sends prompts to.
package backend

import (
	"context"
	"errors"
	"fmt"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a conversation message for API backends.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// InvokeOptions configures a backend invocation.
type InvokeOptions struct {
	// Model selects the model. Empty means the backend default.
	Model string `json:"model,omitempty"`

	// MaxTokens is the maximum response tokens.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0-2.0). Nil means the backend
	// default; zero is a valid setting.
	Temperature *float64 `json:"temperature,omitempty"`
}

// InvokeResult contains the backend response.
type InvokeResult struct {
	// Content is the response text.
	Content string `json:"content"`

	// Model is the actual model used.
	Model string `json:"model"`

	// InputTokens is the token count for the prompt.
	InputTokens int `json:"input_tokens"`

	// OutputTokens is the token count for the response.
	OutputTokens int `json:"output_tokens"`

	// TotalTokens is what the provider bills, prompt plus completion.
	TotalTokens int `json:"total_tokens"`

	// FinishReason indicates why generation stopped.
	// Common values: "stop", "length", "content_filter"
	FinishReason string `json:"finish_reason"`
}

// CostEstimate contains pricing information.
type CostEstimate struct {
	InputCost  float64 `json:"input_cost"`
	OutputCost float64 `json:"output_cost"`
	TotalCost  float64 `json:"total_cost"`

	// Currency is the currency code (always "USD").
	Currency string `json:"currency"`

	// Model is the model used for the estimate.
	Model string `json:"model"`
}

// Completer is the interface the bot needs from a model provider.
type Completer interface {
	// Name returns the backend identifier (e.g. "openai").
	Name() string

	// Invoke sends the conversation and returns the generated reply.
	Invoke(ctx context.Context, messages []Message, opts InvokeOptions) (*InvokeResult, error)
}

// ProviderError is a failure reported by the model provider itself.
// Its message is meant to be shown to the end user as is.
type ProviderError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("API error (%s): %s", e.Type, e.Message)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// IsProviderError reports whether err came from the provider rather than the transport.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// Prompt builds the usual two-message conversation: a system prompt and the user's text.
func Prompt(system, user string) []Message {
	msgs := make([]Message, 0, 2)
	if system != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: system})
	}
	return append(msgs, Message{Role: RoleUser, Content: user})
}
