// internal/providers/provider.go

// Package providers defines the interfaces for interacting with different LLM
// vendors. It provides a common abstraction layer for chat completions and
// model management, regardless of the underlying vendor implementation
// (OpenAI, Anthropic, Gemini, Ollama).
package providers

import (
	"context"
	"fmt"
)

// Message roles used across all providers. Vendors that spell roles
// differently on the wire map to and from these values at their boundary.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateOptions carries per-request overrides. Zero values fall back to the
// provider's configured defaults (temperature 0.7, max tokens 1000).
type GenerateOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// ResolveModel returns the override model or the provider default.
func (o GenerateOptions) ResolveModel(def string) string {
	if o.Model != "" {
		return o.Model
	}
	return def
}

// ResolveTemperature returns the override temperature or the provider default.
func (o GenerateOptions) ResolveTemperature(def float64) float64 {
	if o.Temperature > 0 {
		return o.Temperature
	}
	return def
}

// ResolveMaxTokens returns the override token cap or the provider default.
func (o GenerateOptions) ResolveMaxTokens(def int) int {
	if o.MaxTokens > 0 {
		return o.MaxTokens
	}
	return def
}

// Usage reports token counters for a completion. Counters are zero-filled
// when the vendor does not report them.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the normalized result of one chat-completion call.
type Completion struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Usage    Usage  `json:"usage"`
}

// ProviderError is the tagged failure value returned by adapters. It carries
// the vendor's error message, or a generic transport description, together
// with the provider identifier so callers can report which backend failed.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Unwrap exposes the underlying transport error, if any.
func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError builds a tagged adapter failure.
func NewProviderError(provider, message string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Message: message, Err: err}
}

// ChatProvider is the interface every vendor adapter implements. Adapters
// make exactly one outbound HTTP call per GenerateResponse invocation, apply
// a bounded timeout, and return failures as *ProviderError values rather than
// panicking.
type ChatProvider interface {
	// GenerateResponse sends the ordered message sequence to the vendor and
	// returns the normalized completion.
	GenerateResponse(ctx context.Context, messages []ChatMessage, opts GenerateOptions) (*Completion, error)
	// ValidateConnection performs a minimal call to confirm credentials and
	// reachability.
	ValidateConnection(ctx context.Context) error
	// ListModels returns the model identifiers the vendor reports as available.
	ListModels(ctx context.Context) ([]string, error)
	// ProviderName returns the stable provider identifier (e.g. "openai").
	ProviderName() string
}
