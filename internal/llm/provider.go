package llm

import (
	"context"
	"encoding/json"
)

// A Provider turns one prompt into one structured JSON document using a
// single vendor account. Providers are built per call from the learner's own
// API key, so they hold no state beyond their client.
//
// Generate fails with one of the typed errors in errors.go: ErrAuth,
// ErrRateLimit, ErrRequestRejected, ErrProviderUnavailable,
// ErrMaxTokensExceeded or ErrInvalidResponse.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the configured model, as recorded on LLM events.
	ModelID() string
}

// Request is a single-turn generation: a system prompt describing the task
// (topic graph or lesson) and the learner-specific prompt in Messages.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, is requested through the vendor's structured output
	// feature and enforced on the reply.
	Schema *Schema

	// MaxTokens caps the reply. Zero leaves the vendor default.
	MaxTokens int

	// Temperature is the sampling temperature, 0 to 1.
	Temperature float64
}

// UserPrompt wraps prompt as the only message of a request.
func UserPrompt(prompt string) []Message {
	return []Message{{Role: RoleUser, Content: prompt}}
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the sender of a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names a JSON Schema document, e.g. "topic-graph" or "topic-lesson".
// Name doubles as the Anthropic tool name and the OpenAI schema name, and
// keys the compiled schema cache, so it must be unique per Definition.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Stop reasons, normalized across vendors.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Response is a successful generation.
type Response struct {
	// Content is the schema-checked JSON document, or the unchecked reply
	// text when the request had no Schema.
	Content json.RawMessage
	Usage   Usage

	// Model is the model that served the request, which may differ from
	// ModelID by a version suffix.
	Model      string
	StopReason string
}

// Usage is the token count of one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
