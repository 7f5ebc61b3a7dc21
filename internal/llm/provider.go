package llm

import (
	"context"
	"strings"
)

// Provider defines the interface for generative completion collaborators.
// Output is untrusted text: callers must parse-and-fallback, never assume
// valid JSON.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete generates a completion for the given request
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest contains the input for a generative completion
type CompletionRequest struct {
	// Prompt is the user-level prompt text
	Prompt string

	// System is an optional system instruction
	System string

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature controls sampling randomness
	Temperature float32
}

// CompletionResponse contains the generated output
type CompletionResponse struct {
	// Text is the raw generated text
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds generative provider configuration
type Config struct {
	// Provider name: "gemini", "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for Gemini/OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, mock servers)
	BaseURL string

	// Timeout for API requests in seconds
	Timeout int

	// MaxTokens default for response generation
	MaxTokens int

	// Temperature default for sampling
	Temperature float32

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "",
		Model:       "",
		Timeout:     30,
		MaxTokens:   2000,
		Temperature: 0.1,
	}
}

// StripCodeFences removes a surrounding markdown code fence from model
// output, which several providers wrap around requested JSON.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
