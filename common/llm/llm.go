package llm

import (
	"context"
	"fmt"
)

// Provider constants for completion backend selection.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds completion client configuration.
type Config struct {
	Provider  string // "openai" or "gemini"
	APIKey    string // Required: API key for the provider
	BaseURL   string // Optional: custom API endpoint
	Model     string // Model name (e.g., "gpt-4o-mini", "gemini-2.0-flash")
	MaxTokens int    // Optional: response token cap
}

// Message represents a conversation message sent to the backend.
type Message struct {
	Role    string // "system", "user", "assistant"
	Content string
}

// CompletionClient is a black-box text completion backend. The system
// instructions are passed separately from the ordered messages; an empty
// system string means no system instructions (used for summarization).
type CompletionClient interface {
	Complete(ctx context.Context, system string, messages []Message) (string, error)
	Model() string
}

// NewCompletionClient creates a CompletionClient for the configured provider.
// The provider is fixed at construction time; call sites never branch on it.
// Defaults to Gemini if no provider is specified.
func NewCompletionClient(cfg Config) (CompletionClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	provider := cfg.Provider
	if provider == "" {
		provider = ProviderGemini
	}

	switch provider {
	case ProviderOpenAI:
		return newOpenAIClient(cfg)
	case ProviderGemini:
		return newGeminiClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
