// Package llm provides the minimal chat-completion client the skills need:
// one synchronous request, one text response, token usage back. Supported
// providers are Anthropic and any OpenAI-compatible endpoint.
package llm

import (
	"context"
	"os"

	"github.com/pkg/errors"
)

// Default models per provider. Overridable per run with --model.
const (
	DefaultAnthropicModel = "claude-sonnet-4-6"
	DefaultOpenAIModel    = "gpt-4o-mini"

	defaultMaxTokens = 4096
)

// Usage holds the token counts of one or more completion calls.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// TotalTokens returns input plus output tokens.
func (u Usage) TotalTokens() int {
	return u.InputTokens + u.OutputTokens
}

// Add accumulates another call's usage.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// Request is a single completion call.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Client is implemented per provider.
type Client interface {
	// Complete sends one request and returns the response text and usage.
	Complete(ctx context.Context, req Request) (string, Usage, error)
	// Model returns the model name requests are sent to.
	Model() string
}

// Config selects and configures a provider.
type Config struct {
	// Provider is "anthropic" or "openai". An empty provider resolves to
	// anthropic when ANTHROPIC_API_KEY is set, openai otherwise.
	Provider string
	// Model overrides the provider default.
	Model string
	// BaseURL overrides the endpoint for OpenAI-compatible providers.
	BaseURL string
	// APIKey overrides the provider's environment variable.
	APIKey string
}

// NewClient validates the config and returns the provider client. A missing
// API key is reported here so skills fail before reading any input.
func NewClient(cfg Config) (Client, error) {
	provider := cfg.Provider
	if provider == "" {
		if os.Getenv("ANTHROPIC_API_KEY") != "" {
			provider = "anthropic"
		} else {
			provider = "openai"
		}
	}

	switch provider {
	case "anthropic":
		return newAnthropicClient(cfg)
	case "openai":
		return newOpenAIClient(cfg)
	default:
		return nil, errors.Errorf("unsupported provider %q (anthropic or openai)", provider)
	}
}

func resolveAPIKey(explicit, envVar string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}
	return "", errors.Errorf("%s environment variable is required", envVar)
}
