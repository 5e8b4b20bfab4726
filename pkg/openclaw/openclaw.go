// Package openclaw wires a CacheForge provider into the OpenClaw agent CLI.
// The snippet shape matches what the CacheForge console emits so copy/paste
// and automated apply stay interchangeable.
package openclaw

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultConfigPath is where the OpenClaw CLI keeps its config.
const DefaultConfigPath = "~/.openclaw/openclaw.json"

// ProviderName keys the provider block inside models.providers.
const ProviderName = "cacheforge"

// Model is one entry in a provider's model list.
type Model struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Popular OpenRouter model ids, best first. Used when the account proxies to
// OpenRouter and model discovery is unavailable or empty.
var openRouterCandidates = []Model{
	{ID: "anthropic/claude-opus-4.6", Name: "OpenRouter: Claude Opus 4.6"},
	{ID: "openai/gpt-5.2", Name: "OpenRouter: GPT-5.2"},
	{ID: "anthropic/claude-sonnet-4.5", Name: "OpenRouter: Claude Sonnet 4.5"},
	{ID: "moonshotai/kimi-k2.5", Name: "OpenRouter: Kimi K2.5"},
}

// DefaultModels picks example models for the configured upstream. For
// OpenRouter upstreams the curated list is filtered against the ids the
// gateway actually exposes, when known.
func DefaultModels(upstreamKind, upstreamBaseURL string, availableIDs []string) []Model {
	kind := strings.ToLower(strings.TrimSpace(upstreamKind))
	baseURL := strings.ToLower(strings.TrimSpace(upstreamBaseURL))

	switch {
	case kind == "custom" && strings.Contains(baseURL, "fireworks.ai"):
		return []Model{{ID: "accounts/fireworks/models/kimi-k2p5", Name: "Fireworks: Kimi K2.5"}}
	case kind == "openrouter":
		models := openRouterCandidates
		if len(availableIDs) > 0 {
			available := make(map[string]bool, len(availableIDs))
			for _, id := range availableIDs {
				available[id] = true
			}
			var filtered []Model
			for _, m := range openRouterCandidates {
				if available[m.ID] {
					filtered = append(filtered, m)
				}
			}
			if len(filtered) > 0 {
				models = filtered
			} else {
				// Discovery worked but matched nothing curated.
				models = openRouterCandidates[:2]
			}
		}
		return models
	case kind == "anthropic":
		return []Model{{ID: "claude-opus-4-6-latest", Name: "Claude Opus 4.6"}}
	default:
		return []Model{{ID: "gpt-5.2", Name: "GPT-5.2"}}
	}
}

// Provider is the models.providers.cacheforge block. The API key is left as
// an env reference so secrets stay out of openclaw.json.
type Provider struct {
	BaseURL string  `json:"baseUrl"`
	APIKey  string  `json:"apiKey"`
	API     string  `json:"api"`
	Models  []Model `json:"models"`
}

// NewProvider builds the provider block for a gateway base URL.
func NewProvider(gatewayBaseURL string, models []Model) Provider {
	return Provider{
		BaseURL: gatewayBaseURL + "/v1",
		APIKey:  "${CACHEFORGE_API_KEY}",
		API:     "openai-completions",
		Models:  models,
	}
}

// Snippet is the full paste-ready config fragment.
type Snippet struct {
	Models struct {
		Mode      string              `json:"mode"`
		Providers map[string]Provider `json:"providers"`
	} `json:"models"`
	Agents struct {
		Defaults struct {
			Model struct {
				Primary string `json:"primary"`
			} `json:"model"`
		} `json:"defaults"`
	} `json:"agents"`
}

// BuildSnippet assembles the snippet with the given primary model.
func BuildSnippet(gatewayBaseURL string, models []Model, primaryModelID string) Snippet {
	var snippet Snippet
	snippet.Models.Mode = "merge"
	snippet.Models.Providers = map[string]Provider{
		ProviderName: NewProvider(gatewayBaseURL, models),
	}
	snippet.Agents.Defaults.Model.Primary = ProviderName + "/" + primaryModelID
	return snippet
}

// ConfigPath resolves the OpenClaw config location: explicit flag, then the
// OPENCLAW_CONFIG_PATH env var, then the default, with ~ expanded.
func ConfigPath(explicit string) string {
	path := strings.TrimSpace(explicit)
	if path == "" {
		path = os.Getenv("OPENCLAW_CONFIG_PATH")
	}
	if path == "" {
		path = DefaultConfigPath
	}
	return expandHomePath(path)
}

func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
