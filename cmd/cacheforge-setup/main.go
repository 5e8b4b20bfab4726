package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/gateway"
	"github.com/anvil-ai/cacheforge-skills/pkg/openclaw"
	"github.com/anvil-ai/cacheforge-skills/pkg/skillcmd"
)

var rootCmd = skillcmd.NewRoot(
	"cacheforge-setup",
	"Provision and connect a CacheForge account",
	`Get from zero to a working CacheForge gateway key: provision an account,
validate the key, and wire the gateway into the OpenClaw CLI.

The gateway base URL comes from --base-url, the CACHEFORGE_BASE_URL
environment variable, or the hosted deployment.`,
)

func main() {
	rootCmd.PersistentFlags().String("base-url", "", "CacheForge base URL (defaults to CACHEFORGE_BASE_URL or the hosted deployment)")

	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(openclawSnippetCmd)
	rootCmd.AddCommand(openclawApplyCmd)
	rootCmd.AddCommand(openclawValidateCmd)

	skillcmd.Execute(rootCmd)
}

func baseURLFromFlags(cmd *cobra.Command) string {
	explicit, _ := cmd.Flags().GetString("base-url")
	return gateway.ResolveBaseURL(explicit)
}

// resolveOpenclawModels picks the example models for the snippet and apply
// commands the way the CacheForge console does: an explicit --model-id wins,
// otherwise the configured upstream decides, with OpenRouter accounts
// filtered against the models the gateway actually exposes. The client may be
// nil when no key is available; curated defaults are used then.
func resolveOpenclawModels(ctx context.Context, client *gateway.Client, modelID, modelName string) []openclaw.Model {
	if modelID != "" {
		name := strings.TrimSpace(modelName)
		if name == "" {
			name = modelID
		}
		return []openclaw.Model{{ID: modelID, Name: name}}
	}

	var kind, upstreamBase string
	var available []string
	if client != nil {
		if status, err := client.GetUpstream(ctx); err == nil && status.Configured && status.Upstream != nil {
			kind = status.Upstream.Kind
			upstreamBase = status.Upstream.BaseURL
			if strings.EqualFold(kind, gateway.KindOpenRouter) {
				available = client.ListModelIDs(ctx)
			}
		}
	}

	models := openclaw.DefaultModels(kind, upstreamBase, available)
	if modelName != "" && len(models) > 0 {
		models[0].Name = strings.TrimSpace(modelName)
	}
	return models
}
