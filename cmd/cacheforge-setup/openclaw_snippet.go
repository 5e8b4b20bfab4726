package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/gateway"
	"github.com/anvil-ai/cacheforge-skills/pkg/openclaw"
	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
)

var openclawSnippetCmd = &cobra.Command{
	Use:   "openclaw-snippet",
	Short: "Print the OpenClaw provider config snippet",
	Long: `Print the JSON fragment that registers CacheForge as an OpenClaw
provider. The API key stays an env reference so secrets never land in
openclaw.json.

With a gateway key available the example models follow the configured
upstream; otherwise curated defaults are used.

Example:
  cacheforge-setup openclaw-snippet --pretty
  cacheforge-setup openclaw-snippet --model-id anthropic/claude-sonnet-4.5`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		modelID, _ := cmd.Flags().GetString("model-id")
		modelName, _ := cmd.Flags().GetString("model-name")
		pretty, _ := cmd.Flags().GetBool("pretty")
		baseURL := baseURLFromFlags(cmd)

		var client *gateway.Client
		if key := gateway.ResolveGatewayKey(""); key != "" {
			client = gateway.NewClient(baseURL, key)
		}

		models := resolveOpenclawModels(ctx, client, modelID, modelName)
		snippet := openclaw.BuildSnippet(baseURL, models, models[0].ID)

		var data []byte
		var err error
		if pretty {
			data, err = json.MarshalIndent(snippet, "", "  ")
		} else {
			data, err = json.Marshal(snippet)
		}
		if err != nil {
			presenter.Error(err, "Failed to encode snippet")
			os.Exit(1)
		}

		presenter.Info(fmt.Sprintf("OpenClaw snippet (paste into %s):", openclaw.DefaultConfigPath))
		fmt.Println(string(data))
		presenter.Info("Required env:")
		presenter.Info("  export CACHEFORGE_API_KEY=cf_...")
	},
}

func init() {
	openclawSnippetCmd.Flags().String("model-id", "", "Override the example model id")
	openclawSnippetCmd.Flags().String("model-name", "", "Override the example model display name")
	openclawSnippetCmd.Flags().Bool("pretty", false, "Indent the JSON output")
}
