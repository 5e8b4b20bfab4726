package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/gateway"
	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
)

var upstreamCmd = &cobra.Command{
	Use:   "upstream",
	Short: "Show or change the upstream provider",
	Long: `Show the configured upstream provider, or change it by passing --kind
together with --upstream-api-key. The stored upstream API key is never
echoed back, only the kind and base URL.

Example:
  cacheforge-ops upstream
  cacheforge-ops upstream --kind openrouter --upstream-api-key sk-or-...
  cacheforge-ops upstream --kind custom --upstream-base-url https://api.fireworks.ai/inference/v1 --upstream-api-key fw-...`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		kind, _ := cmd.Flags().GetString("kind")
		upstreamBaseURL, _ := cmd.Flags().GetString("upstream-base-url")
		upstreamKey, _ := cmd.Flags().GetString("upstream-api-key")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		client := gatewayClientFromFlags(cmd)

		if kind == "" && upstreamBaseURL == "" && upstreamKey == "" {
			showUpstream(cmd, client, jsonOutput)
			return
		}

		if kind == "" {
			presenter.Error(errors.New("missing kind"), "Pass --kind when changing the upstream")
			os.Exit(1)
		}
		if !gateway.ValidKind(kind) {
			presenter.Error(errors.Errorf("unknown upstream kind %q", kind), "Use openrouter, anthropic, openai, or custom")
			os.Exit(1)
		}
		if upstreamKey == "" {
			presenter.Error(errors.New("missing upstream key"), "Pass --upstream-api-key when changing the upstream")
			os.Exit(1)
		}

		config := gateway.UpstreamConfig{
			Kind:    gateway.CanonicalKind(kind),
			BaseURL: gateway.DefaultUpstreamBaseURL(kind, upstreamBaseURL),
			APIKey:  upstreamKey,
		}
		if err := client.SetUpstream(ctx, config); err != nil {
			presenter.Error(err, "Failed to update upstream")
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(map[string]string{"kind": config.Kind, "baseUrl": config.BaseURL})
			return
		}
		presenter.Success(fmt.Sprintf("Upstream set to %s (%s)", config.Kind, config.BaseURL))
	},
}

func showUpstream(cmd *cobra.Command, client *gateway.Client, jsonOutput bool) {
	status, err := client.GetUpstream(cmd.Context())
	if err != nil {
		presenter.Error(err, "Failed to fetch upstream")
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(status)
		return
	}

	if !status.Configured || status.Upstream == nil {
		presenter.Warning("No upstream configured. Requests through the gateway will fail until one is set.")
		presenter.Info("Set one with: cacheforge-ops upstream --kind openrouter --upstream-api-key <key>")
		return
	}
	presenter.Info(fmt.Sprintf("Upstream: %s (%s)", status.Upstream.Kind, status.Upstream.BaseURL))
}

func init() {
	upstreamCmd.Flags().String("kind", "", "Upstream kind (openrouter, anthropic, openai, custom)")
	upstreamCmd.Flags().String("upstream-base-url", "", "Upstream base URL (defaults per kind)")
	upstreamCmd.Flags().String("upstream-api-key", "", "Upstream provider API key")
	upstreamCmd.Flags().Bool("json", false, "Emit the upstream state as JSON")
}
