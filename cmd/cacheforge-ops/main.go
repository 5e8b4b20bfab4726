package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/gateway"
	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
	"github.com/anvil-ai/cacheforge-skills/pkg/skillcmd"
)

var rootCmd = skillcmd.NewRoot(
	"cacheforge-ops",
	"Operate a CacheForge gateway account",
	`Day-two operations for a CacheForge account: check the credit balance,
top up, configure auto-topup, manage the upstream provider, and manage
API keys.

Every subcommand needs a gateway API key, from --api-key or the
CACHEFORGE_API_KEY environment variable.`,
)

func main() {
	rootCmd.PersistentFlags().String("base-url", "", "CacheForge base URL (defaults to CACHEFORGE_BASE_URL or the hosted deployment)")
	rootCmd.PersistentFlags().String("api-key", "", "CacheForge API key (defaults to CACHEFORGE_API_KEY)")

	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(topupCmd)
	rootCmd.AddCommand(autoTopupCmd)
	rootCmd.AddCommand(upstreamCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(infoCmd)

	skillcmd.Execute(rootCmd)
}

// gatewayClientFromFlags builds the API client every subcommand shares.
// Missing credentials are fatal here so the subcommands can assume a
// working client.
func gatewayClientFromFlags(cmd *cobra.Command) *gateway.Client {
	baseURL, _ := cmd.Flags().GetString("base-url")
	apiKey, _ := cmd.Flags().GetString("api-key")

	key := gateway.ResolveGatewayKey(apiKey)
	if key == "" {
		presenter.Error(errors.New("no API key"), "Set CACHEFORGE_API_KEY or pass --api-key")
		os.Exit(1)
	}

	return gateway.NewClient(gateway.ResolveBaseURL(baseURL), key)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		presenter.Error(err, "Failed to encode output")
		os.Exit(1)
	}
	fmt.Println(string(data))
}
