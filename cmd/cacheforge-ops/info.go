package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
	"github.com/anvil-ai/cacheforge-skills/pkg/render"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the account summary",
	Long: `Show the tenant name, id, status, whether an upstream is configured,
and how many API keys are active.

Example:
  cacheforge-ops info`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		jsonOutput, _ := cmd.Flags().GetBool("json")
		client := gatewayClientFromFlags(cmd)

		tenant, err := client.AccountInfo(ctx)
		if err != nil {
			presenter.Error(err, "Failed to fetch account info")
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(tenant)
			return
		}

		upstream := "not configured"
		if tenant.UpstreamConfigured {
			upstream = "configured"
		}
		fmt.Println(render.Box("CacheForge Account",
			fmt.Sprintf("Tenant    %s", tenant.Name),
			fmt.Sprintf("ID        %s", tenant.ID),
			fmt.Sprintf("Status    %s", tenant.Status),
			fmt.Sprintf("Upstream  %s", upstream),
			fmt.Sprintf("Keys      %d active", tenant.ActiveKeys),
		))

		if !tenant.UpstreamConfigured {
			presenter.Warning("No upstream configured. Set one with: cacheforge-ops upstream --kind <kind> --upstream-api-key <key>")
		}
	},
}

func init() {
	infoCmd.Flags().Bool("json", false, "Emit the account summary as JSON")
}
