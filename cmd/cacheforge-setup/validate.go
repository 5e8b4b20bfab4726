package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/gateway"
	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
	"github.com/anvil-ai/cacheforge-skills/pkg/render"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a gateway API key against the account endpoint",
	Long: `Call the account info endpoint with the key and report the tenant
name, status, and whether an upstream is configured.

The key comes from --api-key, CACHEFORGE_API_KEY, or a CacheForge-prefixed
key parked in OPENAI_API_KEY.

Example:
  cacheforge-setup validate
  cacheforge-setup validate --api-key cf_abc123 --json`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		explicitKey, _ := cmd.Flags().GetString("api-key")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		baseURL := baseURLFromFlags(cmd)

		apiKey := gateway.ResolveGatewayKey(explicitKey)
		if apiKey == "" {
			presenter.Error(errors.New("no API key found"), "Pass --api-key or set CACHEFORGE_API_KEY / OPENAI_API_KEY (cf_...)")
			os.Exit(1)
		}
		if !gateway.LooksLikeGatewayKey(apiKey) {
			presenter.Warning(fmt.Sprintf("Key %s does not look like a CacheForge key (cf_/cfk_ prefix)", gateway.MaskKey(apiKey)))
		}

		client := gateway.NewClient(baseURL, apiKey)
		tenant, err := client.AccountInfo(ctx)
		if err != nil {
			var apiErr *gateway.APIError
			switch {
			case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized:
				presenter.Error(err, "Authentication failed, the key is invalid or revoked")
				presenter.Info("Run 'cacheforge-setup provision' to get a new key, or check CACHEFORGE_API_KEY.")
			case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusPaymentRequired:
				presenter.Error(err, "Account is active but has no credits")
				presenter.Info(fmt.Sprintf("Add credits with: cacheforge-ops topup --amount 10 (or visit %s)", client.BaseURL()))
			default:
				presenter.Error(err, "Validation failed")
			}
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
		fmt.Println(render.Box("Connection OK",
			fmt.Sprintf("Tenant    %s", tenant.Name),
			fmt.Sprintf("Status    %s", tenant.Status),
			fmt.Sprintf("Upstream  %s", upstream),
			fmt.Sprintf("Endpoint  %s/v1", client.BaseURL()),
		))
		presenter.Success("CacheForge is working. Requests will be proxied and optimized.")
	},
}

func init() {
	validateCmd.Flags().String("api-key", "", "CacheForge API key (cf_...)")
	validateCmd.Flags().Bool("json", false, "Emit the tenant summary as JSON")
}
