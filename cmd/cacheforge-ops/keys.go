package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List API keys or create a new one",
	Long: `List the account's API keys (prefixes only) or mint a new key with
--create. The full key is shown exactly once, at creation.

Example:
  cacheforge-ops keys
  cacheforge-ops keys --create --label ci-pipeline`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		create, _ := cmd.Flags().GetBool("create")
		label, _ := cmd.Flags().GetString("label")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		client := gatewayClientFromFlags(cmd)

		if create {
			created, err := client.CreateKey(ctx, label)
			if err != nil {
				presenter.Error(err, "Failed to create key")
				os.Exit(1)
			}
			if jsonOutput {
				printJSON(created)
				return
			}
			presenter.Success("Key created")
			presenter.Warning("This is the only time the full key is shown. Save it now.")
			fmt.Println(created.APIKey)
			return
		}

		keys, err := client.ListKeys(ctx)
		if err != nil {
			presenter.Error(err, "Failed to list keys")
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(keys)
			return
		}

		if len(keys) == 0 {
			presenter.Info("No API keys. Create one with: cacheforge-ops keys --create")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PREFIX\tLABEL\tCREATED")
		for _, key := range keys {
			label := key.Label
			if label == "" {
				label = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", key.Prefix, label, key.CreatedAt)
		}
		w.Flush()
	},
}

func init() {
	keysCmd.Flags().Bool("create", false, "Create a new API key")
	keysCmd.Flags().String("label", "", "Label for the new key (with --create)")
	keysCmd.Flags().Bool("json", false, "Emit keys as JSON")
}
