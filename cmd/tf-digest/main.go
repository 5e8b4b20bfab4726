package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
	"github.com/anvil-ai/cacheforge-skills/pkg/skillcmd"
	"github.com/anvil-ai/cacheforge-skills/pkg/tfplan"
)

// DigestConfig holds configuration for the digest run
type DigestConfig struct {
	Plan       string
	PlanJSON   string
	Detailed   bool
	Timeout    time.Duration
	JSONOutput bool
}

// NewDigestConfig creates a new DigestConfig with default values
func NewDigestConfig() *DigestConfig {
	return &DigestConfig{
		Plan:       "",
		PlanJSON:   "",
		Detailed:   false,
		Timeout:    60 * time.Second,
		JSONOutput: false,
	}
}

var rootCmd = skillcmd.NewRoot(
	"tf-digest",
	"Summarize a Terraform plan with risk callouts",
	`Digest a Terraform plan into action counts, per-type totals, and risk flags.

Binary plan files (from terraform plan -out=...) are exported through
terraform show -json, which needs terraform on PATH. An already exported
JSON plan can be digested directly with --plan-json, no terraform required.

Risks flagged: deletes or replacements of stateful resources (databases,
buckets, volumes), replacements without create_before_destroy, and
force_destroy=true on planned values.

Example:
  tf-digest --plan plan.tfplan
  tf-digest --plan-json plan.json --detailed
  tf-digest --plan plan.tfplan --json`,
)

func init() {
	defaults := NewDigestConfig()
	rootCmd.Args = cobra.NoArgs
	rootCmd.Flags().String("plan", defaults.Plan, "Binary plan file to export via terraform show -json")
	rootCmd.Flags().String("plan-json", defaults.PlanJSON, "Already exported plan JSON file")
	rootCmd.Flags().Bool("detailed", defaults.Detailed, "Include the per-resource change list")
	rootCmd.Flags().Duration("timeout", defaults.Timeout, "Timeout for the terraform show invocation")
	rootCmd.Flags().Bool("json", defaults.JSONOutput, "Emit the digest as JSON instead of Markdown")
	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getDigestConfigFromFlags(cmd)
		runDigest(ctx, config)
	}
}

// getDigestConfigFromFlags extracts digest configuration from command flags
func getDigestConfigFromFlags(cmd *cobra.Command) *DigestConfig {
	config := NewDigestConfig()

	if plan, err := cmd.Flags().GetString("plan"); err == nil {
		config.Plan = plan
	}
	if planJSON, err := cmd.Flags().GetString("plan-json"); err == nil {
		config.PlanJSON = planJSON
	}
	if detailed, err := cmd.Flags().GetBool("detailed"); err == nil {
		config.Detailed = detailed
	}
	if timeout, err := cmd.Flags().GetDuration("timeout"); err == nil {
		config.Timeout = timeout
	}
	if jsonOutput, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSONOutput = jsonOutput
	}

	return config
}

func runDigest(ctx context.Context, config *DigestConfig) {
	if config.Plan == "" && config.PlanJSON == "" {
		presenter.Error(errors.New("no plan given"), "Provide a plan with --plan or --plan-json")
		os.Exit(1)
	}
	if config.Plan != "" && config.PlanJSON != "" {
		presenter.Error(errors.New("conflicting flags"), "--plan and --plan-json cannot be used together")
		os.Exit(1)
	}

	var (
		plan *tfplan.Plan
		err  error
	)
	if config.Plan != "" {
		plan, err = tfplan.LoadBinaryPlan(ctx, config.Plan, config.Timeout)
	} else {
		plan, err = tfplan.LoadPlanJSON(config.PlanJSON)
	}
	if err != nil {
		presenter.Error(err, "Failed to load plan")
		os.Exit(1)
	}

	digest := tfplan.BuildDigest(plan)

	if config.JSONOutput {
		data, err := json.MarshalIndent(digest, "", "  ")
		if err != nil {
			presenter.Error(err, "Failed to encode digest")
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	fmt.Print(digest.Markdown(config.Detailed))
}

func main() {
	skillcmd.Execute(rootCmd)
}
