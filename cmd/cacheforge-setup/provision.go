package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/gateway"
	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
	"github.com/anvil-ai/cacheforge-skills/pkg/render"
)

const generatedPasswordLength = 24

// ProvisionConfig holds configuration for the provision command
type ProvisionConfig struct {
	Email           string
	Password        string
	InviteCode      string
	UpstreamKind    string
	UpstreamBaseURL string
	UpstreamAPIKey  string
	JSONOutput      bool
}

// NewProvisionConfig creates a new ProvisionConfig with default values
func NewProvisionConfig() *ProvisionConfig {
	return &ProvisionConfig{
		Email:           "",
		Password:        "",
		InviteCode:      "",
		UpstreamKind:    "",
		UpstreamBaseURL: "",
		UpstreamAPIKey:  "",
		JSONOutput:      false,
	}
}

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Register an account and mint a gateway API key",
	Long: `Register (or re-authenticate) a CacheForge account and mint a gateway
API key. The upstream provider key is auto-detected from the environment
(OPENROUTER_API_KEY, ANTHROPIC_API_KEY, FIREWORKS_API_KEY, OPENAI_API_KEY)
when not passed explicitly, and the kind is inferred from the key prefix.

A password is generated when --password is omitted; it is printed once so
it can be saved.

Example:
  cacheforge-setup provision --email you@example.com
  cacheforge-setup provision --email you@example.com --upstream-kind openrouter --upstream-api-key sk-or-...
  cacheforge-setup provision --email you@example.com --invite-code beta-42`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getProvisionConfigFromFlags(cmd)
		runProvision(ctx, baseURLFromFlags(cmd), config)
	},
}

func init() {
	provisionDefaults := NewProvisionConfig()
	provisionCmd.Flags().String("email", provisionDefaults.Email, "Account email address")
	provisionCmd.Flags().String("password", provisionDefaults.Password, "Account password (generated when omitted)")
	provisionCmd.Flags().String("invite-code", provisionDefaults.InviteCode, "Invite code (defaults to CACHEFORGE_INVITE_CODE)")
	provisionCmd.Flags().String("upstream-kind", provisionDefaults.UpstreamKind, "Upstream kind (openrouter, anthropic, custom; legacy alias: openai)")
	provisionCmd.Flags().String("upstream-base-url", provisionDefaults.UpstreamBaseURL, "Upstream base URL override for custom providers")
	provisionCmd.Flags().String("upstream-api-key", provisionDefaults.UpstreamAPIKey, "Upstream provider API key")
	provisionCmd.Flags().Bool("json", provisionDefaults.JSONOutput, "Emit the provision result as JSON")
}

// getProvisionConfigFromFlags extracts provision configuration from command flags
func getProvisionConfigFromFlags(cmd *cobra.Command) *ProvisionConfig {
	config := NewProvisionConfig()

	if email, err := cmd.Flags().GetString("email"); err == nil {
		config.Email = email
	}
	if password, err := cmd.Flags().GetString("password"); err == nil {
		config.Password = password
	}
	if inviteCode, err := cmd.Flags().GetString("invite-code"); err == nil {
		config.InviteCode = inviteCode
	}
	if kind, err := cmd.Flags().GetString("upstream-kind"); err == nil {
		config.UpstreamKind = kind
	}
	if upstreamBaseURL, err := cmd.Flags().GetString("upstream-base-url"); err == nil {
		config.UpstreamBaseURL = upstreamBaseURL
	}
	if upstreamKey, err := cmd.Flags().GetString("upstream-api-key"); err == nil {
		config.UpstreamAPIKey = upstreamKey
	}
	if jsonOutput, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSONOutput = jsonOutput
	}

	return config
}

func runProvision(ctx context.Context, baseURL string, config *ProvisionConfig) {
	if os.Getenv("CACHEFORGE_API_KEY") != "" && config.Email == "" {
		presenter.Warning("CACHEFORGE_API_KEY is already set in your environment.")
		presenter.Info("Use 'cacheforge-setup validate' to check it, or pass --email to re-provision.")
		return
	}

	if config.Email == "" {
		presenter.Error(errors.New("email is required"), "Pass --email to provision an account")
		os.Exit(1)
	}

	password := config.Password
	passwordGenerated := false
	if password == "" {
		var err error
		password, err = gateway.GeneratePassword(generatedPasswordLength)
		if err != nil {
			presenter.Error(err, "Failed to generate a password")
			os.Exit(1)
		}
		passwordGenerated = true
	}

	inviteCode := strings.TrimSpace(config.InviteCode)
	if inviteCode == "" {
		inviteCode = strings.TrimSpace(os.Getenv("CACHEFORGE_INVITE_CODE"))
	}

	upstream := resolveUpstream(config)

	client := gateway.NewClient(baseURL, "")
	resp, err := client.Provision(ctx, gateway.ProvisionRequest{
		Email:      config.Email,
		Password:   password,
		Upstream:   upstream,
		InviteCode: inviteCode,
	})
	if err != nil {
		presenter.Error(err, "Provisioning failed")
		os.Exit(1)
	}

	if resp.RequiresVerification {
		if config.JSONOutput {
			printJSON(resp)
			return
		}
		presenter.Warning("Email verification required.")
		if resp.Message != "" {
			presenter.Info(resp.Message)
		}
		if resp.VerificationURL != "" {
			presenter.Info("Verification URL:")
			fmt.Println(resp.VerificationURL)
		}
		presenter.Info("After verifying, rerun provision to mint an API key.")
		return
	}

	if resp.APIKey == "" {
		presenter.Error(errors.New("no API key in response"), "Provisioning succeeded but the gateway returned no key")
		os.Exit(1)
	}

	if config.JSONOutput {
		printJSON(resp)
		return
	}

	fmt.Println(render.Box("CacheForge Ready",
		fmt.Sprintf("API Key   %s", resp.APIKey),
		fmt.Sprintf("Base URL  %s/v1", client.BaseURL()),
		fmt.Sprintf("Tenant    %s", resp.TenantID),
		fmt.Sprintf("Upstream  %s (%s)", upstream.Kind, upstream.BaseURL),
	))

	if passwordGenerated {
		presenter.Warning(fmt.Sprintf("Generated account password (save it now): %s", password))
	}

	presenter.Info("Next steps, add these to your environment:")
	fmt.Printf("  export OPENAI_BASE_URL=%s/v1\n", client.BaseURL())
	fmt.Printf("  export OPENAI_API_KEY=%s\n", resp.APIKey)
	presenter.Info("Before first proxy traffic, add credits:")
	presenter.Info("  cacheforge-ops topup --amount 10")
}

// resolveUpstream applies the detection chain: explicit flags, then provider
// env vars, then kind inference from the key prefix.
func resolveUpstream(config *ProvisionConfig) gateway.UpstreamConfig {
	kind := strings.ToLower(strings.TrimSpace(config.UpstreamKind))
	upstreamKey := config.UpstreamAPIKey
	upstreamBaseURL := config.UpstreamBaseURL
	if upstreamBaseURL == "" {
		upstreamBaseURL = os.Getenv("UPSTREAM_BASE_URL")
	}

	if upstreamKey == "" {
		detectedKind, detectedKey, ok := gateway.DetectUpstream()
		if !ok {
			presenter.Error(errors.New("no upstream API key found"),
				"Pass --upstream-api-key or set OPENROUTER_API_KEY / ANTHROPIC_API_KEY / FIREWORKS_API_KEY / OPENAI_API_KEY")
			os.Exit(1)
		}
		if kind == "" {
			kind = detectedKind
		}
		upstreamKey = detectedKey
		presenter.Info(fmt.Sprintf("Auto-detected upstream: %s (%s)", detectedKind, gateway.MaskKey(detectedKey)))
	}

	if kind == "" {
		kind = gateway.InferKindFromKey(upstreamKey)
		presenter.Info(fmt.Sprintf("Inferred upstream kind: %s", kind))
	}

	if !gateway.ValidKind(kind) {
		presenter.Error(errors.Errorf("invalid upstream kind %q", kind), "Use openrouter, anthropic, or custom (legacy alias: openai)")
		os.Exit(1)
	}
	if kind == gateway.KindOpenAI {
		presenter.Warning("Legacy upstream kind 'openai'; sending as 'custom' with the OpenAI base URL.")
	}

	return gateway.UpstreamConfig{
		Kind:    gateway.CanonicalKind(kind),
		BaseURL: gateway.DefaultUpstreamBaseURL(kind, upstreamBaseURL),
		APIKey:  upstreamKey,
	}
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		presenter.Error(err, "Failed to encode output")
		os.Exit(1)
	}
	fmt.Println(string(data))
}
