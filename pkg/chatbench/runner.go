package chatbench

import (
	"context"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/anvil-ai/cacheforge-skills/pkg/gateway"
	"github.com/anvil-ai/cacheforge-skills/pkg/logger"
	"github.com/anvil-ai/cacheforge-skills/pkg/pricing"
	"github.com/pkg/errors"
)

// DefaultMaxTokens caps completions so a benchmark run stays cheap.
const DefaultMaxTokens = 256

// Provider endpoint and key-env defaults for --provider.
var providerBaseURLs = map[string]string{
	"openai":     "https://api.openai.com/v1",
	"anthropic":  "https://api.anthropic.com/v1",
	"openrouter": "https://openrouter.ai/api/v1",
}

var providerKeyEnvs = map[string]string{
	"openai":     "OPENAI_API_KEY",
	"anthropic":  "ANTHROPIC_API_KEY",
	"openrouter": "OPENROUTER_API_KEY",
}

// ResolveEndpoint picks the chat endpoint for a provider. Unknown providers
// (including "cacheforge") resolve to the gateway.
func ResolveEndpoint(provider, explicit string) string {
	if explicit != "" {
		return strings.TrimRight(explicit, "/")
	}
	if url, ok := providerBaseURLs[provider]; ok {
		return url
	}
	return gateway.ResolveBaseURL("") + "/v1"
}

// ResolveAPIKey picks the key for a provider: explicit flag, the provider's
// canonical env var, then CACHEFORGE_API_KEY.
func ResolveAPIKey(provider, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if envVar, ok := providerKeyEnvs[provider]; ok {
		if key := os.Getenv(envVar); key != "" {
			return key, nil
		}
	}
	if key := os.Getenv("CACHEFORGE_API_KEY"); key != "" {
		return key, nil
	}
	return "", errors.New("no API key provided, use --api-key or set the provider's environment variable")
}

// CaseResult is one prompt's measurement. JSON field names match the saved
// artifact format so old result files stay readable.
type CaseResult struct {
	Name             string  `json:"name"`
	Description      string  `json:"description,omitempty"`
	OK               bool    `json:"ok"`
	LatencyMS        float64 `json:"latency_ms"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
	Error            string  `json:"error,omitempty"`
}

// RunResult aggregates a full suite run against one endpoint.
type RunResult struct {
	Label                 string       `json:"label"`
	Endpoint              string       `json:"endpoint"`
	Model                 string       `json:"model"`
	Timestamp             time.Time    `json:"timestamp"`
	PromptsRun            int          `json:"prompts_run"`
	Errors                int          `json:"errors"`
	TotalPromptTokens     int          `json:"total_prompt_tokens"`
	TotalCompletionTokens int          `json:"total_completion_tokens"`
	TotalTokens           int          `json:"total_tokens"`
	TotalLatencyMS        float64      `json:"total_latency_ms"`
	AvgLatencyMS          float64      `json:"avg_latency_ms"`
	EstimatedTotalCostUSD float64      `json:"estimated_total_cost_usd"`
	Results               []CaseResult `json:"results"`
}

// Runner sends prompt cases to one OpenAI-compatible endpoint.
type Runner struct {
	client    *openai.Client
	endpoint  string
	model     string
	maxTokens int
}

// NewRunner builds a runner for an endpoint. maxTokens <= 0 falls back to
// DefaultMaxTokens.
func NewRunner(endpoint, apiKey, model string, maxTokens int) *Runner {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	endpoint = strings.TrimRight(endpoint, "/")
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = endpoint
	return &Runner{
		client:    openai.NewClientWithConfig(config),
		endpoint:  endpoint,
		model:     model,
		maxTokens: maxTokens,
	}
}

// runCase sends one case and measures it. Failures are folded into the
// result, not returned, so one bad prompt doesn't abort the suite.
func (r *Runner) runCase(ctx context.Context, pc PromptCase) CaseResult {
	messages := make([]openai.ChatCompletionMessage, 0, len(pc.Messages))
	for _, m := range pc.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	start := time.Now()
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     r.model,
		Messages:  messages,
		MaxTokens: r.maxTokens,
	})
	latency := float64(time.Since(start).Microseconds()) / 1000.0

	result := CaseResult{
		Name:        pc.Name,
		Description: pc.Description,
		LatencyMS:   latency,
	}
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.OK = true
	result.PromptTokens = resp.Usage.PromptTokens
	result.CompletionTokens = resp.Usage.CompletionTokens
	result.TotalTokens = resp.Usage.TotalTokens
	result.EstimatedCostUSD = pricing.EstimateCost(r.model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	return result
}

// RunSuite runs the cases sequentially. The optional progress callback fires
// after each case so callers can print incremental status.
func (r *Runner) RunSuite(ctx context.Context, label string, cases []PromptCase, progress func(i, n int, result CaseResult)) *RunResult {
	run := &RunResult{
		Label:      label,
		Endpoint:   r.endpoint,
		Model:      r.model,
		Timestamp:  time.Now().UTC(),
		PromptsRun: len(cases),
		Results:    make([]CaseResult, 0, len(cases)),
	}

	log := logger.G(ctx).WithField("label", label).WithField("model", r.model)
	log.WithField("prompts", len(cases)).Debug("starting benchmark run")

	for i, pc := range cases {
		result := r.runCase(ctx, pc)
		if !result.OK {
			run.Errors++
			log.WithField("case", pc.Name).WithField("error", result.Error).Debug("case failed")
		}
		run.Results = append(run.Results, result)
		run.TotalPromptTokens += result.PromptTokens
		run.TotalCompletionTokens += result.CompletionTokens
		run.TotalLatencyMS += result.LatencyMS
		if progress != nil {
			progress(i, len(cases), result)
		}
	}

	run.TotalTokens = run.TotalPromptTokens + run.TotalCompletionTokens
	if len(cases) > 0 {
		run.AvgLatencyMS = run.TotalLatencyMS / float64(len(cases))
	}
	run.EstimatedTotalCostUSD = pricing.EstimateCost(r.model, run.TotalPromptTokens, run.TotalCompletionTokens)
	return run
}
