package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/history"
	"github.com/anvil-ai/cacheforge-skills/pkg/insights"
	"github.com/anvil-ai/cacheforge-skills/pkg/llm"
	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
	"github.com/anvil-ai/cacheforge-skills/pkg/pricing"
	"github.com/anvil-ai/cacheforge-skills/pkg/report"
	"github.com/anvil-ai/cacheforge-skills/pkg/transcript"
)

// ExtractConfig holds configuration for the extract command
type ExtractConfig struct {
	Transcript string
	Format     string
	Provider   string
	Model      string
	BaseURL    string
	Title      string
	HistoryDir string
	NoHistory  bool
	JSONOutput bool
}

// NewExtractConfig creates a new ExtractConfig with default values
func NewExtractConfig() *ExtractConfig {
	return &ExtractConfig{
		Transcript: "",
		Format:     string(transcript.FormatAuto),
		Provider:   "",
		Model:      "",
		BaseURL:    "",
		Title:      "",
		HistoryDir: "",
		NoHistory:  false,
		JSONOutput: false,
	}
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract notes from a transcript",
	Long: `Parse the transcript, pull structured facts out of it with one LLM call,
write an executive summary from those facts with a second call, and print
the Markdown report.

The provider defaults to anthropic when ANTHROPIC_API_KEY is set, openai
otherwise; --base-url points the openai provider at any OpenAI-compatible
endpoint, including a CacheForge gateway.

Example:
  meeting-notes extract --transcript standup.vtt
  meeting-notes extract --transcript board.srt --provider openai --model gpt-4o
  meeting-notes extract --transcript notes.txt --title "Q3 Planning" --json`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getExtractConfigFromFlags(cmd)
		runExtract(ctx, config)
	},
}

func init() {
	extractDefaults := NewExtractConfig()
	extractCmd.Flags().String("transcript", extractDefaults.Transcript, "Transcript file (WebVTT, SRT, or plain text)")
	extractCmd.Flags().String("format", extractDefaults.Format, "Transcript format (auto, vtt, srt, text)")
	extractCmd.Flags().String("provider", extractDefaults.Provider, "LLM provider (anthropic or openai)")
	extractCmd.Flags().String("model", extractDefaults.Model, "Model override")
	extractCmd.Flags().String("base-url", extractDefaults.BaseURL, "Endpoint override for OpenAI-compatible providers")
	extractCmd.Flags().String("title", extractDefaults.Title, "Title stored with the run")
	extractCmd.Flags().String("history-dir", extractDefaults.HistoryDir, "History directory (defaults to ~/.meeting-notes/history)")
	extractCmd.Flags().Bool("no-history", extractDefaults.NoHistory, "Do not save the run to history")
	extractCmd.Flags().Bool("json", extractDefaults.JSONOutput, "Emit the raw insights JSON instead of the report")
	extractCmd.MarkFlagRequired("transcript")
}

// getExtractConfigFromFlags extracts extract configuration from command flags
func getExtractConfigFromFlags(cmd *cobra.Command) *ExtractConfig {
	config := NewExtractConfig()

	if transcriptPath, err := cmd.Flags().GetString("transcript"); err == nil {
		config.Transcript = transcriptPath
	}
	if format, err := cmd.Flags().GetString("format"); err == nil {
		config.Format = format
	}
	if provider, err := cmd.Flags().GetString("provider"); err == nil {
		config.Provider = provider
	}
	if model, err := cmd.Flags().GetString("model"); err == nil {
		config.Model = model
	}
	if baseURL, err := cmd.Flags().GetString("base-url"); err == nil {
		config.BaseURL = baseURL
	}
	if title, err := cmd.Flags().GetString("title"); err == nil {
		config.Title = title
	}
	if historyDir, err := cmd.Flags().GetString("history-dir"); err == nil {
		config.HistoryDir = historyDir
	}
	if noHistory, err := cmd.Flags().GetBool("no-history"); err == nil {
		config.NoHistory = noHistory
	}
	if jsonOutput, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSONOutput = jsonOutput
	}

	return config
}

func runExtract(ctx context.Context, config *ExtractConfig) {
	content, err := readTranscriptFile(config.Transcript)
	if err != nil {
		presenter.Error(err, "Cannot read the transcript")
		os.Exit(1)
	}

	// Fail on a missing API key before spending time on parsing.
	client, err := llm.NewClient(llm.Config{
		Provider: config.Provider,
		Model:    config.Model,
		BaseURL:  config.BaseURL,
	})
	if err != nil {
		presenter.Error(err, "LLM provider is not configured")
		os.Exit(1)
	}

	tr, err := transcript.Parse(content, transcript.Format(config.Format))
	if err != nil {
		presenter.Error(err, "Failed to parse the transcript")
		os.Exit(1)
	}
	presenter.Info(fmt.Sprintf("Parsed %s transcript: %d segments, %d speakers, %s",
		tr.Format, len(tr.Segments), len(tr.Speakers), transcript.FormatClock(tr.Duration)))

	presenter.Info(fmt.Sprintf("Extracting insights with %s...", client.Model()))
	result, usage, err := insights.NewExtractor(client).Extract(ctx, tr)
	if err != nil {
		presenter.Error(err, "Extraction failed")
		os.Exit(1)
	}

	record := &history.Record{
		Title:    config.Title,
		Source:   filepath.Base(config.Transcript),
		Format:   string(tr.Format),
		Segments: len(tr.Segments),
		Speakers: len(tr.Speakers),
		Model:    client.Model(),
		Usage:    usage,
		Cost:     pricing.EstimateCost(client.Model(), usage.InputTokens, usage.OutputTokens),
		Insights: result,
	}

	// Save before rendering so the report footer can reference the run id.
	if !config.NoHistory {
		store, err := storeFor(config.HistoryDir)
		if err != nil {
			presenter.Error(err, "Failed to open the history directory")
			os.Exit(1)
		}
		if err := store.Save(record); err != nil {
			presenter.Error(err, "Failed to save the run")
			os.Exit(1)
		}
	}

	if config.JSONOutput {
		printJSON(result)
	} else {
		md, err := report.Meeting(record)
		if err != nil {
			presenter.Error(err, "Failed to render the report")
			os.Exit(1)
		}
		fmt.Print(md)
	}

	presenter.Stats(&presenter.UsageStats{
		Model:        record.Model,
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		Cost:         record.Cost,
	})
	if !config.NoHistory {
		presenter.Info(fmt.Sprintf("Saved as %s (re-render with: meeting-notes show %s)", record.ID, record.ID))
	}
}

// readTranscriptFile enforces the input preconditions: the transcript must
// exist and must not be empty.
func readTranscriptFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Errorf("transcript not found: %s", path)
	}
	if info.IsDir() {
		return "", errors.Errorf("%s is a directory", path)
	}
	if info.Size() == 0 {
		return "", errors.Errorf("transcript is empty: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to read transcript")
	}
	return string(data), nil
}
