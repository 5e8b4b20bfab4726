package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/anvil-ai/cacheforge-skills/pkg/history"
	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
	"github.com/anvil-ai/cacheforge-skills/pkg/skillcmd"
)

var rootCmd = skillcmd.NewRoot(
	"meeting-notes",
	"Turn meeting transcripts into structured notes",
	`meeting-notes parses a meeting transcript (WebVTT, SRT, or plain text),
runs a two-stage LLM extraction, and prints a Markdown report: executive
summary, key points, decisions, action items, risks, open questions, and
participants.

Each processed transcript is saved to a local history so past runs can be
listed and re-rendered without calling the LLM again.`,
)

func main() {
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)

	skillcmd.Execute(rootCmd)
}

// storeFor opens the history store behind --history-dir, falling back to the
// per-user default location.
func storeFor(dir string) (*history.Store, error) {
	if dir == "" {
		var err error
		dir, err = history.DefaultDir()
		if err != nil {
			return nil, err
		}
	}
	return history.NewStore(dir)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		presenter.Error(err, "Failed to encode output")
		os.Exit(1)
	}
	fmt.Println(string(data))
}
