package main

import (
	"github.com/anvil-ai/cacheforge-skills/pkg/skillcmd"
)

var rootCmd = skillcmd.NewRoot(
	"prom-audit",
	"Audit Prometheus rule and config files with promtool",
	`Check Prometheus rule files or a prometheus.yml with promtool and report
the results as Markdown, including a rule inventory per file.

The promtool binary must be on PATH (it ships with Prometheus).`,
)

func main() {
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(configCmd)
	skillcmd.Execute(rootCmd)
}
