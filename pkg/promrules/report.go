package promrules

import (
	"fmt"
	"strings"
)

// Markdown renders the audit report.
func (a *Audit) Markdown() string {
	var sb strings.Builder

	if a.Kind == "config" {
		sb.WriteString("# Prometheus Config Audit\n\n")
	} else {
		sb.WriteString("# Prometheus Rules Audit\n\n")
	}
	fmt.Fprintf(&sb, "- Files checked: %d (%d passed, %d failed)\n", len(a.Files), a.Passed, a.Failed)

	for _, file := range a.Files {
		fmt.Fprintf(&sb, "\n## %s\n\n", file.File)
		if file.Passed {
			sb.WriteString("- promtool: SUCCESS")
			if file.RulesFound > 0 {
				fmt.Fprintf(&sb, " (%d rules found)", file.RulesFound)
			}
			sb.WriteString("\n")
		} else {
			sb.WriteString("- promtool: FAILED\n")
			if file.Detail != "" {
				fmt.Fprintf(&sb, "\n```\n%s\n```\n", file.Detail)
			}
		}

		inv := file.Inventory
		if inv == nil {
			continue
		}
		fmt.Fprintf(&sb, "- Groups: %d\n", len(inv.Groups))
		fmt.Fprintf(&sb, "- Alerting rules: %d\n", inv.AlertingRules)
		fmt.Fprintf(&sb, "- Recording rules: %d\n", inv.RecordingRules)
		if len(inv.MissingSummaries) > 0 {
			fmt.Fprintf(&sb, "- Alerts missing summary annotation: %s\n", strings.Join(inv.MissingSummaries, ", "))
		}

		if len(inv.Groups) > 0 {
			sb.WriteString("\n| Group | Interval | Alerting | Recording |\n")
			sb.WriteString("|---|---|---:|---:|\n")
			for _, group := range inv.Groups {
				interval := group.Interval
				if interval == "" {
					interval = "default"
				}
				fmt.Fprintf(&sb, "| %s | %s | %d | %d |\n",
					group.Name, interval, group.AlertingRules, group.RecordingRules)
			}
		}
	}

	if a.Kind == "rules" && len(a.Files) > 1 {
		sb.WriteString("\n## Totals\n\n")
		fmt.Fprintf(&sb, "- Groups: %d\n", a.TotalGroups)
		fmt.Fprintf(&sb, "- Alerting rules: %d\n", a.TotalAlerting)
		fmt.Fprintf(&sb, "- Recording rules: %d\n", a.TotalRecording)
	}

	return sb.String()
}
