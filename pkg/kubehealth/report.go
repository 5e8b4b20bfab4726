package kubehealth

import (
	"fmt"
	"strings"
)

// Markdown renders the triage report for humans.
func (r *Report) Markdown() string {
	var sb strings.Builder

	sb.WriteString("# Cluster Triage\n\n")
	sb.WriteString("## Health Summary\n\n")
	fmt.Fprintf(&sb, "- Nodes ready: %d/%d\n", r.Summary.NodesReady, r.Summary.NodesTotal)
	fmt.Fprintf(&sb, "- Pods healthy: %d/%d\n", r.Summary.PodsHealthy, r.Summary.PodsTotal)
	fmt.Fprintf(&sb, "- Warning events (last %s): %d\n", r.EventWindow, r.Summary.WarningEvents)

	critical := r.findingsBySeverity(SeverityCritical)
	warning := r.findingsBySeverity(SeverityWarning)
	info := r.findingsBySeverity(SeverityInfo)

	if len(critical) == 0 && len(warning) == 0 {
		sb.WriteString("\nNo problems found. Cluster looks healthy.\n")
	}

	if len(critical) > 0 {
		sb.WriteString("\n## Critical\n\n")
		writeFindings(&sb, critical)
	}
	if len(warning) > 0 {
		sb.WriteString("\n## Warnings\n\n")
		writeFindings(&sb, warning)
	}
	if len(info) > 0 {
		sb.WriteString("\n## Recent Warning Events\n\n")
		writeFindings(&sb, info)
	}

	if len(r.Suspects) > 0 {
		sb.WriteString("\n## Suspect Workloads\n\n")
		sb.WriteString("| Namespace | Pod | Restarts | Reason |\n")
		sb.WriteString("|---|---|---:|---|\n")
		for _, s := range r.Suspects {
			fmt.Fprintf(&sb, "| %s | %s | %d | %s |\n", s.Namespace, s.Pod, s.Restarts, s.Reason)
		}
	}

	return sb.String()
}

func (r *Report) findingsBySeverity(severity Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == severity {
			out = append(out, f)
		}
	}
	return out
}

func writeFindings(sb *strings.Builder, findings []Finding) {
	for _, f := range findings {
		name := f.Name
		if f.Namespace != "" {
			name = f.Namespace + "/" + f.Name
		}
		fmt.Fprintf(sb, "- %s `%s`: %s", f.Kind, name, f.Reason)
		if f.Detail != "" {
			fmt.Fprintf(sb, " (%s)", f.Detail)
		}
		sb.WriteString("\n")
	}
}
