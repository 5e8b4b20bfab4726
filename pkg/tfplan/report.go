package tfplan

import (
	"fmt"
	"strings"
)

// Markdown renders the digest. The detailed flag appends the per-resource
// change listing.
func (d *Digest) Markdown(detailed bool) string {
	var sb strings.Builder

	sb.WriteString("# Terraform Plan Digest\n\n")
	if d.TerraformVersion != "" {
		fmt.Fprintf(&sb, "Terraform %s. ", d.TerraformVersion)
	}
	total := d.Counts.Total()
	switch total {
	case 0:
		sb.WriteString("No changes planned.\n")
	case 1:
		sb.WriteString("1 resource change planned.\n")
	default:
		fmt.Fprintf(&sb, "%d resource changes planned.\n", total)
	}

	if total > 0 {
		sb.WriteString("\n## Change Counts\n\n")
		sb.WriteString("| Action | Count |\n")
		sb.WriteString("|---|---:|\n")
		fmt.Fprintf(&sb, "| create | %d |\n", d.Counts.Create)
		fmt.Fprintf(&sb, "| update | %d |\n", d.Counts.Update)
		fmt.Fprintf(&sb, "| delete | %d |\n", d.Counts.Delete)
		fmt.Fprintf(&sb, "| replace | %d |\n", d.Counts.Replace)
	}

	if len(d.ByType) > 0 {
		sb.WriteString("\n## By Resource Type\n\n")
		sb.WriteString("| Type | Create | Update | Delete | Replace |\n")
		sb.WriteString("|---|---:|---:|---:|---:|\n")
		for _, tc := range d.ByType {
			fmt.Fprintf(&sb, "| %s | %d | %d | %d | %d |\n",
				tc.Type, tc.Create, tc.Update, tc.Delete, tc.Replace)
		}
	}

	sb.WriteString("\n## Risks\n\n")
	if len(d.Risks) == 0 {
		sb.WriteString("No risks detected.\n")
	}
	for _, risk := range d.Risks {
		fmt.Fprintf(&sb, "- `%s`: %s\n", risk.Address, risk.Reason)
	}

	if detailed && len(d.Changes) > 0 {
		sb.WriteString("\n## Resource Changes\n\n")
		for _, line := range d.Changes {
			fmt.Fprintf(&sb, "- `%s`: %s", line.Address, line.Action)
			if line.ActionReason != "" {
				fmt.Fprintf(&sb, " (%s)", line.ActionReason)
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
