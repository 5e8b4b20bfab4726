package promrules

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type ruleFile struct {
	Groups []ruleGroup `yaml:"groups"`
}

type ruleGroup struct {
	Name     string `yaml:"name"`
	Interval string `yaml:"interval"`
	Rules    []rule `yaml:"rules"`
}

type rule struct {
	Alert       string            `yaml:"alert"`
	Record      string            `yaml:"record"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for"`
	Labels      map[string]string `yaml:"labels"`
	Annotations map[string]string `yaml:"annotations"`
}

// GroupSummary is the per-group row of the inventory.
type GroupSummary struct {
	Name           string `json:"name"`
	Interval       string `json:"interval,omitempty"`
	AlertingRules  int    `json:"alerting_rules"`
	RecordingRules int    `json:"recording_rules"`
}

// Inventory describes what one rules file defines. Alerts without a summary
// annotation are listed; that annotation is what pages read first.
type Inventory struct {
	Groups           []GroupSummary `json:"groups"`
	AlertingRules    int            `json:"alerting_rules"`
	RecordingRules   int            `json:"recording_rules"`
	MissingSummaries []string       `json:"missing_summaries,omitempty"`
}

// InventoryRules parses a Prometheus rules file independently of promtool.
func InventoryRules(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read rules file")
	}

	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(err, "%s is not valid YAML", path)
	}

	inv := &Inventory{}
	for _, group := range file.Groups {
		summary := GroupSummary{Name: group.Name, Interval: group.Interval}
		for _, r := range group.Rules {
			if r.Alert != "" {
				summary.AlertingRules++
				if r.Annotations["summary"] == "" {
					inv.MissingSummaries = append(inv.MissingSummaries, r.Alert)
				}
				continue
			}
			if r.Record != "" {
				summary.RecordingRules++
			}
		}
		inv.AlertingRules += summary.AlertingRules
		inv.RecordingRules += summary.RecordingRules
		inv.Groups = append(inv.Groups, summary)
	}
	return inv, nil
}
