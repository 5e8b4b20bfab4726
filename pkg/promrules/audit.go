package promrules

import (
	"context"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// FileAudit is the check outcome for one file plus its inventory. Inventory
// is nil when the file could not be parsed or when auditing a config file.
type FileAudit struct {
	CheckResult
	Inventory *Inventory `json:"inventory,omitempty"`
}

// Audit is the full result across all checked files.
type Audit struct {
	Kind           string      `json:"kind"`
	Files          []FileAudit `json:"files"`
	Passed         int         `json:"passed"`
	Failed         int         `json:"failed"`
	TotalGroups    int         `json:"total_groups,omitempty"`
	TotalAlerting  int         `json:"total_alerting,omitempty"`
	TotalRecording int         `json:"total_recording,omitempty"`
}

// AllPassed reports whether every file passed the promtool check.
func (a *Audit) AllPassed() bool {
	return a.Failed == 0
}

// AuditRules checks each rules file with promtool and inventories it. Failed
// checks are data, not errors. Files promtool itself could not check are
// skipped; their errors come back aggregated alongside the audit, which is
// nil only when no file produced a result.
func AuditRules(ctx context.Context, paths []string, timeout time.Duration) (*Audit, error) {
	if len(paths) == 0 {
		return nil, errors.New("no rule files given")
	}
	if err := EnsureInstalled(); err != nil {
		return nil, err
	}

	promtool := &Promtool{Timeout: timeout}
	audit := &Audit{Kind: "rules"}
	var errs *multierror.Error

	for _, path := range paths {
		result, err := promtool.CheckRules(ctx, path)
		if err != nil {
			errs = multierror.Append(errs, errors.Wrap(err, path))
			continue
		}

		file := FileAudit{CheckResult: *result}
		if inv, err := InventoryRules(path); err == nil {
			file.Inventory = inv
			audit.TotalGroups += len(inv.Groups)
			audit.TotalAlerting += inv.AlertingRules
			audit.TotalRecording += inv.RecordingRules
		}

		if result.Passed {
			audit.Passed++
		} else {
			audit.Failed++
		}
		audit.Files = append(audit.Files, file)
	}

	if len(audit.Files) == 0 {
		return nil, errs.ErrorOrNil()
	}
	return audit, errs.ErrorOrNil()
}

// AuditConfig checks one prometheus config file with promtool.
func AuditConfig(ctx context.Context, path string, timeout time.Duration) (*Audit, error) {
	if err := EnsureInstalled(); err != nil {
		return nil, err
	}

	promtool := &Promtool{Timeout: timeout}
	result, err := promtool.CheckConfig(ctx, path)
	if err != nil {
		return nil, err
	}

	audit := &Audit{Kind: "config", Files: []FileAudit{{CheckResult: *result}}}
	if result.Passed {
		audit.Passed++
	} else {
		audit.Failed++
	}
	return audit, nil
}
