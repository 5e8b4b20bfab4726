package contextscan

import (
	"encoding/json"
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// SnapshotFile is one file's footprint inside a saved snapshot.
type SnapshotFile struct {
	Tokens int    `json:"tokens"`
	Path   string `json:"path"`
}

// Snapshot captures an analysis for later comparison. Field names match the
// snapshot files written by earlier releases so existing baselines keep
// loading.
type Snapshot struct {
	Workspace   string                  `json:"workspace"`
	TotalTokens int                     `json:"total_tokens"`
	Budget      int                     `json:"budget"`
	Efficiency  float64                 `json:"efficiency"`
	Files       map[string]SnapshotFile `json:"files"`
	IssueCount  int                     `json:"issues_count"`
	CreatedAt   time.Time               `json:"created_at"`
}

// NewSnapshot converts an analysis into its persisted form.
func NewSnapshot(a *Analysis) *Snapshot {
	files := make(map[string]SnapshotFile, len(a.Files))
	for _, f := range a.Files {
		files[f.Name] = SnapshotFile{Tokens: f.Tokens, Path: f.Path}
	}
	return &Snapshot{
		Workspace:   a.Workspace,
		TotalTokens: a.TotalTokens,
		Budget:      a.Budget,
		Efficiency:  a.Efficiency,
		Files:       files,
		IssueCount:  a.IssueCount(),
		CreatedAt:   time.Now().UTC(),
	}
}

// SaveSnapshot writes the snapshot as pretty-printed JSON.
func SaveSnapshot(path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal snapshot")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write snapshot")
	}
	return nil
}

// LoadSnapshot reads a snapshot saved by a previous run.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read snapshot")
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrapf(err, "%s is not a valid snapshot", path)
	}
	return &snap, nil
}

// FileDelta is one file's token change between two snapshots. Change is one
// of "added", "removed", "grown", or "shrunk".
type FileDelta struct {
	Name   string `json:"name"`
	Before int    `json:"before"`
	After  int    `json:"after"`
	Change string `json:"change"`
}

// SnapshotDiff summarizes the movement between a baseline and a fresh scan.
type SnapshotDiff struct {
	TokensBefore     int         `json:"tokens_before"`
	TokensAfter      int         `json:"tokens_after"`
	TokensSaved      int         `json:"tokens_saved"`
	SavedPct         float64     `json:"saved_pct"`
	EfficiencyBefore float64     `json:"efficiency_before"`
	EfficiencyAfter  float64     `json:"efficiency_after"`
	IssuesBefore     int         `json:"issues_before"`
	IssuesAfter      int         `json:"issues_after"`
	Files            []FileDelta `json:"files,omitempty"`
}

// DiffSnapshots compares a baseline snapshot against a newer one. File deltas
// come back sorted by tokens saved, largest first.
func DiffSnapshots(before, after *Snapshot) *SnapshotDiff {
	diff := &SnapshotDiff{
		TokensBefore:     before.TotalTokens,
		TokensAfter:      after.TotalTokens,
		TokensSaved:      before.TotalTokens - after.TotalTokens,
		EfficiencyBefore: before.Efficiency,
		EfficiencyAfter:  after.Efficiency,
		IssuesBefore:     before.IssueCount,
		IssuesAfter:      after.IssueCount,
	}
	if before.TotalTokens > 0 {
		diff.SavedPct = float64(diff.TokensSaved) / float64(before.TotalTokens) * 100
	}

	names := make(map[string]struct{}, len(before.Files)+len(after.Files))
	for name := range before.Files {
		names[name] = struct{}{}
	}
	for name := range after.Files {
		names[name] = struct{}{}
	}

	for name := range names {
		beforeFile, inBefore := before.Files[name]
		afterFile, inAfter := after.Files[name]
		if beforeFile.Tokens == afterFile.Tokens {
			continue
		}
		change := "grown"
		switch {
		case !inBefore:
			change = "added"
		case !inAfter:
			change = "removed"
		case afterFile.Tokens < beforeFile.Tokens:
			change = "shrunk"
		}
		diff.Files = append(diff.Files, FileDelta{
			Name:   name,
			Before: beforeFile.Tokens,
			After:  afterFile.Tokens,
			Change: change,
		})
	}
	sort.Slice(diff.Files, func(i, j int) bool {
		di := diff.Files[i].Before - diff.Files[i].After
		dj := diff.Files[j].Before - diff.Files[j].After
		if di != dj {
			return di > dj
		}
		return diff.Files[i].Name < diff.Files[j].Name
	})
	return diff
}
