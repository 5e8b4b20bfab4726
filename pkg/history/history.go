// Package history stores one small JSON file per meeting-notes run. Files are
// written atomically (temp file + rename) so a crashed run never leaves a
// half-written record behind.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/anvil-ai/cacheforge-skills/pkg/insights"
	"github.com/anvil-ai/cacheforge-skills/pkg/llm"
	"github.com/anvil-ai/cacheforge-skills/pkg/logger"
)

// Record is one completed extraction run.
type Record struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"createdAt"`
	Title     string             `json:"title,omitempty"`
	Source    string             `json:"source"`
	Format    string             `json:"format"`
	Segments  int                `json:"segments"`
	Speakers  int                `json:"speakers"`
	Model     string             `json:"model"`
	Usage     llm.Usage          `json:"usage"`
	Cost      float64            `json:"estimatedCost"`
	Insights  *insights.Insights `json:"insights"`
}

// NewID builds a run id from the run time plus a short random suffix, so ids
// sort chronologically and stay unique within a second.
func NewID(now time.Time) string {
	return now.UTC().Format("20060102T150405") + "-" + uuid.NewString()[:8]
}

// Store reads and writes run records under a single directory.
type Store struct {
	dir string
}

// DefaultDir is the per-user history location.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve home directory")
	}
	return filepath.Join(home, ".meeting-notes", "history"), nil
}

// NewStore creates the directory if needed and returns a store over it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create history directory")
	}
	return &Store{dir: dir}, nil
}

// Save persists the record, assigning an id and timestamp if unset.
func (s *Store) Save(record *Record) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.ID == "" {
		record.ID = NewID(record.CreatedAt)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal run record")
	}

	finalPath := filepath.Join(s.dir, record.ID+".json")
	tempPath := finalPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write history file")
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return errors.Wrap(err, "failed to finalize history file")
	}
	return nil
}

// Load reads one record by id.
func (s *Store) Load(id string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf("run not found: %s", id)
		}
		return nil, errors.Wrap(err, "failed to read history file")
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrapf(err, "history file for run %s is corrupted", id)
	}
	return &record, nil
}

// List returns all records newest first. Unreadable or corrupted files are
// skipped with a warning so one bad file cannot break the listing.
func (s *Store) List() ([]*Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read history directory")
	}

	var records []*Record
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		record, err := s.Load(strings.TrimSuffix(name, ".json"))
		if err != nil {
			logger.L.WithError(err).WithField("file", name).Warn("skipping unreadable history file")
			continue
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}
