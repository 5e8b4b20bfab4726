package history

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anvil-ai/cacheforge-skills/pkg/insights"
	"github.com/anvil-ai/cacheforge-skills/pkg/llm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func sampleRecord() *Record {
	return &Record{
		Source:   "standup.vtt",
		Format:   "vtt",
		Segments: 12,
		Speakers: 3,
		Model:    "claude-sonnet-4-6",
		Usage:    llm.Usage{InputTokens: 900, OutputTokens: 300},
		Cost:     0.0072,
		Insights: &insights.Insights{
			Summary: "Short standup.",
			Facts: insights.Facts{
				KeyPoints: []string{"release readiness"},
			},
		},
	}
}

func TestNewID(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	id := NewID(now)
	assert.Regexp(t, regexp.MustCompile(`^20250314T092653-[0-9a-f]{8}$`), id)
	assert.NotEqual(t, id, NewID(now), "ids within the same second must differ")
}

func TestSaveAssignsIDAndTimestamp(t *testing.T) {
	store := newTestStore(t)

	record := sampleRecord()
	require.NoError(t, store.Save(record))

	assert.NotEmpty(t, record.ID)
	assert.False(t, record.CreatedAt.IsZero())
	assert.FileExists(t, filepath.Join(store.dir, record.ID+".json"))
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(sampleRecord()))

	entries, err := os.ReadDir(store.dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".tmp")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	record := sampleRecord()
	require.NoError(t, store.Save(record))

	loaded, err := store.Load(record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.Source, loaded.Source)
	assert.Equal(t, record.Usage, loaded.Usage)
	require.NotNil(t, loaded.Insights)
	assert.Equal(t, "Short standup.", loaded.Insights.Summary)
}

func TestLoadNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load("20250101T000000-deadbeef")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestListNewestFirst(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		record := sampleRecord()
		record.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		record.Title = record.CreatedAt.Format(time.RFC3339)
		require.NoError(t, store.Save(record))
	}

	records, err := store.List()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.True(t, records[0].CreatedAt.After(records[1].CreatedAt))
	assert.True(t, records[1].CreatedAt.After(records[2].CreatedAt))
}

func TestListSkipsCorruptedFiles(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(sampleRecord()))

	corrupt := filepath.Join(store.dir, "20250101T000000-badbadba.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(store.dir, "notes.txt"), []byte("ignored"), 0o644))

	records, err := store.List()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
