package contextscan

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cleanFile(name string, tokens int) ContextFile {
	return ContextFile{Name: name, Content: "Short guidance.\n", Tokens: tokens}
}

func TestEfficiencyScore(t *testing.T) {
	t.Run("empty workspace is perfect", func(t *testing.T) {
		assert.InDelta(t, 100, EfficiencyScore(nil, DefaultBudget), 1e-9)
	})

	t.Run("small clean workspace is perfect", func(t *testing.T) {
		files := []ContextFile{cleanFile("SOUL.md", 500)}
		assert.InDelta(t, 100, EfficiencyScore(files, DefaultBudget), 1e-9)
	})

	t.Run("heavy usage drags the size factor", func(t *testing.T) {
		files := []ContextFile{cleanFile("SOUL.md", 120_000)}
		// size 40, redundancy 100, count 100
		assert.InDelta(t, 76, EfficiencyScore(files, DefaultBudget), 1e-9)
	})

	t.Run("file count overhead", func(t *testing.T) {
		var files []ContextFile
		for i := 0; i < 12; i++ {
			files = append(files, cleanFile(fmt.Sprintf("skills/s%d/SKILL.md", i), 10))
		}
		// size 100, redundancy 100, count 60
		assert.InDelta(t, 88, EfficiencyScore(files, DefaultBudget), 1e-9)
	})

	t.Run("over budget floors the size factor", func(t *testing.T) {
		files := []ContextFile{cleanFile("SOUL.md", 250_000)}
		// size 0, redundancy 100, count 100
		assert.InDelta(t, 60, EfficiencyScore(files, DefaultBudget), 1e-9)
	})

	t.Run("redundancy factor", func(t *testing.T) {
		files := []ContextFile{{
			Name:    "SOUL.md",
			Content: "Always answer in plain English sentences.\nAlways answer in plain English sentences.\n",
			Tokens:  50,
		}}
		// one finding: redundancy 95
		assert.InDelta(t, 98.5, EfficiencyScore(files, DefaultBudget), 1e-9)
	})
}

func TestRecommendations(t *testing.T) {
	t.Run("clean workspace", func(t *testing.T) {
		recs := Recommendations([]ContextFile{cleanFile("SOUL.md", 100)}, DefaultBudget, nil)
		require.Len(t, recs, 1)
		assert.Equal(t, "Context looks well-optimized", recs[0].Text)
		assert.Zero(t, recs[0].Savings)
	})

	t.Run("large file gets a compress suggestion", func(t *testing.T) {
		files := []ContextFile{cleanFile("AGENTS.md", 25_000)}
		recs := Recommendations(files, DefaultBudget, nil)
		require.NotEmpty(t, recs)
		assert.Equal(t, "Compress AGENTS.md (12% of budget)", recs[0].Text)
		assert.Equal(t, 25_000/3, recs[0].Savings)
	})

	t.Run("memory file pruning", func(t *testing.T) {
		files := []ContextFile{cleanFile("MEMORY.md", 3_000)}
		recs := Recommendations(files, DefaultBudget, nil)
		require.NotEmpty(t, recs)
		assert.Equal(t, "Prune stale entries from MEMORY.md", recs[0].Text)
		assert.Equal(t, 1_500, recs[0].Savings)
	})

	t.Run("too many skills", func(t *testing.T) {
		var files []ContextFile
		for i := 0; i < 6; i++ {
			files = append(files, cleanFile(fmt.Sprintf("skills/s%d/SKILL.md", i), 400))
		}
		recs := Recommendations(files, DefaultBudget, nil)
		require.NotEmpty(t, recs)
		assert.Equal(t, "Review 6 installed skills (2.4K tokens total)", recs[0].Text)
		assert.Equal(t, 2_400/4, recs[0].Savings)
	})

	t.Run("redundancy issues", func(t *testing.T) {
		issues := []FileIssues{{
			Name: "SOUL.md",
			Issues: []Issue{
				{Kind: "Duplicate line"}, {Kind: "Duplicate line"}, {Kind: "Duplicate line"},
				{Kind: "Repeated phrase"}, {Kind: "Repeated phrase"}, {Kind: "Long lines"},
			},
		}}
		recs := Recommendations([]ContextFile{cleanFile("SOUL.md", 1_000)}, DefaultBudget, issues)
		require.NotEmpty(t, recs)
		assert.Equal(t, "Fix 6 redundancy issues across files", recs[0].Text)
		assert.Equal(t, 100, recs[0].Savings)
	})

	t.Run("half the budget suggests splitting sessions", func(t *testing.T) {
		files := []ContextFile{cleanFile("SOUL.md", 15_000)}
		recs := Recommendations(files, 20_000, nil)
		texts := make([]string, len(recs))
		for i, rec := range recs {
			texts[i] = rec.Text
		}
		assert.Contains(t, texts, "Consider splitting context across sessions")
	})
}
