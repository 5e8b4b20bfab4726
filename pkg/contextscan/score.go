package contextscan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/anvil-ai/cacheforge-skills/pkg/render"
)

// EfficiencyScore rates a workspace 0-100 from three weighted factors: total
// size against the budget (40%), redundancy findings (30%), and file count
// overhead (30%).
func EfficiencyScore(files []ContextFile, budget int) float64 {
	if len(files) == 0 {
		return 100
	}
	if budget <= 0 {
		budget = DefaultBudget
	}

	totalTokens := 0
	for _, f := range files {
		totalTokens += f.Tokens
	}
	if totalTokens == 0 {
		return 100
	}

	budgetRatio := float64(totalTokens) / float64(budget)
	var sizeScore float64
	switch {
	case budgetRatio < 0.1:
		sizeScore = 100
	case budgetRatio < 0.3:
		sizeScore = 80
	case budgetRatio < 0.5:
		sizeScore = 60
	case budgetRatio < 0.7:
		sizeScore = 40
	default:
		sizeScore = 100 - float64(int(budgetRatio*100))
		if sizeScore < 0 {
			sizeScore = 0
		}
	}

	totalIssues := 0
	for _, f := range files {
		totalIssues += len(DetectRedundancy(f.Content))
	}
	redundancyScore := float64(100 - totalIssues*5)
	if redundancyScore < 0 {
		redundancyScore = 0
	}

	var countScore float64
	switch {
	case len(files) <= 5:
		countScore = 100
	case len(files) <= 10:
		countScore = 80
	case len(files) <= 20:
		countScore = 60
	default:
		countScore = float64(100 - len(files)*2)
		if countScore < 20 {
			countScore = 20
		}
	}

	return sizeScore*0.4 + redundancyScore*0.3 + countScore*0.3
}

// Recommendation is one optimization suggestion with a rough token savings
// estimate. Savings of zero means the suggestion is structural.
type Recommendation struct {
	Text    string `json:"text"`
	Savings int    `json:"savings,omitempty"`
}

// Recommendations proposes concrete fixes, largest files first.
func Recommendations(files []ContextFile, budget int, issues []FileIssues) []Recommendation {
	if budget <= 0 {
		budget = DefaultBudget
	}

	var recs []Recommendation
	totalTokens := 0
	for _, f := range files {
		totalTokens += f.Tokens
	}

	sorted := make([]ContextFile, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Tokens > sorted[j].Tokens })
	for _, f := range sorted {
		if float64(f.Tokens) > float64(budget)*0.1 {
			recs = append(recs, Recommendation{
				Text:    fmt.Sprintf("Compress %s (%d%% of budget)", f.Name, f.Tokens*100/budget),
				Savings: f.Tokens / 3,
			})
		}
	}

	totalIssues := 0
	for _, fi := range issues {
		totalIssues += len(fi.Issues)
	}
	if totalIssues > 5 {
		recs = append(recs, Recommendation{
			Text:    fmt.Sprintf("Fix %d redundancy issues across files", totalIssues),
			Savings: totalTokens / 10,
		})
	}

	for _, f := range files {
		if f.Name == "MEMORY.md" && f.Tokens > 2000 {
			recs = append(recs, Recommendation{
				Text:    "Prune stale entries from MEMORY.md",
				Savings: f.Tokens / 2,
			})
		}
	}

	var skillCount, skillTokens int
	for _, f := range files {
		if strings.HasPrefix(f.Name, "skills/") {
			skillCount++
			skillTokens += f.Tokens
		}
	}
	if skillCount > 5 {
		recs = append(recs, Recommendation{
			Text:    fmt.Sprintf("Review %d installed skills (%s tokens total)", skillCount, render.FormatTokens(skillTokens)),
			Savings: skillTokens / 4,
		})
	}

	if float64(totalTokens) > float64(budget)*0.5 {
		recs = append(recs, Recommendation{Text: "Consider splitting context across sessions"})
	}

	if len(recs) == 0 {
		recs = append(recs, Recommendation{Text: "Context looks well-optimized"})
	}
	return recs
}
