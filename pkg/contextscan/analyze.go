// Package contextscan measures how much of an agent's context window its
// workspace consumes: token estimates per file, redundancy findings, an
// efficiency score, tool definition audits, and snapshot comparisons.
package contextscan

// FileIssues pairs a scanned file with its redundancy findings.
type FileIssues struct {
	Name   string  `json:"name"`
	Issues []Issue `json:"issues"`
}

// Analysis is the full result of a workspace scan.
type Analysis struct {
	Workspace       string           `json:"workspace"`
	Budget          int              `json:"budget"`
	TotalTokens     int              `json:"total_tokens"`
	BudgetPct       float64          `json:"budget_pct"`
	Efficiency      float64          `json:"efficiency"`
	Files           []ContextFile    `json:"files"`
	Issues          []FileIssues     `json:"issues,omitempty"`
	Recommendations []Recommendation `json:"recommendations"`
}

// IssueCount is the total number of redundancy findings across all files.
func (a *Analysis) IssueCount() int {
	n := 0
	for _, fi := range a.Issues {
		n += len(fi.Issues)
	}
	return n
}

// Analyze scans the workspace and computes totals, findings, and
// recommendations in one pass. Individual unreadable files do not abort the
// analysis; their aggregated error is returned next to the partial result.
func Analyze(workspace string, budget int, est Estimator) (*Analysis, error) {
	if budget <= 0 {
		budget = DefaultBudget
	}

	files, scanErr := ScanWorkspace(workspace, est)
	if files == nil && scanErr != nil {
		return nil, scanErr
	}

	analysis := &Analysis{
		Workspace: workspace,
		Budget:    budget,
		Files:     files,
	}
	for _, f := range files {
		analysis.TotalTokens += f.Tokens
	}
	analysis.BudgetPct = float64(analysis.TotalTokens) / float64(budget) * 100
	analysis.Efficiency = EfficiencyScore(files, budget)

	for _, f := range files {
		if issues := DetectRedundancy(f.Content); len(issues) > 0 {
			analysis.Issues = append(analysis.Issues, FileIssues{Name: f.Name, Issues: issues})
		}
	}
	analysis.Recommendations = Recommendations(files, budget, analysis.Issues)

	return analysis, scanErr
}
