package contextscan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWorkspaceFile(t *testing.T, workspace, name, content string) {
	t.Helper()
	path := filepath.Join(workspace, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanWorkspace(t *testing.T) {
	workspace := t.TempDir()
	writeWorkspaceFile(t, workspace, "SOUL.md", "You are a careful assistant.\n")
	writeWorkspaceFile(t, workspace, "MEMORY.md", "- prefers short answers\n")
	writeWorkspaceFile(t, workspace, "skills/git-helper/SKILL.md", `---
name: git-helper
description: Git workflow automation
---

# Git Helper

Run git commands on request.
`)
	writeWorkspaceFile(t, workspace, ".openclaw/rules.md", "Always confirm before pushing.\n")
	writeWorkspaceFile(t, workspace, "notes.txt", "not a context file\n")

	files, err := ScanWorkspace(workspace, HeuristicEstimator{})
	require.NoError(t, err)

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
		assert.Greater(t, f.Tokens, 0, "%s should have a token estimate", f.Name)
		assert.NotEmpty(t, f.Content)
	}
	assert.Equal(t, []string{
		"SOUL.md",
		"MEMORY.md",
		"skills/git-helper/SKILL.md",
		".openclaw/rules.md",
	}, names)

	assert.Equal(t, "git-helper", files[2].Title, "skill title comes from frontmatter")
	assert.Empty(t, files[0].Title)
}

func TestScanWorkspace_SkillWithoutFrontmatter(t *testing.T) {
	workspace := t.TempDir()
	writeWorkspaceFile(t, workspace, "skills/bare/SKILL.md", "# Bare skill\n\nNo frontmatter here.\n")

	files, err := ScanWorkspace(workspace, HeuristicEstimator{})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "skills/bare/SKILL.md", files[0].Name)
	assert.Empty(t, files[0].Title)
}

func TestScanWorkspace_Missing(t *testing.T) {
	_, err := ScanWorkspace(filepath.Join(t.TempDir(), "nope"), HeuristicEstimator{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workspace not found")
}

func TestScanWorkspace_Empty(t *testing.T) {
	files, err := ScanWorkspace(t.TempDir(), HeuristicEstimator{})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCategory(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"SOUL.md", "System Prompts"},
		{"SYSTEM.md", "System Prompts"},
		{"PERSONA.md", "System Prompts"},
		{"INSTRUCTIONS.md", "System Prompts"},
		{"MEMORY.md", "Memory & State"},
		{"CONTEXT.md", "Memory & State"},
		{"skills/git-helper/SKILL.md", "Skill Definitions"},
		{".openclaw/rules.md", "Configuration"},
		{"README.md", "Other"},
		{"CLAUDE.md", "Other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Category(tt.name), tt.name)
	}
}
