package contextscan

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// WorkspaceFiles are the well-known context files scanned at the workspace root.
var WorkspaceFiles = []string{
	"SKILL.md", "SOUL.md", "MEMORY.md", "AGENTS.md", "TOOLS.md",
	"CLAUDE.md", "SYSTEM.md", "PERSONA.md", "CONTEXT.md", "README.md",
	"INSTRUCTIONS.md",
}

// configDirs hold agent configuration markdown that also loads into context.
var configDirs = []string{".openclaw", ".claude", ".cursor"}

// ContextFile is one scanned file with its token estimate. Name is the
// workspace-relative identifier used in reports and snapshots.
type ContextFile struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Title   string `json:"title,omitempty"`
	Content string `json:"-"`
	Tokens  int    `json:"tokens"`
}

// DefaultWorkspace returns the standard agent workspace location.
func DefaultWorkspace() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".openclaw", "workspace")
	}
	return filepath.Join(home, ".openclaw", "workspace")
}

// ScanWorkspace collects every context file an agent would load: well-known
// root files, skills/*/SKILL.md, and markdown under agent config directories.
// Unreadable files are skipped; their errors come back aggregated alongside
// the files that did load.
func ScanWorkspace(workspace string, est Estimator) ([]ContextFile, error) {
	info, err := os.Stat(workspace)
	if err != nil {
		return nil, errors.Errorf("workspace not found: %s", workspace)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("workspace is not a directory: %s", workspace)
	}

	var files []ContextFile
	var errs *multierror.Error

	for _, name := range WorkspaceFiles {
		path := filepath.Join(workspace, name)
		if fi, err := os.Stat(path); err != nil || fi.IsDir() {
			continue
		}
		file, err := readContextFile(name, path, est)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		files = append(files, file)
	}

	skillPaths, err := doublestar.FilepathGlob(filepath.Join(workspace, "skills", "*", "SKILL.md"))
	if err == nil {
		sort.Strings(skillPaths)
		for _, path := range skillPaths {
			name := "skills/" + filepath.Base(filepath.Dir(path)) + "/SKILL.md"
			file, err := readContextFile(name, path, est)
			if err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			file.Title = skillTitle(file.Content)
			files = append(files, file)
		}
	}

	for _, dir := range configDirs {
		mdPaths, err := doublestar.FilepathGlob(filepath.Join(workspace, dir, "*.md"))
		if err != nil {
			continue
		}
		sort.Strings(mdPaths)
		for _, path := range mdPaths {
			name := dir + "/" + filepath.Base(path)
			file, err := readContextFile(name, path, est)
			if err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			files = append(files, file)
		}
	}

	return files, errs.ErrorOrNil()
}

func readContextFile(name, path string, est Estimator) (ContextFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ContextFile{}, errors.Wrapf(err, "failed to read %s", path)
	}
	content := string(data)
	return ContextFile{
		Name:    name,
		Path:    path,
		Content: content,
		Tokens:  est.Count(content),
	}, nil
}

// skillTitle pulls the display name from a SKILL.md frontmatter block.
// Missing or broken frontmatter is not an error, the skill just has no title.
func skillTitle(content string) string {
	md := goldmark.New(goldmark.WithExtensions(meta.Meta))

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert([]byte(content), &buf, parser.WithContext(pctx)); err != nil {
		return ""
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return ""
	}
	title, _ := metaData["name"].(string)
	return title
}

// Categories lists the report category names in display order.
var Categories = []string{
	"System Prompts",
	"Memory & State",
	"Skill Definitions",
	"Configuration",
	"Other",
}

// Category buckets a scanned file name for the report's distribution view.
func Category(name string) string {
	switch {
	case name == "SOUL.md" || name == "SYSTEM.md" || name == "PERSONA.md" || name == "INSTRUCTIONS.md":
		return "System Prompts"
	case name == "MEMORY.md" || name == "CONTEXT.md":
		return "Memory & State"
	case strings.HasPrefix(name, "skills/"):
		return "Skill Definitions"
	case strings.HasPrefix(name, "."):
		return "Configuration"
	default:
		return "Other"
	}
}
