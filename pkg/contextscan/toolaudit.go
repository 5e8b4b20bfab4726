package contextscan

import (
	"encoding/json"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// ToolDef is one tool definition pulled out of an agent config.
type ToolDef struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Server      string   `json:"server,omitempty"`
	Tokens      int      `json:"tokens"`
	Params      []string `json:"params,omitempty"`
}

// rawTool covers the shapes tool entries take across agent configs: flat
// name/description pairs, OpenAI-style nested function objects, and MCP
// server tool lists.
type rawTool struct {
	Name        string         `mapstructure:"name"`
	Description string         `mapstructure:"description"`
	Server      string         `mapstructure:"server"`
	Parameters  map[string]any `mapstructure:"parameters"`
	InputSchema map[string]any `mapstructure:"input_schema"`
	Function    struct {
		Name        string         `mapstructure:"name"`
		Description string         `mapstructure:"description"`
		Parameters  map[string]any `mapstructure:"parameters"`
	} `mapstructure:"function"`
}

// ParseToolDefinitions reads tool definitions from a config file. It accepts
// a top-level "tools" array, a "functions" array, or an "mcpServers" map of
// {server: {tools: [...]}}.
func ParseToolDefinitions(configPath string, est Estimator) ([]ToolDef, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", configPath)
	}

	var config map[string]any
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrapf(err, "%s is not valid JSON", configPath)
	}

	entries := toolEntries(config)
	tools := make([]ToolDef, 0, len(entries))
	for _, entry := range entries {
		if tool, ok := decodeTool(entry, est); ok {
			tools = append(tools, tool)
		}
	}
	return tools, nil
}

// toolEntries finds the tool list in the config, expanding an mcpServers map
// into a flat list with the server name attached.
func toolEntries(config map[string]any) []map[string]any {
	for _, key := range []string{"tools", "functions"} {
		if list, ok := config[key].([]any); ok {
			return castEntries(list)
		}
	}

	servers, ok := config["mcpServers"].(map[string]any)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)

	var entries []map[string]any
	for _, name := range names {
		conf, ok := servers[name].(map[string]any)
		if !ok {
			continue
		}
		list, ok := conf["tools"].([]any)
		if !ok {
			// A server without an inline tool list still costs context.
			entries = append(entries, map[string]any{"name": name, "raw": conf, "server": name})
			continue
		}
		for _, item := range list {
			if tool, ok := item.(map[string]any); ok {
				if _, exists := tool["server"]; !exists {
					tool["server"] = name
				}
				entries = append(entries, tool)
			}
		}
	}
	return entries
}

func castEntries(list []any) []map[string]any {
	entries := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if entry, ok := item.(map[string]any); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// decodeTool flattens one config entry into a ToolDef. The token weight is
// estimated over the entry's full JSON, which is what the model actually sees.
func decodeTool(entry map[string]any, est Estimator) (ToolDef, bool) {
	var rt rawTool
	if err := mapstructure.Decode(entry, &rt); err != nil {
		return ToolDef{}, false
	}

	name := rt.Name
	if name == "" {
		name = rt.Function.Name
	}
	if name == "" {
		name = "unknown"
	}
	description := rt.Description
	if description == "" {
		description = rt.Function.Description
	}

	schema := rt.Parameters
	if schema == nil {
		schema = rt.InputSchema
	}
	if schema == nil {
		schema = rt.Function.Parameters
	}
	var params []string
	if props, ok := schema["properties"].(map[string]any); ok {
		for param := range props {
			params = append(params, param)
		}
		sort.Strings(params)
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return ToolDef{}, false
	}

	return ToolDef{
		Name:        name,
		Description: description,
		Server:      rt.Server,
		Tokens:      est.Count(string(raw)),
		Params:      params,
	}, true
}

// Overlap flags two tools that likely duplicate each other.
type Overlap struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Reason string `json:"reason"`
}

var (
	nameSplitRe   = regexp.MustCompile(`[_\s]+`)
	nameStopwords = map[string]struct{}{"get": {}, "set": {}, "list": {}, "the": {}, "a": {}}
	descStopwords = map[string]struct{}{
		"the": {}, "a": {}, "an": {}, "to": {}, "of": {}, "and": {}, "is": {}, "in": {},
	}
)

// FindOverlaps compares every tool pair, flagging names that share most of
// their significant words and descriptions with heavy word overlap.
func FindOverlaps(tools []ToolDef) []Overlap {
	var overlaps []Overlap
	for i := 0; i < len(tools); i++ {
		for j := i + 1; j < len(tools); j++ {
			a, b := tools[i], tools[j]

			wordsA := nameWords(a.Name)
			wordsB := nameWords(b.Name)
			shared := intersect(wordsA, wordsB)
			longest := max(len(wordsA), len(wordsB), 1)
			if len(shared) >= 1 && float64(len(shared))/float64(longest) > 0.5 {
				overlaps = append(overlaps, Overlap{A: a.Name, B: b.Name, Reason: "Similar names"})
				continue
			}

			if a.Description == "" || b.Description == "" {
				continue
			}
			descA := descWords(a.Description)
			descB := descWords(b.Description)
			if len(descA) == 0 || len(descB) == 0 {
				continue
			}
			smallest := min(len(descA), len(descB))
			if float64(len(intersect(descA, descB)))/float64(smallest) > 0.6 {
				overlaps = append(overlaps, Overlap{A: a.Name, B: b.Name, Reason: "Similar descriptions"})
			}
		}
	}
	return overlaps
}

func nameWords(name string) map[string]struct{} {
	normalized := strings.ToLower(name)
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, ".", "_")

	words := make(map[string]struct{})
	for _, w := range nameSplitRe.Split(normalized, -1) {
		if w == "" {
			continue
		}
		if _, stop := nameStopwords[w]; !stop {
			words[w] = struct{}{}
		}
	}
	return words
}

func descWords(desc string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(desc)) {
		if _, stop := descStopwords[w]; !stop {
			words[w] = struct{}{}
		}
	}
	return words
}

func intersect(a, b map[string]struct{}) []string {
	var shared []string
	for w := range a {
		if _, ok := b[w]; ok {
			shared = append(shared, w)
		}
	}
	return shared
}

// ToolAudit is the result of auditing a config's tool definitions.
type ToolAudit struct {
	Config      string    `json:"config"`
	Tools       []ToolDef `json:"tools"`
	TotalTokens int       `json:"total_tokens"`
	Overlaps    []Overlap `json:"overlaps,omitempty"`
}

// AuditTools parses and audits the tool definitions in an agent config.
func AuditTools(configPath string, est Estimator) (*ToolAudit, error) {
	tools, err := ParseToolDefinitions(configPath, est)
	if err != nil {
		return nil, err
	}

	audit := &ToolAudit{Config: configPath, Tools: tools}
	for _, t := range tools {
		audit.TotalTokens += t.Tokens
	}
	audit.Overlaps = FindOverlaps(tools)
	return audit, nil
}

// HeavyTools returns tools costing more than twice the average definition.
func (ta *ToolAudit) HeavyTools() []ToolDef {
	if len(ta.Tools) == 0 {
		return nil
	}
	threshold := float64(ta.TotalTokens) / float64(len(ta.Tools)) * 2
	var heavy []ToolDef
	for _, t := range ta.Tools {
		if float64(t.Tokens) > threshold {
			heavy = append(heavy, t)
		}
	}
	return heavy
}

// VerboseTools returns tools whose descriptions exceed 300 characters.
func (ta *ToolAudit) VerboseTools() []ToolDef {
	var verbose []ToolDef
	for _, t := range ta.Tools {
		if len(t.Description) > 300 {
			verbose = append(verbose, t)
		}
	}
	return verbose
}
