// Package chatbench benchmarks OpenAI-compatible chat endpoints: it replays
// a prompt suite, measures latency and token usage, and estimates cost so
// direct-provider and gateway runs can be compared.
package chatbench

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PromptCase is one named benchmark prompt.
type PromptCase struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Messages    []Message `json:"messages"`
}

// Shared by two built-in cases: a large identical system prompt is the
// easiest way to demonstrate prompt-cache hits.
const analystSystemPrompt = "You are an expert financial analyst with deep knowledge of " +
	"global markets, derivatives, risk management, portfolio theory, " +
	"macroeconomic indicators, central bank policies, and quantitative " +
	"finance. You specialize in analyzing market trends, evaluating " +
	"investment strategies, and providing detailed risk assessments. " +
	"Your analysis should be thorough, data-driven, and consider " +
	"multiple perspectives including bull and bear cases. Always " +
	"provide specific metrics, ratios, and benchmarks when relevant. " +
	"Consider regulatory implications, geopolitical risks, and " +
	"cross-asset correlations in your analysis. When discussing " +
	"strategies, include risk-adjusted return metrics such as Sharpe " +
	"ratio, Sortino ratio, and maximum drawdown. Provide your " +
	"analysis in a structured format with clear sections for " +
	"executive summary, detailed analysis, risk factors, and " +
	"actionable recommendations. Always caveat your analysis with " +
	"appropriate disclaimers about market uncertainty and the " +
	"limitations of any predictive model."

const toolHeavyContent = `{"query": "Look up the weather in San Francisco and book a restaurant", ` +
	`"tools": [` +
	`{"type": "function", "function": {"name": "get_weather", "description": "Get current weather for a location", ` +
	`"parameters": {"type": "object", "properties": {"location": {"type": "string", "description": "City name"}, ` +
	`"units": {"type": "string", "enum": ["celsius", "fahrenheit"]}}, "required": ["location"]}}}, ` +
	`{"type": "function", "function": {"name": "search_restaurants", "description": "Search for restaurants by cuisine and location", ` +
	`"parameters": {"type": "object", "properties": {"location": {"type": "string"}, "cuisine": {"type": "string"}, ` +
	`"price_range": {"type": "string", "enum": ["$", "$$", "$$$", "$$$$"]}, "party_size": {"type": "integer"}}, ` +
	`"required": ["location"]}}}, ` +
	`{"type": "function", "function": {"name": "make_reservation", "description": "Make a restaurant reservation", ` +
	`"parameters": {"type": "object", "properties": {"restaurant_id": {"type": "string"}, ` +
	`"date": {"type": "string", "format": "date"}, "time": {"type": "string"}, "party_size": {"type": "integer"}}, ` +
	`"required": ["restaurant_id", "date", "time", "party_size"]}}}]}`

// BuiltinSuite returns the standard six-case suite. Each case targets a
// different caching or cost profile.
func BuiltinSuite() []PromptCase {
	return []PromptCase{
		{
			Name:        "Short Chat",
			Description: "Baseline latency - minimal prompt",
			Messages: []Message{
				{Role: "user", Content: "What is 2 + 2?"},
			},
		},
		{
			Name:        "Long System Prompt",
			Description: "Cache-hit potential - large system prompt, short query",
			Messages: []Message{
				{Role: "system", Content: analystSystemPrompt},
				{Role: "user", Content: "What's the outlook for US treasuries this quarter?"},
			},
		},
		{
			Name:        "Tool-Heavy Request",
			Description: "Vault Mode potential - JSON tool definitions",
			Messages: []Message{
				{Role: "system", Content: "You are a helpful assistant with access to tools."},
				{Role: "user", Content: toolHeavyContent},
			},
		},
		{
			Name:        "Multi-Turn Conversation",
			Description: "Context accumulation - 4-turn dialogue",
			Messages: []Message{
				{Role: "system", Content: "You are a helpful coding assistant."},
				{Role: "user", Content: "I need to build a REST API in Python. What framework should I use?"},
				{Role: "assistant", Content: "For a REST API in Python, I'd recommend FastAPI. It's modern, fast, has automatic OpenAPI docs, and great type hints support. Flask is also a solid choice if you prefer simplicity."},
				{Role: "user", Content: "Let's go with FastAPI. How do I set up the project structure?"},
				{Role: "assistant", Content: "Here's a recommended structure:\n\n```\nmy-api/\n  app/\n    __init__.py\n    main.py\n    routers/\n    models/\n    schemas/\n  tests/\n  requirements.txt\n```\n\nStart with `main.py` as the entry point with your FastAPI app instance."},
				{Role: "user", Content: "Now add a users endpoint with CRUD operations and Pydantic models."},
			},
		},
		{
			Name:        "Code Generation",
			Description: "Medium complexity - generate a Python class",
			Messages: []Message{
				{Role: "user", Content: "Write a Python class called `LRUCache` that implements a " +
					"least-recently-used cache with the following features:\n" +
					"- Constructor takes `capacity: int`\n" +
					"- `get(key)` returns the value or -1 if not found\n" +
					"- `put(key, value)` inserts or updates the value\n" +
					"- Both operations should be O(1) time complexity\n" +
					"- Use a doubly linked list and a hash map\n" +
					"- Include type hints and a docstring"},
			},
		},
		{
			Name:        "Repeated System Prompt",
			Description: "Cache-hit potential - identical system prompt, different query",
			Messages: []Message{
				{Role: "system", Content: analystSystemPrompt},
				{Role: "user", Content: "Summarize the key risks of investing in emerging market bonds."},
			},
		},
	}
}

// InlineSuite wraps ad-hoc prompt text as a one-case suite.
func InlineSuite(text string) []PromptCase {
	return []PromptCase{{
		Name:        "Inline Prompt",
		Description: "User-provided inline prompt",
		Messages:    []Message{{Role: "user", Content: text}},
	}}
}

const suiteSchemaJSON = `{
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["messages"],
    "properties": {
      "name": {"type": "string"},
      "description": {"type": "string"},
      "messages": {
        "type": "array",
        "minItems": 1,
        "items": {
          "type": "object",
          "required": ["role", "content"],
          "properties": {
            "role": {"type": "string", "enum": ["system", "user", "assistant"]},
            "content": {"type": "string"}
          }
        }
      }
    }
  }
}`

var suiteSchema = func() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(suiteSchemaJSON))
	if err != nil {
		panic(err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("suite.json", doc); err != nil {
		panic(err)
	}
	return compiler.MustCompile("suite.json")
}()

// LoadSuite reads a custom prompt suite from a JSON file, validating it
// against the suite schema before anything is sent to a provider.
func LoadSuite(path string) ([]PromptCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read prompts file")
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "%s is not valid JSON", path)
	}
	if err := suiteSchema.Validate(doc); err != nil {
		return nil, errors.Wrapf(err, "%s does not match the prompt suite format", path)
	}

	var cases []PromptCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, errors.Wrapf(err, "failed to decode prompts from %s", path)
	}
	for i := range cases {
		if cases[i].Name == "" {
			cases[i].Name = fmt.Sprintf("Custom #%d", i+1)
		}
		if cases[i].Description == "" {
			cases[i].Description = "User-provided prompt"
		}
	}
	return cases, nil
}
