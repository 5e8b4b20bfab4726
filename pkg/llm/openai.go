package llm

import (
	"context"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/anvil-ai/cacheforge-skills/pkg/logger"
)

type openaiClient struct {
	client *openai.Client
	model  string
}

func newOpenAIClient(cfg Config) (Client, error) {
	apiKey, err := resolveAPIKey(cfg.APIKey, "OPENAI_API_KEY")
	if err != nil {
		return nil, err
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &openaiClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

func (c *openaiClient) Model() string {
	return c.model
}

func (c *openaiClient) Complete(ctx context.Context, req Request) (string, Usage, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	messages := []openai.ChatCompletionMessage{}
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	response, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", Usage{}, errors.Wrap(err, "openai completion failed")
	}
	if len(response.Choices) == 0 {
		return "", Usage{}, errors.New("openai completion returned no choices")
	}

	usage := Usage{
		InputTokens:  response.Usage.PromptTokens,
		OutputTokens: response.Usage.CompletionTokens,
	}
	logger.G(ctx).WithFields(map[string]interface{}{
		"model":         c.model,
		"input_tokens":  usage.InputTokens,
		"output_tokens": usage.OutputTokens,
	}).Debug("openai completion finished")

	return response.Choices[0].Message.Content, usage, nil
}
