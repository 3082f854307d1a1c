package aiclient

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	openAILightModel = "gpt-4o-mini"
	openAIHeavyModel = "gpt-4o"
)

// OpenAIClient is the alternative provider behind the same interface.
type OpenAIClient struct {
	client *openai.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{client: openai.NewClient(apiKey)}
}

func (c *OpenAIClient) ModelName(t ReportType) string {
	if t == ReportDaily {
		return openAIHeavyModel
	}
	return openAILightModel
}

func (c *OpenAIClient) Generate(ctx context.Context, opts Options) (*Result, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.ModelName(opts.Type),
		Temperature: 0.7,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemInstruction(opts.Type)},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(opts)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: no content generated")
	}

	text := resp.Choices[0].Message.Content

	return &Result{
		Markdown: text,
		JSON:     ExtractJSONBlock(text),
	}, nil
}
