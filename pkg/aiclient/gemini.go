package aiclient

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	geminiFlashModel = "gemini-2.5-flash"
	geminiProModel   = "gemini-2.5-pro"
)

// GeminiClient generates readings with Google's Gemini models: the
// flash model for free/initial analyses, the pro model for daily
// reports.
type GeminiClient struct {
	client *genai.Client
}

func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

func (c *GeminiClient) ModelName(t ReportType) string {
	if t == ReportDaily {
		return geminiProModel
	}
	return geminiFlashModel
}

func (c *GeminiClient) Generate(ctx context.Context, opts Options) (*Result, error) {
	m := c.client.GenerativeModel(c.ModelName(opts.Type))
	m.SetTemperature(0.7)
	m.SetTopP(0.9)
	m.SetTopK(40)
	m.SetMaxOutputTokens(4096)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemInstruction(opts.Type))},
	}

	resp, err := m.GenerateContent(ctx, genai.Text(BuildPrompt(opts)))
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini: no content generated")
	}

	text := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		text += fmt.Sprintf("%v", part)
	}

	return &Result{
		Markdown: text,
		JSON:     ExtractJSONBlock(text),
	}, nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}
