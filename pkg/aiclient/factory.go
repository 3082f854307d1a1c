package aiclient

import (
	"context"
	"fmt"
	"strings"
)

// New creates a provider client based on config.
func New(ctx context.Context, provider, apiKey string) (Client, error) {
	switch strings.ToLower(provider) {
	case "gemini":
		return NewGeminiClient(ctx, apiKey)
	case "openai":
		return NewOpenAIClient(apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
