package aiclient_fx

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"github.com/jangguenhee/vmc-saju/pkg/aiclient"
	"github.com/jangguenhee/vmc-saju/pkg/config"
)

var Module = fx.Provide(
	provideAIClient, provideRetryConfig)

func provideAIClient(cfg *config.Config) aiclient.Client {
	apiKey := cfg.GeminiAPIKey
	if strings.ToLower(cfg.AIProvider) == "openai" {
		apiKey = cfg.OpenAIAPIKey
	}

	client, err := aiclient.New(context.Background(), cfg.AIProvider, apiKey)
	if err != nil {
		logrus.Fatalf("Error initializing AI client: %v", err)
	}
	return client
}

func provideRetryConfig(cfg *config.Config) aiclient.RetryConfig {
	return aiclient.DefaultRetryConfig(cfg.AIMaxRetries, cfg.AITimeout)
}
