package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is loaded once at process start and passed to components
// through fx. It is never re-read after Load returns.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	PostgresURL string `env:"POSTGRES_URL,required"`

	JWTSecret string `env:"JWT_SECRET,required"`

	AIProvider   string        `env:"AI_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey string        `env:"GEMINI_API_KEY"`
	OpenAIAPIKey string        `env:"OPENAI_API_KEY"`
	AITimeout    time.Duration `env:"AI_TIMEOUT" envDefault:"30s"`
	AIMaxRetries int           `env:"AI_MAX_RETRIES" envDefault:"3"`

	TossSecretKey     string `env:"TOSS_SECRET_KEY,required"`
	TossAPIBase       string `env:"TOSS_API_BASE" envDefault:"https://api.tosspayments.com/v1"`
	TossWebhookSecret string `env:"TOSS_WEBHOOK_SECRET,required"`

	IdentityWebhookSecret string `env:"CLERK_WEBHOOK_SECRET,required"`

	// CronSecret is optional; when empty the cron endpoints are open.
	CronSecret string `env:"CRON_SECRET"`

	AppBaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`

	MonthlyPrice   int64 `env:"MONTHLY_PRICE" envDefault:"3650"`
	FreeTrialCount int   `env:"FREE_TRIAL_COUNT" envDefault:"3"`

	EnableScheduler bool   `env:"ENABLE_SCHEDULER" envDefault:"true"`
	BillingCron     string `env:"BILLING_CRON" envDefault:"0 1 * * *"`
	DailyReportCron string `env:"DAILY_REPORT_CRON" envDefault:"0 0 * * *"`
}

// Load reads .env (best effort) and the process environment into a
// validated Config. Errors here are fatal for the caller.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	switch strings.ToLower(cfg.AIProvider) {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when AI_PROVIDER=gemini")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER=openai")
		}
	default:
		return nil, fmt.Errorf("unsupported AI_PROVIDER: %s", cfg.AIProvider)
	}

	if cfg.MonthlyPrice <= 0 {
		return nil, fmt.Errorf("MONTHLY_PRICE must be positive, got %d", cfg.MonthlyPrice)
	}

	return cfg, nil
}
