package config_fx

import (
	"github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"github.com/jangguenhee/vmc-saju/pkg/config"
)

var Module = fx.Provide(
	provideConfig)

func provideConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Error loading configuration: %v", err)
	}
	return cfg
}
