package user_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/jangguenhee/vmc-saju/internal/repositories"
	"github.com/jangguenhee/vmc-saju/internal/services"
	"github.com/jangguenhee/vmc-saju/pkg/config"
)

var Module = fx.Provide(
	provideUserService, provideUserRepo)

func provideUserRepo(db *gorm.DB) repositories.UserRepository {
	return repositories.NewUserRepository(db)
}

func provideUserService(userRepo repositories.UserRepository, cfg *config.Config) services.UserService {
	return services.NewUserService(userRepo, cfg.FreeTrialCount)
}
