package analysis_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/jangguenhee/vmc-saju/internal/api/controllers"
	"github.com/jangguenhee/vmc-saju/internal/repositories"
	"github.com/jangguenhee/vmc-saju/internal/services"
	"github.com/jangguenhee/vmc-saju/pkg/aiclient"
)

var Module = fx.Provide(
	provideAnalysisService, provideAnalysisRepo, provideEntitlementService, provideAnalysisController)

func provideAnalysisRepo(db *gorm.DB) repositories.AnalysisRepository {
	return repositories.NewAnalysisRepository(db)
}

func provideEntitlementService(analysisRepo repositories.AnalysisRepository) services.EntitlementService {
	return services.NewEntitlementService(analysisRepo)
}

func provideAnalysisService(
	userRepo repositories.UserRepository,
	analysisRepo repositories.AnalysisRepository,
	entitlement services.EntitlementService,
	ai aiclient.Client,
	retry aiclient.RetryConfig,
) services.AnalysisService {
	return services.NewAnalysisService(userRepo, analysisRepo, entitlement, ai, retry)
}

func provideAnalysisController(analysisService services.AnalysisService, userService services.UserService) *controllers.AnalysisController {
	return controllers.NewAnalysisController(analysisService, userService)
}
