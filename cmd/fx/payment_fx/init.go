package payment_fx

import (
	"github.com/sirupsen/logrus"
	svix "github.com/svix/svix-webhooks/go"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/jangguenhee/vmc-saju/internal/api/controllers"
	"github.com/jangguenhee/vmc-saju/internal/repositories"
	"github.com/jangguenhee/vmc-saju/internal/services"
	"github.com/jangguenhee/vmc-saju/pkg/config"
	"github.com/jangguenhee/vmc-saju/pkg/tosspay"
)

var Module = fx.Provide(
	provideTossClient, providePaymentLogRepo,
	providePaymentService, provideSubscriptionService,
	providePaymentController, provideSubscriptionController, provideWebhookController,
)

func provideTossClient(cfg *config.Config) tosspay.Client {
	return tosspay.NewClient(cfg.TossAPIBase, cfg.TossSecretKey)
}

func providePaymentLogRepo(db *gorm.DB) repositories.PaymentLogRepository {
	return repositories.NewPaymentLogRepository(db)
}

func providePaymentService(
	userRepo repositories.UserRepository,
	paymentRepo repositories.PaymentLogRepository,
	toss tosspay.Client,
) services.PaymentService {
	return services.NewPaymentService(userRepo, paymentRepo, toss)
}

func provideSubscriptionService(userRepo repositories.UserRepository, toss tosspay.Client) services.SubscriptionService {
	return services.NewSubscriptionService(userRepo, toss)
}

func providePaymentController(paymentService services.PaymentService, cfg *config.Config) *controllers.PaymentController {
	return controllers.NewPaymentController(paymentService, cfg.AppBaseURL)
}

func provideSubscriptionController(subscriptionService services.SubscriptionService, userService services.UserService) *controllers.SubscriptionController {
	return controllers.NewSubscriptionController(subscriptionService, userService)
}

func provideWebhookController(
	paymentService services.PaymentService,
	userService services.UserService,
	cfg *config.Config,
) *controllers.WebhookController {
	verifier, err := svix.NewWebhook(cfg.IdentityWebhookSecret)
	if err != nil {
		logrus.Fatalf("Error initializing identity webhook verifier: %v", err)
	}
	return controllers.NewWebhookController(paymentService, userService, cfg.TossWebhookSecret, verifier)
}
