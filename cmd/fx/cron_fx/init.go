package cron_fx

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"github.com/jangguenhee/vmc-saju/internal/api/controllers"
	"github.com/jangguenhee/vmc-saju/internal/repositories"
	"github.com/jangguenhee/vmc-saju/internal/services"
	"github.com/jangguenhee/vmc-saju/pkg/aiclient"
	"github.com/jangguenhee/vmc-saju/pkg/config"
	"github.com/jangguenhee/vmc-saju/pkg/tosspay"
	"github.com/jangguenhee/vmc-saju/pkg/utils"
)

var Module = fx.Options(
	fx.Provide(provideBillingService, provideReportService, provideCronController),
	fx.Invoke(startScheduler),
)

func provideBillingService(
	userRepo repositories.UserRepository,
	paymentRepo repositories.PaymentLogRepository,
	toss tosspay.Client,
	cfg *config.Config,
) services.BillingService {
	return services.NewBillingService(userRepo, paymentRepo, toss, cfg.MonthlyPrice)
}

func provideReportService(
	userRepo repositories.UserRepository,
	analysisRepo repositories.AnalysisRepository,
	ai aiclient.Client,
	retry aiclient.RetryConfig,
) services.ReportService {
	return services.NewReportService(userRepo, analysisRepo, ai, retry)
}

func provideCronController(billingService services.BillingService, reportService services.ReportService, cfg *config.Config) *controllers.CronController {
	return controllers.NewCronController(billingService, reportService, cfg.CronSecret)
}

// startScheduler runs the batch jobs in-process on KST schedules. An
// external scheduler hitting the /cron endpoints can replace it by
// setting ENABLE_SCHEDULER=false; the conditional claims in the
// repositories keep the two paths safe to overlap.
func startScheduler(
	lc fx.Lifecycle,
	cfg *config.Config,
	billingService services.BillingService,
	reportService services.ReportService,
) error {
	if !cfg.EnableScheduler {
		logrus.Info("in-process scheduler disabled")
		return nil
	}

	scheduler := cron.New(cron.WithLocation(utils.KST()))

	if _, err := scheduler.AddFunc(cfg.BillingCron, func() {
		if _, err := billingService.RunBillingCycle(context.Background(), utils.Today()); err != nil {
			logrus.Errorf("scheduled billing cycle failed: %v", err)
		}
	}); err != nil {
		return err
	}

	if _, err := scheduler.AddFunc(cfg.DailyReportCron, func() {
		if _, err := reportService.RunDailyReports(context.Background(), utils.Today()); err != nil {
			logrus.Errorf("scheduled daily report run failed: %v", err)
		}
	}); err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			scheduler.Start()
			logrus.Infof("scheduler started: billing %q, daily report %q", cfg.BillingCron, cfg.DailyReportCron)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopCtx := scheduler.Stop()
			select {
			case <-stopCtx.Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
	return nil
}
