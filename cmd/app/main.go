package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"github.com/jangguenhee/vmc-saju/cmd/fx/aiclient_fx"
	"github.com/jangguenhee/vmc-saju/cmd/fx/analysis_fx"
	"github.com/jangguenhee/vmc-saju/cmd/fx/config_fx"
	"github.com/jangguenhee/vmc-saju/cmd/fx/cron_fx"
	"github.com/jangguenhee/vmc-saju/cmd/fx/db_fx"
	"github.com/jangguenhee/vmc-saju/cmd/fx/payment_fx"
	"github.com/jangguenhee/vmc-saju/cmd/fx/user_fx"
	"github.com/jangguenhee/vmc-saju/internal/api/controllers"
	"github.com/jangguenhee/vmc-saju/pkg/config"
	"github.com/jangguenhee/vmc-saju/pkg/middleware"
)

func main() {
	app := fx.New(
		config_fx.Module,
		db_fx.Module,
		aiclient_fx.Module,
		user_fx.Module,
		analysis_fx.Module,
		payment_fx.Module,
		cron_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine, cfg *config.Config) {
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logrus.Infof("Starting HTTP server at :%s", cfg.Port)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logrus.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logrus.Info("Stopping HTTP server")
			return server.Shutdown(ctx)
		},
	})
}

func ProvideRouter(
	cfg *config.Config,
	analysisController *controllers.AnalysisController,
	subscriptionController *controllers.SubscriptionController,
	paymentController *controllers.PaymentController,
	webhookController *controllers.WebhookController,
	cronController *controllers.CronController,
) *gin.Engine {

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.TraceIDMiddleware())

	RegisterRoutes(r, cfg,
		analysisController, subscriptionController,
		paymentController, webhookController, cronController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	cfg *config.Config,
	analysisController *controllers.AnalysisController,
	subscriptionController *controllers.SubscriptionController,
	paymentController *controllers.PaymentController,
	webhookController *controllers.WebhookController,
	cronController *controllers.CronController) {

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := middleware.JWTAuthMiddleware(cfg.JWTSecret)

	analysisGroup := r.Group("/analysis", auth)
	analysisGroup.POST("", analysisController.Create)
	analysisGroup.GET("/history", analysisController.History)
	analysisGroup.GET("/:id", analysisController.Get)

	subscriptionGroup := r.Group("/subscription", auth)
	subscriptionGroup.GET("/status", subscriptionController.Status)
	subscriptionGroup.POST("/cancel", subscriptionController.Cancel)

	paymentsGroup := r.Group("/payments")
	paymentsGroup.GET("/success", paymentController.Success)
	paymentsGroup.GET("/fail", paymentController.Fail)

	webhooksGroup := r.Group("/webhooks")
	webhooksGroup.POST("/identity", webhookController.Identity)
	webhooksGroup.POST("/payments", webhookController.Payments)

	cronGroup := r.Group("/cron")
	cronGroup.GET("/billing", cronController.Billing)
	cronGroup.GET("/daily-report", cronController.DailyReport)
}
