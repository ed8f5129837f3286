package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/devhours/backend/services/common/logger"
	commonmw "github.com/devhours/backend/services/common/middleware"
	"github.com/devhours/backend/services/subscription-service/config"
	"github.com/devhours/backend/services/subscription-service/controllers"
	"github.com/devhours/backend/services/subscription-service/database"
	"github.com/devhours/backend/services/subscription-service/models"
	"github.com/devhours/backend/services/subscription-service/repository"
	"github.com/devhours/backend/services/subscription-service/routes"
	"github.com/devhours/backend/services/subscription-service/services"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[SubscriptionService] failed to load config: ", err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal("[SubscriptionService] failed to initialize logger: ", err)
	}
	defer zl.Sync()

	db, err := database.ConnectPostgres(cfg, &models.User{}, &models.Plan{}, &models.Subscription{})
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}

	userRepo := repository.NewGormUserRepo(db)
	planRepo := repository.NewGormPlanRepo(db)
	subRepo := repository.NewGormSubscriptionRepo(db)

	if err := database.SeedPlans(context.Background(), planRepo); err != nil {
		zl.Fatal("Failed to seed plans", zap.Error(err))
	}

	paymentClient := services.NewHTTPPaymentClient(
		cfg.PaymentURL, cfg.PaymentAPIKey, cfg.SharedSecret,
		cfg.WebhookBaseURL, cfg.Currency, zl,
	)

	subService := services.NewSubscriptionService(subRepo, planRepo, userRepo, paymentClient, zl)
	userService := services.NewUserService(userRepo, planRepo, subRepo, zl)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(commonmw.RequestLogger(zl))
	r.Use(commonmw.SecurityHeaders())
	r.Use(commonmw.CORSMiddleware())
	r.Use(commonmw.RateLimitMiddleware(300, 100))

	ctrl := routes.Controllers{
		Users:         &controllers.UserController{Service: userService, Logger: zl},
		Plans:         &controllers.PlanController{Repo: planRepo, Logger: zl},
		Subscriptions: &controllers.SubscriptionController{Service: subService, Logger: zl},
		Webhooks:      &controllers.WebhookController{Service: subService, Logger: zl},
	}
	routes.Register(r, ctrl, cfg.PaymentAPIKey, cfg.SharedSecret, zl)

	zl.Info("Subscription service running", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		zl.Fatal("Server failed", zap.Error(err))
	}
}
