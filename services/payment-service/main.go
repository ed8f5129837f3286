package main

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/devhours/backend/services/common/logger"
	"github.com/devhours/backend/services/common/middleware"
	"github.com/devhours/backend/services/payment-service/config"
	"github.com/devhours/backend/services/payment-service/controllers"
	"github.com/devhours/backend/services/payment-service/database"
	"github.com/devhours/backend/services/payment-service/kafka"
	"github.com/devhours/backend/services/payment-service/models"
	"github.com/devhours/backend/services/payment-service/repository"
	"github.com/devhours/backend/services/payment-service/routes"
	"github.com/devhours/backend/services/payment-service/services"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[PaymentService] failed to load config: ", err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal("[PaymentService] failed to initialize logger: ", err)
	}
	defer zl.Sync()

	db, err := database.ConnectPostgres(cfg, &models.Transaction{})
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}

	txnRepo := repository.NewGormTransactionRepo(db)

	var events services.SettlementEventPublisher
	if cfg.KafkaBrokers != "" {
		producer := kafka.NewSettlementEventProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic, zl)
		defer producer.Close()
		events = producer
	}

	sender := services.NewWebhookSender(txnRepo, cfg.SharedSecret, cfg.APIKey, zl)
	dispatcher := services.NewWebhookDispatcher(sender)

	processor := &services.SettlementProcessor{
		Repo:       txnRepo,
		Policy:     services.PolicyForSuccessRate(cfg.SettlementSuccessRate),
		Delay:      cfg.SettlementDelay,
		Dispatcher: dispatcher,
		Events:     events,
		Logger:     zl,
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(zl))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RateLimitMiddleware(300, 100))

	pc := &controllers.PaymentController{
		Repo:      txnRepo,
		Processor: processor,
		Logger:    zl,
	}
	routes.RegisterPaymentRoutes(r, pc, cfg.APIKey, cfg.SharedSecret, zl)

	zl.Info("Payment service running", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		zl.Fatal("Server failed", zap.Error(err))
	}
}
