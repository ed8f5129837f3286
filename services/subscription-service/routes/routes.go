package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	commonmw "github.com/devhours/backend/services/common/middleware"
	"github.com/devhours/backend/services/subscription-service/controllers"
	"github.com/devhours/backend/services/subscription-service/middleware"
)

// Controllers bundles every handler the subscription service exposes.
type Controllers struct {
	Users         *controllers.UserController
	Plans         *controllers.PlanController
	Subscriptions *controllers.SubscriptionController
	Webhooks      *controllers.WebhookController
}

// Register wires all routes. User-facing endpoints sit behind JWT auth; the
// webhook endpoint is service-to-service and requires the API key plus a valid
// request signature instead.
func Register(r *gin.Engine, ctrl Controllers, apiKey, sharedSecret string, logger *zap.Logger) {
	auth := r.Group("/auth")
	auth.POST("/register", ctrl.Users.Register)
	auth.POST("/login", ctrl.Users.Login)
	auth.GET("/profile", middleware.JWTAuth(), ctrl.Users.Profile)

	plans := r.Group("/plans")
	plans.GET("", ctrl.Plans.List)
	plans.GET("/:id", ctrl.Plans.Get)

	subs := r.Group("/subscriptions", middleware.JWTAuth())
	subs.GET("", ctrl.Subscriptions.List)
	subs.POST("", ctrl.Subscriptions.Create)
	subs.GET("/overview", ctrl.Subscriptions.Overview)
	subs.GET("/:id", ctrl.Subscriptions.Get)
	subs.POST("/:id/upgrade", ctrl.Subscriptions.Upgrade)
	subs.POST("/:id/downgrade", ctrl.Subscriptions.Downgrade)
	subs.POST("/:id/cancel", ctrl.Subscriptions.Cancel)

	r.POST("/webhooks/payment",
		commonmw.APIKeyAuth(apiKey),
		commonmw.SignatureAuth(sharedSecret, logger),
		ctrl.Webhooks.HandlePaymentWebhook,
	)
}
