package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/devhours/backend/services/common/middleware"
	"github.com/devhours/backend/services/payment-service/controllers"
)

// RegisterPaymentRoutes wires the payment endpoints. /payments/initiate is a
// service-to-service call and requires both the API key and a valid request
// signature.
func RegisterPaymentRoutes(r *gin.Engine, pc *controllers.PaymentController, apiKey, sharedSecret string, logger *zap.Logger) {
	payments := r.Group("/payments")
	payments.POST("/initiate",
		middleware.APIKeyAuth(apiKey),
		middleware.SignatureAuth(sharedSecret, logger),
		pc.InitiatePayment,
	)
	payments.GET("/:id", pc.FindTransaction)
}
