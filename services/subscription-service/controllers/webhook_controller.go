package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/devhours/backend/services/common/errors"
	"github.com/devhours/backend/services/subscription-service/services"
)

// WebhookController receives payment status notifications from the payment
// service. Authentication failures are rejected upstream by the signed-request
// middleware; everything that reaches the handler is answered with HTTP 200 so
// the sender never retries a protocol-level negative acknowledgment.
type WebhookController struct {
	Service *services.SubscriptionService
	Logger  *zap.Logger
}

func (wc *WebhookController) HandlePaymentWebhook(c *gin.Context) {
	var in services.WebhookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		wc.Logger.Warn("Malformed webhook payload", zap.Error(err))
		c.JSON(http.StatusOK, services.WebhookResult{OK: false, Error: "Invalid payload"})
		return
	}

	result, err := wc.Service.HandlePaymentWebhook(c.Request.Context(), in)
	if err != nil {
		wc.Logger.Error("Webhook processing failed", zap.Error(err),
			zap.String("transactionId", in.TransactionID))
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
