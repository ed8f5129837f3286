package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/devhours/backend/services/common/errors"
	"github.com/devhours/backend/services/payment-service/models"
	"github.com/devhours/backend/services/payment-service/repository"
	"github.com/devhours/backend/services/payment-service/services"
)

type PaymentController struct {
	Repo      repository.TransactionRepository
	Processor *services.SettlementProcessor
	Logger    *zap.Logger
}

type initiatePaymentRequest struct {
	SubscriptionID string  `json:"subscriptionId" binding:"required,uuid"`
	Amount         float64 `json:"amount" binding:"required,gt=0"`
	Currency       string  `json:"currency" binding:"required"`
	UserID         string  `json:"userId" binding:"required"`
	WebhookURL     string  `json:"webhookUrl" binding:"required,url"`
}

// InitiatePayment creates a pending transaction and kicks off settlement in
// the background. The caller gets the transaction id back immediately and
// learns the outcome via the webhook.
func (pc *PaymentController) InitiatePayment(c *gin.Context) {
	var req initiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txn := &models.Transaction{
		ID:             uuid.New(),
		SubscriptionID: req.SubscriptionID,
		UserID:         req.UserID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Status:         models.TransactionPending,
		Attempts:       0,
		WebhookURL:     req.WebhookURL,
	}

	if err := pc.Repo.Create(c.Request.Context(), txn); err != nil {
		pc.Logger.Error("Failed to create transaction", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save transaction"})
		return
	}

	pc.Logger.Info("Payment initiated",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("subscription_id", txn.SubscriptionID),
		zap.Float64("amount", txn.Amount),
	)

	go pc.Processor.Process(txn)

	c.JSON(http.StatusOK, gin.H{
		"transactionId": txn.ID.String(),
		"status":        "processing",
	})
}

// FindTransaction returns a single transaction by id.
func (pc *PaymentController) FindTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, apperrors.ErrInvalidInput)
		return
	}

	txn, err := pc.Repo.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperrors.HandleError(c, apperrors.ErrTransactionNotFound)
			return
		}
		pc.Logger.Error("Failed to load transaction", zap.String("id", id.String()), zap.Error(err))
		apperrors.HandleError(c, apperrors.ErrInternalServer)
		return
	}

	c.JSON(http.StatusOK, txn)
}
