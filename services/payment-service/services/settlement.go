package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/devhours/backend/services/payment-service/models"
	"github.com/devhours/backend/services/payment-service/repository"
)

// SettlementEventPublisher is satisfied by the Kafka producer; nil disables
// the audit stream.
type SettlementEventPublisher interface {
	SendSettlementEvent(event models.SettlementEvent) error
}

// SettlementProcessor simulates charging a pending transaction. After Delay
// it applies the outcome policy, persists the terminal status and hands the
// transaction to the webhook dispatcher.
type SettlementProcessor struct {
	Repo       repository.TransactionRepository
	Policy     OutcomePolicy
	Delay      time.Duration
	Dispatcher *WebhookDispatcher
	Events     SettlementEventPublisher
	Logger     *zap.Logger
}

// Process runs the settlement for txn. Callers fire it on its own goroutine;
// the initiating request never waits for it.
func (p *SettlementProcessor) Process(txn *models.Transaction) {
	time.Sleep(p.Delay)

	status := p.Policy.Decide(txn)
	txn.Status = status

	ctx := context.Background()
	if err := p.Repo.UpdateStatus(ctx, txn.ID, status); err != nil {
		p.Logger.Error("Failed to persist settlement status",
			zap.String("transaction_id", txn.ID.String()),
			zap.Error(err),
		)
		return
	}

	p.Logger.Info("Transaction settled",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("subscription_id", txn.SubscriptionID),
		zap.String("status", string(status)),
	)

	if p.Events != nil {
		event := models.SettlementEvent{
			Type:           "settlement_" + string(status),
			TransactionID:  txn.ID.String(),
			SubscriptionID: txn.SubscriptionID,
			UserID:         txn.UserID,
			Amount:         txn.Amount,
			Currency:       txn.Currency,
			Timestamp:      time.Now().UTC(),
		}
		if err := p.Events.SendSettlementEvent(event); err != nil {
			p.Logger.Warn("Failed to publish settlement event",
				zap.String("transaction_id", txn.ID.String()),
				zap.Error(err),
			)
		}
	}

	p.Dispatcher.Enqueue(txn)
}
