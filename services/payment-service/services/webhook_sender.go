package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/devhours/backend/services/common/middleware"
	"github.com/devhours/backend/services/common/signature"
	"github.com/devhours/backend/services/payment-service/models"
	"github.com/devhours/backend/services/payment-service/repository"
)

// MaxRetries is the total number of delivery attempts for one transaction.
const MaxRetries = 5

// DefaultBackoff returns the delay after the n-th failed attempt (0-based):
// 1s, 2s, 4s, 8s, 16s.
func DefaultBackoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

// WebhookSender delivers the settlement outcome to the subscription service.
// Deliver runs attempts strictly sequentially for its transaction; the
// dispatcher guarantees only one Deliver is in flight per transaction id, so
// the Attempts counter is never mutated concurrently.
type WebhookSender struct {
	Client     *http.Client
	Repo       repository.TransactionRepository
	Secret     string
	APIKey     string
	MaxRetries int
	Backoff    func(attempt int) time.Duration
	Logger     *zap.Logger
}

func NewWebhookSender(repo repository.TransactionRepository, secret, apiKey string, logger *zap.Logger) *WebhookSender {
	return &WebhookSender{
		Client:     &http.Client{Timeout: 10 * time.Second},
		Repo:       repo,
		Secret:     secret,
		APIKey:     apiKey,
		MaxRetries: MaxRetries,
		Backoff:    DefaultBackoff,
		Logger:     logger,
	}
}

// Deliver posts the signed webhook until it succeeds or retries are
// exhausted. Each attempt bumps and persists the attempts counter. Exhaustion
// is terminal: it is logged for operators and never surfaced to a caller.
func (s *WebhookSender) Deliver(ctx context.Context, txn *models.Transaction) error {
	for {
		attemptNo := txn.Attempts
		err := s.post(ctx, txn)

		txn.Attempts++
		if uerr := s.Repo.UpdateAttempts(ctx, txn.ID, txn.Attempts); uerr != nil {
			s.Logger.Error("Failed to persist webhook attempt count",
				zap.String("transaction_id", txn.ID.String()),
				zap.Error(uerr),
			)
		}

		if err == nil {
			s.Logger.Info("Webhook delivered",
				zap.String("transaction_id", txn.ID.String()),
				zap.String("subscription_id", txn.SubscriptionID),
				zap.Int("attempts", txn.Attempts),
			)
			return nil
		}

		if txn.Attempts >= s.MaxRetries {
			s.Logger.Error("Webhook delivery failed permanently",
				zap.String("transaction_id", txn.ID.String()),
				zap.String("subscription_id", txn.SubscriptionID),
				zap.String("webhook_url", txn.WebhookURL),
				zap.Int("attempts", txn.Attempts),
				zap.Error(err),
			)
			return err
		}

		s.Logger.Warn("Webhook delivery failed, retrying",
			zap.String("transaction_id", txn.ID.String()),
			zap.Int("attempts", txn.Attempts),
			zap.Error(err),
		)

		select {
		case <-time.After(s.Backoff(attemptNo)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *WebhookSender) post(ctx context.Context, txn *models.Transaction) error {
	payload := models.WebhookPayload{
		TransactionID:  txn.ID.String(),
		SubscriptionID: txn.SubscriptionID,
		Status:         string(txn.Status),
		Amount:         txn.Amount,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	ts := signature.Timestamp(time.Now())
	sig := signature.SignPayload(s.Secret, body, ts)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, txn.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderAPIKey, s.APIKey)
	req.Header.Set(middleware.HeaderSignature, sig)
	req.Header.Set(middleware.HeaderTimestamp, ts)

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned %d", resp.StatusCode)
	}
	return nil
}
