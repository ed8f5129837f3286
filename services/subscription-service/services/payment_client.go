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
)

// PaymentResult is the charging service's acknowledgment of an initiated
// payment. The real outcome arrives later via webhook.
type PaymentResult struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
}

// PaymentClient initiates a charge with the payment service.
type PaymentClient interface {
	SendPaymentRequest(ctx context.Context, subscriptionID, userID string, amount float64) (*PaymentResult, error)
}

type initiateRequest struct {
	SubscriptionID string  `json:"subscriptionId"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	UserID         string  `json:"userId"`
	WebhookURL     string  `json:"webhookUrl"`
}

// HTTPPaymentClient signs and POSTs payment initiations to the payment
// service. Any transport failure or non-2xx response is returned as an error;
// the caller decides how to degrade.
type HTTPPaymentClient struct {
	Client         *http.Client
	BaseURL        string
	APIKey         string
	Secret         string
	WebhookBaseURL string
	Currency       string
	Logger         *zap.Logger
}

func NewHTTPPaymentClient(baseURL, apiKey, secret, webhookBaseURL, currency string, logger *zap.Logger) *HTTPPaymentClient {
	return &HTTPPaymentClient{
		Client:         &http.Client{Timeout: 10 * time.Second},
		BaseURL:        baseURL,
		APIKey:         apiKey,
		Secret:         secret,
		WebhookBaseURL: webhookBaseURL,
		Currency:       currency,
		Logger:         logger,
	}
}

func (p *HTTPPaymentClient) SendPaymentRequest(ctx context.Context, subscriptionID, userID string, amount float64) (*PaymentResult, error) {
	payload := initiateRequest{
		SubscriptionID: subscriptionID,
		Amount:         amount,
		Currency:       p.Currency,
		UserID:         userID,
		WebhookURL:     p.WebhookBaseURL + "/webhooks/payment",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	ts := signature.Timestamp(time.Now())
	sig := signature.SignPayload(p.Secret, body, ts)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/payments/initiate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderAPIKey, p.APIKey)
	req.Header.Set(middleware.HeaderSignature, sig)
	req.Header.Set(middleware.HeaderTimestamp, ts)

	resp, err := p.Client.Do(req)
	if err != nil {
		p.Logger.Warn("Payment service unreachable",
			zap.String("subscription_id", subscriptionID),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.Logger.Warn("Payment initiation rejected",
			zap.String("subscription_id", subscriptionID),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("payment service returned %d", resp.StatusCode)
	}

	var result PaymentResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}
