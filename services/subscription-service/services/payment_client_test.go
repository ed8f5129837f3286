package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/devhours/backend/services/common/middleware"
	"github.com/devhours/backend/services/common/signature"
)

func paymentClientFor(url string) *HTTPPaymentClient {
	client := NewHTTPPaymentClient(url, "client-key", "client-secret", "http://subs.local", "AED", zap.NewNop())
	return client
}

func TestSendPaymentRequestSignsExactBody(t *testing.T) {
	var gotBody []byte
	var gotHeaders http.Header

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotHeaders = r.Header.Clone()
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"transactionId": "txn-9", "status": "processing"})
	}))
	defer srv.Close()

	result, err := paymentClientFor(srv.URL).SendPaymentRequest(context.Background(), "sub-1", "user-1", 20.0)

	assert.NoError(t, err)
	assert.Equal(t, "txn-9", result.TransactionID)
	assert.Equal(t, "processing", result.Status)

	assert.Equal(t, "client-key", gotHeaders.Get(middleware.HeaderAPIKey))
	ts := gotHeaders.Get(middleware.HeaderTimestamp)
	assert.NotEmpty(t, ts)
	// The signature must verify over the bytes that were actually sent.
	assert.True(t, signature.VerifySignature("client-secret", gotHeaders.Get(middleware.HeaderSignature), ts, gotBody))

	var payload map[string]any
	assert.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "sub-1", payload["subscriptionId"])
	assert.Equal(t, "user-1", payload["userId"])
	assert.Equal(t, 20.0, payload["amount"])
	assert.Equal(t, "AED", payload["currency"])
	assert.Equal(t, "http://subs.local/webhooks/payment", payload["webhookUrl"])
}

func TestSendPaymentRequestNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	result, err := paymentClientFor(srv.URL).SendPaymentRequest(context.Background(), "sub-1", "user-1", 20.0)

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestSendPaymentRequestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	result, err := paymentClientFor(srv.URL).SendPaymentRequest(context.Background(), "sub-1", "user-1", 20.0)

	assert.Error(t, err)
	assert.Nil(t, result)
}
