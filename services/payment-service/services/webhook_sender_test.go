package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/devhours/backend/services/common/signature"
	"github.com/devhours/backend/services/payment-service/models"
)

// memoryTxnRepo records attempt persistence without a database.
type memoryTxnRepo struct {
	mu       sync.Mutex
	attempts map[uuid.UUID]int
	statuses map[uuid.UUID]models.TransactionStatus
}

func newMemoryTxnRepo() *memoryTxnRepo {
	return &memoryTxnRepo{
		attempts: make(map[uuid.UUID]int),
		statuses: make(map[uuid.UUID]models.TransactionStatus),
	}
}

func (r *memoryTxnRepo) Create(ctx context.Context, txn *models.Transaction) error {
	return nil
}

func (r *memoryTxnRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return nil, nil
}

func (r *memoryTxnRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.TransactionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[id] = status
	return nil
}

func (r *memoryTxnRepo) UpdateAttempts(ctx context.Context, id uuid.UUID, attempts int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[id] = attempts
	return nil
}

func testTransaction() *models.Transaction {
	return &models.Transaction{
		ID:             uuid.New(),
		SubscriptionID: uuid.NewString(),
		UserID:         uuid.NewString(),
		Amount:         60.00,
		Currency:       "AED",
		Status:         models.TransactionSuccess,
		WebhookURL:     "http://unset",
	}
}

func testSender(repo *memoryTxnRepo) *WebhookSender {
	s := NewWebhookSender(repo, "shared-secret", "service-key", zap.NewNop())
	s.Backoff = func(int) time.Duration { return 0 }
	return s
}

func TestDeliverSuccessFirstAttempt(t *testing.T) {
	var got models.WebhookPayload
	var headers http.Header

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		dec := json.NewDecoder(r.Body)
		_ = dec.Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	repo := newMemoryTxnRepo()
	sender := testSender(repo)
	txn := testTransaction()
	txn.WebhookURL = srv.URL

	err := sender.Deliver(context.Background(), txn)

	assert.NoError(t, err)
	assert.Equal(t, 1, txn.Attempts)
	assert.Equal(t, 1, repo.attempts[txn.ID])
	assert.Equal(t, txn.ID.String(), got.TransactionID)
	assert.Equal(t, txn.SubscriptionID, got.SubscriptionID)
	assert.Equal(t, "success", got.Status)
	assert.InDelta(t, 60.00, got.Amount, 0.001)
	assert.NotEmpty(t, headers.Get("x-api-key"))
	assert.NotEmpty(t, headers.Get("x-signature"))
	assert.NotEmpty(t, headers.Get("x-timestamp"))
}

func TestDeliverSignsExactBodyBytes(t *testing.T) {
	var verified bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		verified = signature.VerifySignature(
			"shared-secret",
			r.Header.Get("x-signature"),
			r.Header.Get("x-timestamp"),
			body,
		)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	repo := newMemoryTxnRepo()
	sender := testSender(repo)
	txn := testTransaction()
	txn.WebhookURL = srv.URL

	assert.NoError(t, sender.Deliver(context.Background(), txn))
	assert.True(t, verified, "receiver must be able to verify the signature over the raw body")
}

func TestDeliverRetriesUntilSuccess(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	repo := newMemoryTxnRepo()
	sender := testSender(repo)
	txn := testTransaction()
	txn.WebhookURL = srv.URL

	err := sender.Deliver(context.Background(), txn)

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, txn.Attempts)
	assert.Equal(t, 3, repo.attempts[txn.ID])
}

func TestDeliverStopsAtMaxRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	repo := newMemoryTxnRepo()
	sender := testSender(repo)
	txn := testTransaction()
	txn.WebhookURL = srv.URL

	err := sender.Deliver(context.Background(), txn)

	assert.Error(t, err)
	assert.Equal(t, MaxRetries, calls, "no attempt beyond MaxRetries")
	assert.Equal(t, MaxRetries, txn.Attempts)
	assert.Equal(t, MaxRetries, repo.attempts[txn.ID])
}

func TestDeliverTreatsNetworkErrorAsFailure(t *testing.T) {
	repo := newMemoryTxnRepo()
	sender := testSender(repo)
	txn := testTransaction()
	txn.WebhookURL = "http://127.0.0.1:1" // nothing listens here

	err := sender.Deliver(context.Background(), txn)

	assert.Error(t, err)
	assert.Equal(t, MaxRetries, txn.Attempts)
}

func TestDefaultBackoffSchedule(t *testing.T) {
	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
	}
	for attempt, expected := range want {
		assert.Equal(t, expected, DefaultBackoff(attempt), "attempt %d", attempt)
	}
}
