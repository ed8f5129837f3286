package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/devhours/backend/services/payment-service/models"
	"github.com/devhours/backend/services/payment-service/services"
)

// --- Mocks for Dependencies ---

type MockTransactionRepo struct{ mock.Mock }

func (m *MockTransactionRepo) Create(ctx context.Context, txn *models.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.TransactionStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockTransactionRepo) UpdateAttempts(ctx context.Context, id uuid.UUID, attempts int) error {
	args := m.Called(ctx, id, attempts)
	return args.Error(0)
}

func setupRouter(pc *PaymentController) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/payments/initiate", pc.InitiatePayment)
	r.GET("/payments/:id", pc.FindTransaction)
	return r
}

func controllerWithMock(repo *MockTransactionRepo) (*PaymentController, *services.WebhookDispatcher) {
	sender := services.NewWebhookSender(repo, "secret", "key", zap.NewNop())
	sender.Backoff = func(int) time.Duration { return 0 }
	dispatcher := services.NewWebhookDispatcher(sender)
	processor := &services.SettlementProcessor{
		Repo:       repo,
		Policy:     services.FixedOutcome{Status: models.TransactionSuccess},
		Delay:      0,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	}
	return &PaymentController{Repo: repo, Processor: processor, Logger: zap.NewNop()}, dispatcher
}

func TestInitiatePaymentReturnsProcessingImmediately(t *testing.T) {
	webhookSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer webhookSrv.Close()

	repo := new(MockTransactionRepo)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Transaction")).Return(nil)
	repo.On("UpdateStatus", mock.Anything, mock.Anything, models.TransactionSuccess).Return(nil)
	repo.On("UpdateAttempts", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	pc, dispatcher := controllerWithMock(repo)
	r := setupRouter(pc)

	body, _ := json.Marshal(map[string]interface{}{
		"subscriptionId": uuid.NewString(),
		"amount":         25.50,
		"currency":       "AED",
		"userId":         uuid.NewString(),
		"webhookUrl":     webhookSrv.URL,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/initiate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "processing", resp["status"])
	assert.NotEmpty(t, resp["transactionId"])

	// Let the async settlement finish before asserting persistence calls.
	dispatcher.Wait()
	repo.AssertCalled(t, "Create", mock.Anything, mock.AnythingOfType("*models.Transaction"))
}

func TestInitiatePaymentRejectsBadInput(t *testing.T) {
	repo := new(MockTransactionRepo)
	pc, _ := controllerWithMock(repo)
	r := setupRouter(pc)

	cases := []map[string]interface{}{
		{},
		{"subscriptionId": uuid.NewString(), "amount": 0, "currency": "AED", "userId": "u", "webhookUrl": "http://x"},
		{"subscriptionId": "not-a-uuid", "amount": 10, "currency": "AED", "userId": "u", "webhookUrl": "http://x"},
		{"subscriptionId": uuid.NewString(), "amount": 10, "currency": "AED", "userId": "u", "webhookUrl": "not-a-url"},
	}

	for _, payload := range cases {
		body, _ := json.Marshal(payload)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/payments/initiate", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "payload: %v", payload)
	}
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFindTransactionReturnsTransaction(t *testing.T) {
	repo := new(MockTransactionRepo)
	id := uuid.New()
	repo.On("FindByID", mock.Anything, id).Return(&models.Transaction{
		ID:             id,
		SubscriptionID: uuid.NewString(),
		Amount:         20.00,
		Currency:       "AED",
		Status:         models.TransactionSuccess,
		Attempts:       1,
	}, nil)

	pc, _ := controllerWithMock(repo)
	r := setupRouter(pc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/payments/"+id.String(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.String())
	assert.Contains(t, w.Body.String(), "success")
}

func TestFindTransactionNotFound(t *testing.T) {
	repo := new(MockTransactionRepo)
	id := uuid.New()
	repo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

	pc, _ := controllerWithMock(repo)
	r := setupRouter(pc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/payments/"+id.String(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFindTransactionBadID(t *testing.T) {
	repo := new(MockTransactionRepo)
	pc, _ := controllerWithMock(repo)
	r := setupRouter(pc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/payments/not-a-uuid", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
