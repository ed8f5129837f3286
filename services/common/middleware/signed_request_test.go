package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/devhours/backend/services/common/signature"
)

const testSecret = "shared-secret"

func signedRouter(handled *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhooks/payment",
		APIKeyAuth("service-key"),
		SignatureAuth(testSecret, zap.NewNop()),
		func(c *gin.Context) {
			*handled++
			c.JSON(http.StatusOK, gin.H{"ok": true})
		},
	)
	return r
}

func signedRequest(body []byte, mutate func(*http.Request)) *http.Request {
	ts := signature.Timestamp(time.Now())
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderAPIKey, "service-key")
	req.Header.Set(HeaderTimestamp, ts)
	req.Header.Set(HeaderSignature, signature.SignPayload(testSecret, body, ts))
	if mutate != nil {
		mutate(req)
	}
	return req
}

func TestSignedRequestAccepted(t *testing.T) {
	handled := 0
	r := signedRouter(&handled)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedRequest([]byte(`{"amount":20}`), nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, handled)
}

func TestMissingAPIKeyRejected(t *testing.T) {
	handled := 0
	r := signedRouter(&handled)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedRequest([]byte(`{}`), func(req *http.Request) {
		req.Header.Del(HeaderAPIKey)
	}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Unauthorized")
	assert.Equal(t, 0, handled)
}

func TestWrongAPIKeyRejected(t *testing.T) {
	handled := 0
	r := signedRouter(&handled)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedRequest([]byte(`{}`), func(req *http.Request) {
		req.Header.Set(HeaderAPIKey, "wrong-key")
	}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, handled)
}

func TestBadSignatureRejectedBeforeHandler(t *testing.T) {
	handled := 0
	r := signedRouter(&handled)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedRequest([]byte(`{"amount":20}`), func(req *http.Request) {
		req.Header.Set(HeaderSignature, "deadbeef")
	}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, handled)
	// Failure reason is not leaked.
	assert.Contains(t, w.Body.String(), "Unauthorized")
	assert.NotContains(t, w.Body.String(), "signature")
}

func TestStaleTimestampRejectedBeforeHandler(t *testing.T) {
	handled := 0
	r := signedRouter(&handled)

	body := []byte(`{"amount":20}`)
	stale := strconv.FormatInt(time.Now().Add(-10*time.Minute).UnixMilli(), 10)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedRequest(body, func(req *http.Request) {
		req.Header.Set(HeaderTimestamp, stale)
		req.Header.Set(HeaderSignature, signature.SignPayload(testSecret, body, stale))
	}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, handled)
}

func TestMissingSignatureHeadersRejected(t *testing.T) {
	handled := 0
	r := signedRouter(&handled)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedRequest([]byte(`{}`), func(req *http.Request) {
		req.Header.Del(HeaderSignature)
		req.Header.Del(HeaderTimestamp)
	}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, handled)
}
