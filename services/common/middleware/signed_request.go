package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/devhours/backend/services/common/signature"
)

// Header names for signed service-to-service requests.
const (
	HeaderAPIKey    = "x-api-key"
	HeaderSignature = "x-signature"
	HeaderTimestamp = "x-timestamp"
)

// All auth failures collapse to a single message so callers cannot probe
// which check rejected them.
func rejectUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
}

// APIKeyAuth rejects requests whose x-api-key header does not match expected.
func APIKeyAuth(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected == "" || c.GetHeader(HeaderAPIKey) != expected {
			rejectUnauthorized(c)
			return
		}
		c.Next()
	}
}

// SignatureAuth verifies the x-signature and x-timestamp headers against the
// raw request body before any handler binds it. The body is read once and
// restored so downstream binding still works. Verification failures and stale
// timestamps both reject with the same 401.
func SignatureAuth(secret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sig := c.GetHeader(HeaderSignature)
		ts := c.GetHeader(HeaderTimestamp)
		if sig == "" || ts == "" {
			rejectUnauthorized(c)
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			rejectUnauthorized(c)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		if !signature.VerifySignature(secret, sig, ts, body) {
			logger.Warn("Signed request rejected: signature mismatch",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			rejectUnauthorized(c)
			return
		}

		if !signature.FreshTimestamp(ts, time.Now()) {
			logger.Warn("Signed request rejected: stale timestamp",
				zap.String("path", c.Request.URL.Path),
				zap.String("timestamp", ts),
			)
			rejectUnauthorized(c)
			return
		}

		c.Next()
	}
}
