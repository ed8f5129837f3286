package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// MaxTimestampSkew bounds the replay window for signed requests.
const MaxTimestampSkew = 5 * time.Minute

// SignPayload computes the hex-encoded HMAC-SHA256 of "{timestamp}.{body}".
// Both services sign the exact raw JSON bytes they put on the wire, so the
// canonical form is whatever was serialized — the codec never re-orders fields.
func SignPayload(secret string, body []byte, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature recomputes the expected signature and compares it in
// constant time. Malformed input never panics; it just fails verification.
func VerifySignature(secret, signature, timestamp string, body []byte) bool {
	expected := SignPayload(secret, body, timestamp)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// FreshTimestamp reports whether ts is a unix-millisecond timestamp within
// MaxTimestampSkew of now. Non-numeric timestamps are stale by definition.
func FreshTimestamp(ts string, now time.Time) bool {
	ms, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false
	}
	diff := now.UnixMilli() - ms
	if diff < 0 {
		diff = -diff
	}
	return diff <= MaxTimestampSkew.Milliseconds()
}

// Timestamp returns the current unix-millisecond timestamp as the string
// carried in the x-timestamp header.
func Timestamp(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}
