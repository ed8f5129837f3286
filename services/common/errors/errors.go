package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// JSON returns the error as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error types
var (
	ErrBadRequest     = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized   = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrForbidden      = New(http.StatusForbidden, "Forbidden", nil)
	ErrNotFound       = New(http.StatusNotFound, "Not found", nil)
	ErrConflict       = New(http.StatusConflict, "Conflict", nil)
	ErrInternalServer = New(http.StatusInternalServerError, "Internal server error", nil)
)

// Validation error types
var (
	ErrValidation   = New(http.StatusBadRequest, "Validation error", nil)
	ErrInvalidInput = New(http.StatusBadRequest, "Invalid input", nil)
)

// Authentication error types
var (
	ErrInvalidCredentials = New(http.StatusUnauthorized, "Invalid credentials", nil)
	ErrInvalidToken       = New(http.StatusUnauthorized, "Invalid token", nil)
)

// Business logic error types
var (
	ErrUserNotFound         = New(http.StatusNotFound, "User not found", nil)
	ErrPlanNotFound         = New(http.StatusNotFound, "Plan not found", nil)
	ErrSubscriptionNotFound = New(http.StatusNotFound, "Subscription not found", nil)
	ErrTransactionNotFound  = New(http.StatusNotFound, "Transaction not found", nil)
	ErrNotYourSubscription  = New(http.StatusForbidden, "Not your subscription", nil)
	ErrSubscriptionInactive = New(http.StatusBadRequest, "Subscription must be active", nil)
	ErrEmailTaken           = New(http.StatusConflict, "User with this email already exists", nil)
)

// HandleError writes err as a JSON response with the appropriate status code.
// Unrecognized errors collapse to a 500 without leaking their message.
func HandleError(c *gin.Context, err error) {
	var appErr *Error
	if e, ok := err.(*Error); ok {
		appErr = e
	} else {
		appErr = New(ErrInternalServer.Code, ErrInternalServer.Message, err)
	}
	c.JSON(appErr.Code, gin.H{"error": appErr.Message})
}

// ErrorMiddleware maps errors attached to the gin context to JSON responses.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			HandleError(c, c.Errors.Last().Err)
			c.Abort()
		}
	}
}
