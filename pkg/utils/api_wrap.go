package utils

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"fiesta/internal/txprocess"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func traceID(c *gin.Context) string {
	id, _ := c.Get("trace_id")
	s, _ := id.(string)
	return s
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
	})
}

func providerErrorStatus(kind ProviderErrorKind) int {
	switch kind {
	case ProviderCardDeclined, ProviderInvalidRequest:
		return http.StatusBadRequest
	case ProviderAuthenticationFailed:
		return http.StatusUnauthorized
	case ProviderPermissionDenied:
		return http.StatusForbidden
	case ProviderRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusServiceUnavailable
	}
}

// HandleServiceError maps the service-level error taxonomy onto HTTP status
// classes. Validation failures and idempotency-guard hits come back as 4xx with
// the message intact; everything unexpected is logged and returned as a 500.
func HandleServiceError(c *gin.Context, err error) {
	var invalidTransition *txprocess.InvalidTransitionError
	var missingField *MissingFieldError
	var providerErr *ProviderError

	switch {
	case errors.As(err, &invalidTransition):
		RespondError(c, http.StatusConflict, invalidTransition.Error())
	case errors.As(err, &missingField):
		RespondError(c, http.StatusBadRequest, missingField.Error())
	case errors.As(err, &providerErr):
		RespondError(c, providerErrorStatus(providerErr.Kind), providerErr.Message)
	case errors.Is(err, ErrPayoutNotEligible):
		RespondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrDuplicateOperation):
		RespondError(c, http.StatusConflict, "Operation already performed")
	case errors.Is(err, ErrBookingWindowNotOpen):
		RespondError(c, http.StatusUnprocessableEntity, "Security deposit can only be authorized within 24 hours of the booking start")
	case errors.Is(err, ErrTransactionNotFound), errors.Is(err, ErrPaymentIntentNotFound), errors.Is(err, ErrReconciliationLookup):
		RespondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDatabaseError):
		log.Printf("Database error: %v", err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	default:
		log.Printf("Unknown error: %v", err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
