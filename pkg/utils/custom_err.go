package utils

import (
	"errors"
	"fmt"
)

var (
	ErrDatabaseError         = errors.New("database error")
	ErrDuplicateOperation    = errors.New("operation already performed")
	ErrReconciliationLookup  = errors.New("no ledger row for transaction")
	ErrBookingWindowNotOpen  = errors.New("deposit window not open yet")
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrPaymentIntentNotFound = errors.New("payment intent not found")
	ErrPayoutNotEligible     = errors.New("transaction not eligible for payout")
)

// MissingFieldError reports a required input field that was absent, detected
// before any network call is made.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

func MissingField(field string) error {
	return &MissingFieldError{Field: field}
}

type ProviderErrorKind string

const (
	ProviderCardDeclined         ProviderErrorKind = "card_declined"
	ProviderInvalidRequest       ProviderErrorKind = "invalid_request"
	ProviderAuthenticationFailed ProviderErrorKind = "authentication_failed"
	ProviderPermissionDenied     ProviderErrorKind = "permission_denied"
	ProviderRateLimited          ProviderErrorKind = "rate_limited"
	ProviderUnavailable          ProviderErrorKind = "provider_unavailable"
)

// ProviderError wraps a payment-provider rejection in a small taxonomy instead
// of passing raw provider errors up to the HTTP layer.
type ProviderError struct {
	Kind    ProviderErrorKind
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("payment provider error (%s/%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("payment provider error (%s): %s", e.Kind, e.Message)
}
