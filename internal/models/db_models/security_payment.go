package db_models

import "gorm.io/datatypes"

type SecurityPaymentStatus string

const (
	SecurityPaymentActive   SecurityPaymentStatus = "active"
	SecurityPaymentCaptured SecurityPaymentStatus = "captured"
	SecurityPaymentCanceled SecurityPaymentStatus = "canceled"
)

// SecurityPaymentPurpose distinguishes the primary payment intent of a
// transaction from the security-deposit hold riding on the same transaction.
type SecurityPaymentPurpose string

const (
	PurposePayment         SecurityPaymentPurpose = "payment"
	PurposeSecurityDeposit SecurityPaymentPurpose = "security_deposit"
)

// SecurityPayment tracks a payment intent from creation to capture or release.
// One active row per transaction and purpose: a booking carries both its
// primary payment row and its deposit-hold row.
type SecurityPayment struct {
	BaseModel
	TxID     string                 `gorm:"uniqueIndex:idx_security_payments_tx_purpose;not null"`
	Purpose  SecurityPaymentPurpose `gorm:"uniqueIndex:idx_security_payments_tx_purpose;not null"`
	IntentID string                 `gorm:"index;not null"`

	AmountMinor           int64  // held amount, base plus processing-fee buffer
	RefundableAmountMinor int64  // what the customer gets back if nothing is claimed
	Currency              string `gorm:"size:3"`

	CustomerID      string `gorm:"index"`
	PaymentMethodID string

	Status SecurityPaymentStatus `gorm:"index;default:'active'"`

	CapturedAmountMinor int64
	CapturedAt          *int64

	Metadata datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
}
