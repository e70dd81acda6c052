package db_models

import "github.com/lib/pq"

type TransferStatus string

const (
	TransferStatusTransfered TransferStatus = "transfered"
	TransferStatusReversed   TransferStatus = "reversed"
)

// FreeTransaction is the reconciliation ledger: one row per transaction whose
// payout happened out of band of the platform (the cart-purchase path). At most
// one reversal and one refund may ever be recorded per transaction; the
// ReversalID/RefundID columns are the idempotency guard the reconciler checks
// before acting.
type FreeTransaction struct {
	BaseModel
	TxID string `gorm:"uniqueIndex;not null"`

	ProviderTransferID    string `gorm:"index"`
	TxProviderAmountMinor int64
	Currency              string `gorm:"size:3"`
	PaymentIntentID       string `gorm:"index"`

	ProviderTransferStatus TransferStatus `gorm:"index;default:'transfered'"`

	ReversalID string
	RefundID   string

	// Sibling item transaction ids for a multi-item cart purchase.
	ItemTxIDs pq.StringArray `gorm:"type:text[]"`
}
