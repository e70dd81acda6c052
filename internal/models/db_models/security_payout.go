package db_models

type SecurityPayoutStatus string

const (
	SecurityPayoutPending SecurityPayoutStatus = "pending"
	SecurityPayoutPaid    SecurityPayoutStatus = "paid"
)

// SecurityPayout records funds moved to a provider's connected account from a
// captured deposit claim. AvailableOn comes from the provider's balance
// transaction, not from local time.
type SecurityPayout struct {
	BaseModel
	TxID       string `gorm:"index;not null"`
	TransferID string `gorm:"uniqueIndex"`

	AmountMinor    int64 // net settled amount
	Currency       string `gorm:"size:3"`
	DestinationAcc string `gorm:"index"`

	AvailableOn int64

	Status SecurityPayoutStatus `gorm:"index;default:'pending'"`
}
