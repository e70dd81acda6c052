package payments

import "context"

// Metadata keys attached to provider objects so they can be correlated back to
// marketplace transactions.
const (
	MetaTxID             = "tx_id"
	MetaPaymentType      = "payment_type"
	MetaRefundableAmount = "refundable_amount"
	MetaUserID           = "user_id"

	PaymentTypeSecurityDeposit = "security_deposit"
)

// Payment intent statuses mirrored from the provider.
const (
	IntentStatusRequiresCapture = "requires_capture"
	IntentStatusSucceeded       = "succeeded"
	IntentStatusCanceled        = "canceled"
)

type CaptureMethod string

const (
	CaptureAutomatic CaptureMethod = "automatic"
	CaptureManual    CaptureMethod = "manual"
)

type CreateIntentInput struct {
	AmountMinor        int64
	Currency           string
	CustomerID         string
	PaymentMethodID    string
	CaptureMethod      CaptureMethod
	Confirm            bool
	OffSession         bool
	TransferGroup      string
	DestinationAccount string
	Metadata           map[string]string
}

type Intent struct {
	ID                 string
	ClientSecret       string
	Status             string
	AmountMinor        int64
	Currency           string
	LatestChargeID     string
	TransferGroup      string
	DestinationAccount string
	Metadata           map[string]string
}

type CaptureResult struct {
	IntentID            string
	AmountCapturedMinor int64
	ChargeID            string
	TransferID          string
	BalanceTxID         string
}

type SetupIntent struct {
	ID           string
	ClientSecret string
	Status       string
}

type RefundInput struct {
	IntentID    string
	AmountMinor int64 // 0 means full refund
}

type Refund struct {
	ID          string
	AmountMinor int64
	Status      string
}

type TransferInput struct {
	AmountMinor        int64
	Currency           string
	DestinationAccount string
	SourceChargeID     string
	TransferGroup      string
	Metadata           map[string]string
}

type Transfer struct {
	ID                 string
	AmountMinor        int64
	Currency           string
	DestinationAccount string
	TransferGroup      string
	SourceChargeID     string
	BalanceTxID        string
	Metadata           map[string]string
}

type Reversal struct {
	ID          string
	TransferID  string
	AmountMinor int64
}

type BalanceTx struct {
	ID          string
	NetMinor    int64
	AvailableOn int64
}

type VerificationSession struct {
	ID     string
	Status string
	UserID string
}

// Gateway is the payment-provider surface the services depend on. The Stripe
// implementation lives in stripe_gateway.go; tests substitute an in-memory
// fake.
type Gateway interface {
	CreateIntent(ctx context.Context, in CreateIntentInput) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
	CaptureIntent(ctx context.Context, id string, amountMinor int64) (*CaptureResult, error)
	// CancelIntent succeeds when the intent is already canceled.
	CancelIntent(ctx context.Context, id, reason string) error
	CreateSetupIntent(ctx context.Context, customerID, paymentMethodID string) (*SetupIntent, error)
	Refund(ctx context.Context, in RefundInput) (*Refund, error)

	CreateTransfer(ctx context.Context, in TransferInput) (*Transfer, error)
	// FindTransferByTxID returns nil when no transfer in the group carries the
	// transaction id in its metadata.
	FindTransferByTxID(ctx context.Context, transferGroup, txID string) (*Transfer, error)
	ReverseTransfer(ctx context.Context, transferID string, amountMinor int64) (*Reversal, error)

	BalanceTransaction(ctx context.Context, id string) (*BalanceTx, error)
	GetVerificationSession(ctx context.Context, id string) (*VerificationSession, error)
}
