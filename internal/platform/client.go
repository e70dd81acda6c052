package platform

import (
	"context"
	"time"

	"fiesta/internal/txprocess"
)

// Transaction is the client-side view of a marketplace transaction. The
// platform owns the record; this mirror carries only what the payment
// orchestration needs.
type Transaction struct {
	ID             string
	ProcessName    txprocess.Process
	LastTransition txprocess.Transition

	PayinTotalMinor  int64
	PayoutTotalMinor int64
	Currency         string

	// ProtectedData is the open key-value bag carrying payment artifacts
	// (intent id, transfer group, destination account, deposit amount).
	ProtectedData map[string]any
	// Metadata is the operator-writable side channel (txIds for carts,
	// re-authorized deposit intent ids).
	Metadata map[string]any

	CustomerID              string
	ProviderID              string
	ProviderStripeAccountID string
	BookingStart            time.Time
}

// Protected-data and metadata keys used by the payment orchestration.
const (
	ProtectedKeyPaymentIntentID = "stripePaymentIntentId"
	ProtectedKeyTransferGroup   = "transferGroup"
	ProtectedKeyDepositIntentID = "securityDepositIntentId"
	MetadataKeyTxIDs            = "txIds"
)

const EventTypeTransactionTransitioned = "transaction/transitioned"

// Event is one entry of the platform's ordered event feed.
type Event struct {
	SequenceID     int64
	Type           string
	TxID           string
	ProcessName    txprocess.Process
	LastTransition txprocess.Transition
	CreatedAt      time.Time
}

type EventQuery struct {
	Types []string
	// StartAfterSequenceID resumes after a previously processed event; nil
	// falls back to CreatedAtStart.
	StartAfterSequenceID *int64
	CreatedAtStart       time.Time
	ProcessName          txprocess.Process
}

type InitiateInput struct {
	ProcessAlias string
	Transition   txprocess.Transition
	ListingID    string
	Params       map[string]any
}

// Client is the marketplace platform API surface. Transition calls go through
// the platform's trusted (integration) credentials, never a browser session.
type Client interface {
	ShowTransaction(ctx context.Context, txID string) (*Transaction, error)
	InitiateTransaction(ctx context.Context, in InitiateInput) (*Transaction, error)
	Transition(ctx context.Context, txID string, t txprocess.Transition, params map[string]any) error
	UpdateTransactionMetadata(ctx context.Context, txID string, metadata map[string]any) error
	UpdateUserMetadata(ctx context.Context, userID string, metadata map[string]any) error
	QueryEvents(ctx context.Context, q EventQuery) ([]Event, error)
}
