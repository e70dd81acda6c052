package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"fiesta/internal/models/db_models"
	"fiesta/internal/payments"
	"fiesta/internal/platform"
	"fiesta/internal/txprocess"
	"fiesta/pkg/utils"
)

func newTransferFixture() (*fakeGateway, *fakePlatform, *fakeLedgerRepo, TransferServiceInterface) {
	gateway := newFakeGateway()
	marketplace := newFakePlatform()
	ledger := newFakeLedgerRepo()
	svc := NewTransferService(gateway, marketplace, ledger, newTestMetrics(), zap.NewNop().Sugar())
	return gateway, marketplace, ledger, svc
}

func completedTransaction(txID string) *platform.Transaction {
	return &platform.Transaction{
		ID:               txID,
		ProcessName:      txprocess.ProcessPurchase,
		LastTransition:   txprocess.TransitionComplete,
		PayoutTotalMinor: 9000,
		Currency:         "usd",
		ProtectedData: map[string]any{
			platform.ProtectedKeyPaymentIntentID: "pi_cart",
			platform.ProtectedKeyTransferGroup:   "group-" + txID,
		},
		ProviderStripeAccountID: "acct_provider",
	}
}

func TestTransferToProviderLedgerWriteFailureSurfaced(t *testing.T) {
	gateway, marketplace, ledger, svc := newTransferFixture()
	marketplace.transactions["tx-1"] = completedTransaction("tx-1")
	gateway.intents["pi_cart"] = &payments.Intent{
		ID:             "pi_cart",
		Status:         payments.IntentStatusSucceeded,
		LatestChargeID: "ch_cart",
	}
	ledger.createErr = errors.New("connection reset")

	// A payout without its ledger row can never be reversed, so the caller
	// must see the failure and retry.
	if _, err := svc.TransferToProvider(context.Background(), "tx-1"); !errors.Is(err, utils.ErrDatabaseError) {
		t.Fatalf("err = %v, want ErrDatabaseError", err)
	}

	ledger.createErr = nil
	resp, err := svc.TransferToProvider(context.Background(), "tx-1")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if gateway.createTransferCalls != 1 {
		t.Fatalf("CreateTransfer called %d times, want 1", gateway.createTransferCalls)
	}
	row, _ := ledger.GetByTxID(context.Background(), "tx-1")
	if row == nil || row.ProviderTransferID != resp.TransferID {
		t.Fatalf("ledger row = %+v, want backfilled transfer %s", row, resp.TransferID)
	}
}

func TestTransferToProviderIdempotent(t *testing.T) {
	gateway, marketplace, ledger, svc := newTransferFixture()
	marketplace.transactions["tx-1"] = completedTransaction("tx-1")
	gateway.intents["pi_cart"] = &payments.Intent{
		ID:             "pi_cart",
		Status:         payments.IntentStatusSucceeded,
		LatestChargeID: "ch_cart",
	}

	first, err := svc.TransferToProvider(context.Background(), "tx-1")
	if err != nil {
		t.Fatalf("first transfer: %v", err)
	}
	if first.TransferID == "" {
		t.Fatal("first transfer has no id")
	}

	row, _ := ledger.GetByTxID(context.Background(), "tx-1")
	if row == nil {
		t.Fatal("ledger row not written")
	}
	if row.ProviderTransferStatus != db_models.TransferStatusTransfered {
		t.Fatalf("ledger status = %s, want transfered", row.ProviderTransferStatus)
	}
	if row.TxProviderAmountMinor != 9000 {
		t.Fatalf("ledger amount = %d, want 9000", row.TxProviderAmountMinor)
	}

	second, err := svc.TransferToProvider(context.Background(), "tx-1")
	if err != nil {
		t.Fatalf("second transfer: %v", err)
	}
	if second.TransferID != first.TransferID {
		t.Fatalf("second call created a new transfer: %s vs %s", second.TransferID, first.TransferID)
	}
	if gateway.createTransferCalls != 1 {
		t.Fatalf("CreateTransfer called %d times, want 1", gateway.createTransferCalls)
	}
}

func TestTransferToProviderRejectsIncompleteTransaction(t *testing.T) {
	_, marketplace, _, svc := newTransferFixture()
	tx := completedTransaction("tx-2")
	tx.LastTransition = txprocess.TransitionConfirmPayment
	marketplace.transactions["tx-2"] = tx

	_, err := svc.TransferToProvider(context.Background(), "tx-2")
	if !errors.Is(err, utils.ErrPayoutNotEligible) {
		t.Fatalf("err = %v, want ErrPayoutNotEligible", err)
	}
}

func TestTransferToProviderRejectsUnsucceededIntent(t *testing.T) {
	gateway, marketplace, _, svc := newTransferFixture()
	marketplace.transactions["tx-3"] = completedTransaction("tx-3")
	gateway.intents["pi_cart"] = &payments.Intent{
		ID:     "pi_cart",
		Status: payments.IntentStatusRequiresCapture,
	}

	_, err := svc.TransferToProvider(context.Background(), "tx-3")
	if !errors.Is(err, utils.ErrPayoutNotEligible) {
		t.Fatalf("err = %v, want ErrPayoutNotEligible", err)
	}
	if gateway.createTransferCalls != 0 {
		t.Fatal("transfer created despite unsucceeded intent")
	}
}

func TestCustomerCancelAppliesFeeDeduction(t *testing.T) {
	gateway, _, ledger, svc := newTransferFixture()
	ledger.rows["tx-1"] = &db_models.FreeTransaction{
		TxID:                   "tx-1",
		ProviderTransferID:     "tr_1",
		TxProviderAmountMinor:  10000,
		PaymentIntentID:        "pi_cart",
		ProviderTransferStatus: db_models.TransferStatusTransfered,
	}

	result, err := svc.CustomerCancel(context.Background(), "tx-1")
	if err != nil {
		t.Fatalf("customer cancel: %v", err)
	}

	if len(gateway.reversals) != 1 || gateway.reversals[0].AmountMinor != 10000 {
		t.Fatalf("reversal = %+v, want full 10000", gateway.reversals)
	}
	// Customer keeps the refund minus the 3.2% processing fee.
	if len(gateway.refundAmounts) != 1 || gateway.refundAmounts[0] != 9680 {
		t.Fatalf("refund amount = %v, want 9680", gateway.refundAmounts)
	}
	if result.ReversalID == "" || result.RefundID == "" {
		t.Fatalf("result missing ids: %+v", result)
	}

	row, _ := ledger.GetByTxID(context.Background(), "tx-1")
	if row.ProviderTransferStatus != db_models.TransferStatusReversed {
		t.Fatalf("ledger status = %s, want reversed", row.ProviderTransferStatus)
	}
}

func TestCustomerCancelVoidsUncapturedAuthorization(t *testing.T) {
	gateway, marketplace, _, svc := newTransferFixture()
	marketplace.transactions["tx-1"] = completedTransaction("tx-1")

	result, err := svc.CustomerCancel(context.Background(), "tx-1")
	if err != nil {
		t.Fatalf("customer cancel: %v", err)
	}
	if len(gateway.canceledIntents) != 1 || gateway.canceledIntents[0] != "pi_cart" {
		t.Fatalf("canceled intents = %v, want [pi_cart]", gateway.canceledIntents)
	}
	if len(gateway.reversals) != 0 {
		t.Fatal("nothing was transferred, nothing should be reversed")
	}
	if result.ReversalID != "" {
		t.Fatalf("void path should not report a reversal: %+v", result)
	}
}

func TestCustomerCancelAlreadyReversed(t *testing.T) {
	_, _, ledger, svc := newTransferFixture()
	ledger.rows["tx-1"] = &db_models.FreeTransaction{
		TxID:                   "tx-1",
		ProviderTransferID:     "tr_1",
		TxProviderAmountMinor:  10000,
		PaymentIntentID:        "pi_cart",
		ProviderTransferStatus: db_models.TransferStatusReversed,
		ReversalID:             "trr_9",
	}

	_, err := svc.CustomerCancel(context.Background(), "tx-1")
	if !errors.Is(err, utils.ErrDuplicateOperation) {
		t.Fatalf("err = %v, want ErrDuplicateOperation", err)
	}
}

func TestRefundSingleItemKeepsCartLedgerOpen(t *testing.T) {
	gateway, marketplace, ledger, svc := newTransferFixture()
	ledger.rows["cart-1"] = &db_models.FreeTransaction{
		TxID:                   "cart-1",
		ProviderTransferID:     "tr_1",
		TxProviderAmountMinor:  10000,
		PaymentIntentID:        "pi_cart",
		ProviderTransferStatus: db_models.TransferStatusTransfered,
		ItemTxIDs:              []string{"cart-1", "item-2"},
	}
	marketplace.transactions["item-2"] = &platform.Transaction{
		ID:              "item-2",
		ProcessName:     txprocess.ProcessPurchase,
		PayinTotalMinor: 4000,
	}

	result, err := svc.RefundSingleItem(context.Background(), "cart-1", "item-2")
	if err != nil {
		t.Fatalf("refund single item: %v", err)
	}
	if len(gateway.reversals) != 1 || gateway.reversals[0].AmountMinor != 4000 {
		t.Fatalf("reversal = %+v, want 4000", gateway.reversals)
	}
	if result.RefundedAmount != 4000 {
		t.Fatalf("refunded = %d, want 4000", result.RefundedAmount)
	}

	// A partial reversal leaves the cart's row open for the remaining items.
	row, _ := ledger.GetByTxID(context.Background(), "cart-1")
	if row.ProviderTransferStatus != db_models.TransferStatusTransfered {
		t.Fatalf("ledger status = %s, want transfered", row.ProviderTransferStatus)
	}
}

func TestRefundSingleItemCoveringWholeTransferClosesLedger(t *testing.T) {
	_, marketplace, ledger, svc := newTransferFixture()
	ledger.rows["cart-1"] = &db_models.FreeTransaction{
		TxID:                   "cart-1",
		ProviderTransferID:     "tr_1",
		TxProviderAmountMinor:  4000,
		PaymentIntentID:        "pi_cart",
		ProviderTransferStatus: db_models.TransferStatusTransfered,
	}
	marketplace.transactions["item-1"] = &platform.Transaction{
		ID:              "item-1",
		PayinTotalMinor: 4000,
	}

	if _, err := svc.RefundSingleItem(context.Background(), "cart-1", "item-1"); err != nil {
		t.Fatalf("refund single item: %v", err)
	}
	row, _ := ledger.GetByTxID(context.Background(), "cart-1")
	if row.ProviderTransferStatus != db_models.TransferStatusReversed {
		t.Fatalf("ledger status = %s, want reversed", row.ProviderTransferStatus)
	}
}
