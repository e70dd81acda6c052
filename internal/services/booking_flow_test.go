package services

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"fiesta/internal/models/db_models"
	"fiesta/internal/models/request_models"
	"fiesta/internal/payments"
	"fiesta/internal/txprocess"
	"fiesta/pkg/utils"
)

// Walks a booking through its payment lifecycle end to end: primary payment
// intent at request-payment, deposit hold after accept ($50 base held as
// $51.60), a $20 damage claim captured grossed-up and paid out to the
// provider, remainder of the hold left uncaptured.
func TestBookingDepositLifecycle(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	gateway := newFakeGateway()
	marketplace := newFakePlatform()
	holds := newFakeHoldsRepo()
	payouts := newFakePayoutsRepo()
	signer := utils.NewTokenSigner([]byte("test-secret"))
	logger := zap.NewNop().Sugar()

	intents := NewPaymentIntentService(gateway, marketplace, holds, payouts, signer, logger)
	deposits := NewDepositService(gateway, marketplace, holds, payouts, signer, fixedClock{now: now}, logger)

	booking := bookingTransaction("tx-book", now.Add(6*time.Hour))
	booking.LastTransition = txprocess.TransitionRequestPayment
	booking.ProviderStripeAccountID = "acct_provider"
	marketplace.transactions["tx-book"] = booking

	if _, err := intents.CreateIntent(context.Background(), intentRequest("tx-book")); err != nil {
		t.Fatalf("primary intent: %v", err)
	}

	booking.LastTransition = txprocess.TransitionAccept

	authResp, err := deposits.AuthorizeDeposit(context.Background(), request_models.AuthorizeDepositRequest{
		TxID:            "tx-book",
		CustomerID:      "cus_1",
		PaymentMethodID: "pm_1",
		BaseAmount:      5000,
		Currency:        "usd",
	})
	if err != nil {
		t.Fatalf("authorize deposit: %v", err)
	}
	if authResp.HeldAmount != 5160 {
		t.Fatalf("held = %d, want 5160", authResp.HeldAmount)
	}

	booking.LastTransition = txprocess.TransitionSecurityDepositPayment

	gateway.balances["txn_"+authResp.IntentID] = &payments.BalanceTx{
		ID:          "txn_" + authResp.IntentID,
		NetMinor:    2000,
		AvailableOn: 1780000000,
	}
	claimResp, err := deposits.ClaimDeposit(context.Background(), request_models.ClaimDepositRequest{
		IntentID:                authResp.IntentID,
		ClaimAmountCents:        2000,
		ProviderStripeAccountID: "acct_provider",
	})
	if err != nil {
		t.Fatalf("claim deposit: %v", err)
	}
	// 2000 claim captured grossed-up; the provider receives the net.
	if claimResp.Captured.AmountCaptured != 2064 {
		t.Fatalf("captured = %d, want 2064", claimResp.Captured.AmountCaptured)
	}
	if claimResp.NetAmount != 2000 {
		t.Fatalf("net = %d, want 2000", claimResp.NetAmount)
	}
	if claimResp.Payout == nil || claimResp.Payout.TransferID == "" {
		t.Fatal("claim produced no payout transfer")
	}

	hold, _ := holds.GetByTxPurpose(context.Background(), "tx-book", db_models.PurposeSecurityDeposit)
	if hold == nil || hold.Status != db_models.SecurityPaymentCaptured {
		t.Fatalf("deposit hold = %+v, want captured", hold)
	}
	// Partial capture releases the remainder of the authorization.
	if remainder := hold.AmountMinor - hold.CapturedAmountMinor; remainder != 3096 {
		t.Fatalf("uncaptured remainder = %d, want 3096", remainder)
	}

	primary, _ := holds.GetByTxPurpose(context.Background(), "tx-book", db_models.PurposePayment)
	if primary == nil || primary.Status != db_models.SecurityPaymentActive {
		t.Fatalf("primary payment row = %+v, want untouched active", primary)
	}
}
