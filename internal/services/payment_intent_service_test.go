package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"fiesta/internal/models/db_models"
	"fiesta/internal/models/request_models"
	"fiesta/internal/payments"
	"fiesta/internal/platform"
	"fiesta/internal/txprocess"
	"fiesta/pkg/utils"
)

func newPaymentIntentFixture() (*fakeGateway, *fakePlatform, *fakeHoldsRepo, PaymentIntentServiceInterface) {
	gateway := newFakeGateway()
	marketplace := newFakePlatform()
	holds := newFakeHoldsRepo()
	payouts := newFakePayoutsRepo()
	svc := NewPaymentIntentService(gateway, marketplace, holds, payouts, utils.NewTokenSigner([]byte("test-secret")), zap.NewNop().Sugar())
	return gateway, marketplace, holds, svc
}

func intentRequest(txID string) request_models.CreatePaymentIntentRequest {
	return request_models.CreatePaymentIntentRequest{
		Amount:        8000,
		Currency:      "usd",
		Metadata:      request_models.PaymentIntentMetadata{SharetribeTransactionID: txID},
		Customer:      "cus_1",
		PaymentMethod: "pm_1",
	}
}

func TestCreateIntentGroupsByTransaction(t *testing.T) {
	gateway, marketplace, holds, svc := newPaymentIntentFixture()
	marketplace.transactions["tx-1"] = &platform.Transaction{
		ID:                      "tx-1",
		ProcessName:             txprocess.ProcessBooking,
		ProviderStripeAccountID: "acct_provider",
	}

	resp, err := svc.CreateIntent(context.Background(), intentRequest("tx-1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.StripePaymentIntentID == "" || resp.StripePaymentIntentClientSecret == "" {
		t.Fatalf("response incomplete: %+v", resp)
	}
	if resp.StripeEncryptedPaymentIntentID == "" {
		t.Fatal("encrypted intent id missing")
	}

	in := gateway.lastIntentInput
	if in.TransferGroup != "tx-1" {
		t.Fatalf("transfer group = %s, want tx-1", in.TransferGroup)
	}
	if in.Metadata[payments.MetaTxID] != "tx-1" {
		t.Fatalf("metadata tx id = %q", in.Metadata[payments.MetaTxID])
	}
	if in.DestinationAccount != "acct_provider" {
		t.Fatalf("destination = %s", in.DestinationAccount)
	}

	hold, _ := holds.GetByTxPurpose(context.Background(), "tx-1", db_models.PurposePayment)
	if hold == nil || hold.Status != db_models.SecurityPaymentActive {
		t.Fatalf("hold row = %+v, want active", hold)
	}
}

func TestCreateIntentRejectsSecondActive(t *testing.T) {
	gateway, marketplace, _, svc := newPaymentIntentFixture()
	marketplace.transactions["tx-1"] = &platform.Transaction{
		ID:                      "tx-1",
		ProviderStripeAccountID: "acct_provider",
	}

	if _, err := svc.CreateIntent(context.Background(), intentRequest("tx-1")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.CreateIntent(context.Background(), intentRequest("tx-1"))
	if !errors.Is(err, utils.ErrDuplicateOperation) {
		t.Fatalf("err = %v, want ErrDuplicateOperation", err)
	}
	if gateway.createIntentCalls != 1 {
		t.Fatalf("CreateIntent called %d times, want 1", gateway.createIntentCalls)
	}
}

func TestCreateIntentValidation(t *testing.T) {
	_, _, _, svc := newPaymentIntentFixture()

	var missing *utils.MissingFieldError
	if _, err := svc.CreateIntent(context.Background(), request_models.CreatePaymentIntentRequest{Currency: "usd"}); !errors.As(err, &missing) {
		t.Fatalf("err = %v, want MissingFieldError", err)
	}
	req := intentRequest("")
	if _, err := svc.CreateIntent(context.Background(), req); !errors.As(err, &missing) {
		t.Fatalf("err = %v, want MissingFieldError for missing tx id", err)
	}
}

func TestCaptureIntentPaysOutNetAmount(t *testing.T) {
	gateway, _, holds, svc := newPaymentIntentFixture()
	holds.rows["pi_1"] = &db_models.SecurityPayment{
		TxID:     "tx-1",
		IntentID: "pi_1",
		Currency: "usd",
		Status:   db_models.SecurityPaymentActive,
	}
	gateway.balances["txn_pi_1"] = &payments.BalanceTx{ID: "txn_pi_1", NetMinor: 1940, AvailableOn: 1780000000}

	resp, err := svc.CaptureIntent(context.Background(), request_models.CapturePaymentIntentRequest{
		IntentToCapture:         "pi_1",
		ProviderStripeAccountID: "acct_provider",
		ClaimAmountCents:        2000,
		TxID:                    "tx-1",
	})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if resp.Captured.AmountCaptured != 2000 {
		t.Fatalf("captured = %d, want 2000", resp.Captured.AmountCaptured)
	}
	if resp.Transfer == nil {
		t.Fatal("transfer missing")
	}
	// The provider receives what actually settled, not the gross capture.
	if gateway.transfers[0].AmountMinor != 1940 {
		t.Fatalf("transfer amount = %d, want 1940", gateway.transfers[0].AmountMinor)
	}

	// A retried capture request must not create a second transfer.
	resp2, err := svc.CaptureIntent(context.Background(), request_models.CapturePaymentIntentRequest{
		IntentToCapture:         "pi_1",
		ProviderStripeAccountID: "acct_provider",
		ClaimAmountCents:        2000,
		TxID:                    "tx-1",
	})
	if err != nil {
		t.Fatalf("second capture: %v", err)
	}
	if gateway.createTransferCalls != 1 {
		t.Fatalf("CreateTransfer called %d times, want 1", gateway.createTransferCalls)
	}
	if resp2.Transfer.TransferID != resp.Transfer.TransferID {
		t.Fatalf("transfer ids differ: %s vs %s", resp2.Transfer.TransferID, resp.Transfer.TransferID)
	}
}

func TestCaptureIntentWithoutDestinationSkipsPayout(t *testing.T) {
	gateway, _, _, svc := newPaymentIntentFixture()

	resp, err := svc.CaptureIntent(context.Background(), request_models.CapturePaymentIntentRequest{
		IntentToCapture:  "pi_1",
		ClaimAmountCents: 2000,
		TxID:             "tx-1",
	})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if resp.Transfer != nil {
		t.Fatal("no destination, no transfer")
	}
	if gateway.createTransferCalls != 0 {
		t.Fatal("transfer created without a destination account")
	}
}

func TestCancelIntentReleasesHold(t *testing.T) {
	gateway, _, holds, svc := newPaymentIntentFixture()
	holds.rows["pi_1"] = &db_models.SecurityPayment{
		TxID:     "tx-1",
		IntentID: "pi_1",
		Status:   db_models.SecurityPaymentActive,
	}

	if err := svc.CancelIntent(context.Background(), "pi_1", "requested_by_customer"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if len(gateway.canceledIntents) != 1 {
		t.Fatalf("cancel calls = %d", len(gateway.canceledIntents))
	}
	hold, _ := holds.GetByIntentID(context.Background(), "pi_1")
	if hold.Status != db_models.SecurityPaymentCanceled {
		t.Fatalf("hold status = %s, want canceled", hold.Status)
	}
}
