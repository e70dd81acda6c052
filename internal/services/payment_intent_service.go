package services

import (
	"context"

	"go.uber.org/zap"

	"fiesta/internal/models/db_models"
	"fiesta/internal/models/request_models"
	"fiesta/internal/models/response_models"
	"fiesta/internal/payments"
	"fiesta/internal/platform"
	"fiesta/internal/repositories"
	"fiesta/pkg/utils"
)

type PaymentIntentServiceInterface interface {
	CreateIntent(ctx context.Context, req request_models.CreatePaymentIntentRequest) (*response_models.CreatePaymentIntentResponse, error)
	CaptureIntent(ctx context.Context, req request_models.CapturePaymentIntentRequest) (*response_models.CaptureResponse, error)
	CancelIntent(ctx context.Context, intentID, reason string) error
	CreateSetupIntent(ctx context.Context, req request_models.SetupIntentRequest) (*response_models.SetupIntentResponse, error)
	Refund(ctx context.Context, req request_models.RefundRequest) (*response_models.RefundResponse, error)
}

type PaymentIntentService struct {
	gateway     payments.Gateway
	marketplace platform.Client
	holds       repositories.SecurityPaymentRepositoryInterface
	payouts     repositories.SecurityPayoutRepositoryInterface
	signer      *utils.TokenSigner
	logger      *zap.SugaredLogger
}

func NewPaymentIntentService(
	gateway payments.Gateway,
	marketplace platform.Client,
	holds repositories.SecurityPaymentRepositoryInterface,
	payouts repositories.SecurityPayoutRepositoryInterface,
	signer *utils.TokenSigner,
	logger *zap.SugaredLogger,
) PaymentIntentServiceInterface {
	return &PaymentIntentService{
		gateway:     gateway,
		marketplace: marketplace,
		holds:       holds,
		payouts:     payouts,
		signer:      signer,
		logger:      logger,
	}
}

func (s *PaymentIntentService) CreateIntent(ctx context.Context, req request_models.CreatePaymentIntentRequest) (*response_models.CreatePaymentIntentResponse, error) {
	if req.Amount <= 0 {
		return nil, utils.MissingField("amount")
	}
	if req.Currency == "" {
		return nil, utils.MissingField("currency")
	}
	txID := req.Metadata.SharetribeTransactionID
	if txID == "" {
		return nil, utils.MissingField("metadata.sharetribe-transaction-id")
	}

	tx, err := s.marketplace.ShowTransaction(ctx, txID)
	if err != nil {
		return nil, utils.ErrTransactionNotFound
	}
	destination := tx.ProviderStripeAccountID
	if destination == "" {
		return nil, utils.MissingField("provider stripe account")
	}

	// One active intent per transaction and purpose. The durable hold row is
	// the local guard; the transfer group is the provider-side one. A deposit
	// hold on the same transaction does not block the primary payment.
	if existing, err := s.holds.GetByTxPurpose(ctx, txID, db_models.PurposePayment); err != nil {
		return nil, utils.ErrDatabaseError
	} else if existing != nil && existing.Status == db_models.SecurityPaymentActive {
		return nil, utils.ErrDuplicateOperation
	}

	intent, err := s.gateway.CreateIntent(ctx, payments.CreateIntentInput{
		AmountMinor:        req.Amount,
		Currency:           req.Currency,
		CustomerID:         req.Customer,
		PaymentMethodID:    req.PaymentMethod,
		CaptureMethod:      payments.CaptureAutomatic,
		TransferGroup:      txID,
		DestinationAccount: destination,
		Metadata:           map[string]string{payments.MetaTxID: txID},
	})
	if err != nil {
		return nil, err
	}

	hold := &db_models.SecurityPayment{
		TxID:                  txID,
		Purpose:               db_models.PurposePayment,
		IntentID:              intent.ID,
		AmountMinor:           req.Amount,
		RefundableAmountMinor: req.Amount,
		Currency:              req.Currency,
		CustomerID:            req.Customer,
		PaymentMethodID:       req.PaymentMethod,
		Status:                db_models.SecurityPaymentActive,
	}
	if err := s.holds.Create(ctx, hold); err != nil {
		s.logger.Errorw("payment intent created but hold row not persisted",
			"tx_id", txID, "intent_id", intent.ID, "error", err)
		return nil, utils.ErrDatabaseError
	}

	return &response_models.CreatePaymentIntentResponse{
		StripePaymentIntentID:           intent.ID,
		StripePaymentIntentClientSecret: intent.ClientSecret,
		StripeEncryptedPaymentIntentID:  s.signer.Sign(intent.ID),
	}, nil
}

// CaptureIntent captures a sub-amount of a manual-capture authorization and
// pays the captured portion out to the provider. The provider enforces that
// the capture never exceeds the original authorization; its rejection is
// propagated, not retried.
func (s *PaymentIntentService) CaptureIntent(ctx context.Context, req request_models.CapturePaymentIntentRequest) (*response_models.CaptureResponse, error) {
	if req.IntentToCapture == "" {
		return nil, utils.MissingField("intentToCapture")
	}
	if req.ClaimAmountCents <= 0 {
		return nil, utils.MissingField("claimAmountCents")
	}
	if req.TxID == "" {
		return nil, utils.MissingField("tx_id")
	}

	captured, err := s.gateway.CaptureIntent(ctx, req.IntentToCapture, req.ClaimAmountCents)
	if err != nil {
		return nil, err
	}
	if err := s.holds.MarkCaptured(ctx, req.IntentToCapture, captured.AmountCapturedMinor); err != nil {
		s.logger.Warnw("capture succeeded but hold row not updated",
			"intent_id", req.IntentToCapture, "error", err)
	}

	resp := &response_models.CaptureResponse{
		Captured: response_models.CapturedIntent{
			CapturedIntentID: captured.IntentID,
			AmountCaptured:   captured.AmountCapturedMinor,
			ChargeID:         captured.ChargeID,
		},
	}
	if req.ProviderStripeAccountID == "" {
		return resp, nil
	}

	// Net settled amount and funds availability come from the balance
	// transaction of the captured charge.
	var netAmount, availableOn int64
	netAmount = captured.AmountCapturedMinor
	if captured.BalanceTxID != "" {
		balanceTx, err := s.gateway.BalanceTransaction(ctx, captured.BalanceTxID)
		if err != nil {
			return nil, err
		}
		netAmount = balanceTx.NetMinor
		availableOn = balanceTx.AvailableOn
	}

	transfer, err := s.payoutCaptured(ctx, req, captured, netAmount)
	if err != nil {
		return nil, err
	}

	payout := &db_models.SecurityPayout{
		TxID:           req.TxID,
		TransferID:     transfer.ID,
		AmountMinor:    netAmount,
		DestinationAcc: req.ProviderStripeAccountID,
		AvailableOn:    availableOn,
		Status:         db_models.SecurityPayoutPaid,
	}
	if err := s.payouts.Create(ctx, payout); err != nil {
		s.logger.Warnw("payout transfer created but payout row not persisted",
			"tx_id", req.TxID, "transfer_id", transfer.ID, "error", err)
	}

	resp.Transfer = &response_models.TransferResponse{
		TransferID:  transfer.ID,
		AvailableOn: availableOn,
	}
	return resp, nil
}

func (s *PaymentIntentService) payoutCaptured(ctx context.Context, req request_models.CapturePaymentIntentRequest, captured *payments.CaptureResult, netAmount int64) (*payments.Transfer, error) {
	group := req.TransferGroup
	if group == "" {
		group = req.TxID
	}

	existing, err := s.gateway.FindTransferByTxID(ctx, group, req.TxID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	hold, err := s.holds.GetByIntentID(ctx, req.IntentToCapture)
	currency := ""
	if err == nil && hold != nil {
		currency = hold.Currency
	}

	return s.gateway.CreateTransfer(ctx, payments.TransferInput{
		AmountMinor:        netAmount,
		Currency:           currency,
		DestinationAccount: req.ProviderStripeAccountID,
		SourceChargeID:     captured.ChargeID,
		TransferGroup:      group,
		Metadata:           map[string]string{payments.MetaTxID: req.TxID},
	})
}

func (s *PaymentIntentService) CancelIntent(ctx context.Context, intentID, reason string) error {
	if intentID == "" {
		return utils.MissingField("paymentIntentId")
	}
	if err := s.gateway.CancelIntent(ctx, intentID, reason); err != nil {
		return err
	}
	return s.holds.MarkCanceled(ctx, intentID)
}

func (s *PaymentIntentService) CreateSetupIntent(ctx context.Context, req request_models.SetupIntentRequest) (*response_models.SetupIntentResponse, error) {
	if req.CustomerID == "" {
		return nil, utils.MissingField("customerId")
	}
	si, err := s.gateway.CreateSetupIntent(ctx, req.CustomerID, req.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	return &response_models.SetupIntentResponse{
		SetupIntentID: si.ID,
		ClientSecret:  si.ClientSecret,
	}, nil
}

func (s *PaymentIntentService) Refund(ctx context.Context, req request_models.RefundRequest) (*response_models.RefundResponse, error) {
	if req.IntentID == "" {
		return nil, utils.MissingField("paymentIntentId")
	}
	if req.Amount < 0 {
		return nil, utils.MissingField("amount")
	}
	refund, err := s.gateway.Refund(ctx, payments.RefundInput{IntentID: req.IntentID, AmountMinor: req.Amount})
	if err != nil {
		return nil, err
	}
	return &response_models.RefundResponse{RefundID: refund.ID, Amount: refund.AmountMinor}, nil
}
