package services

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"fiesta/internal/models/db_models"
	"fiesta/internal/models/request_models"
	"fiesta/internal/models/response_models"
	"fiesta/internal/payments"
	"fiesta/internal/platform"
	"fiesta/internal/repositories"
	"fiesta/pkg/utils"
)

type DepositServiceInterface interface {
	AuthorizeDeposit(ctx context.Context, req request_models.AuthorizeDepositRequest) (*response_models.AuthorizeDepositResponse, error)
	ClaimDeposit(ctx context.Context, req request_models.ClaimDepositRequest) (*response_models.ClaimDepositResponse, error)
	ReleaseDeposit(ctx context.Context, intentID string) error
}

type DepositService struct {
	gateway     payments.Gateway
	marketplace platform.Client
	holds       repositories.SecurityPaymentRepositoryInterface
	payouts     repositories.SecurityPayoutRepositoryInterface
	signer      *utils.TokenSigner
	clock       utils.Clock
	logger      *zap.SugaredLogger
}

func NewDepositService(
	gateway payments.Gateway,
	marketplace platform.Client,
	holds repositories.SecurityPaymentRepositoryInterface,
	payouts repositories.SecurityPayoutRepositoryInterface,
	signer *utils.TokenSigner,
	clock utils.Clock,
	logger *zap.SugaredLogger,
) DepositServiceInterface {
	return &DepositService{
		gateway:     gateway,
		marketplace: marketplace,
		holds:       holds,
		payouts:     payouts,
		signer:      signer,
		clock:       clock,
		logger:      logger,
	}
}

// AuthorizeDeposit places a manual-capture hold of base × 1.032 on the
// customer's card. The hold may only be placed within 24 hours of the booking
// start, checked against a trusted clock rather than anything the client sent.
func (s *DepositService) AuthorizeDeposit(ctx context.Context, req request_models.AuthorizeDepositRequest) (*response_models.AuthorizeDepositResponse, error) {
	if req.TxID == "" {
		return nil, utils.MissingField("txId")
	}
	if req.CustomerID == "" {
		return nil, utils.MissingField("customerId")
	}
	if req.PaymentMethodID == "" {
		return nil, utils.MissingField("paymentMethodId")
	}
	if req.BaseAmount <= 0 {
		return nil, utils.MissingField("baseAmount")
	}
	if req.Currency == "" {
		return nil, utils.MissingField("currency")
	}

	tx, err := s.marketplace.ShowTransaction(ctx, req.TxID)
	if err != nil {
		return nil, utils.ErrTransactionNotFound
	}
	bookingStart := tx.BookingStart
	if bookingStart.IsZero() && req.BookingStart != "" {
		if parsed, err := time.Parse(time.RFC3339, req.BookingStart); err == nil {
			bookingStart = parsed
		}
	}
	if bookingStart.IsZero() {
		return nil, utils.MissingField("bookingStart")
	}

	now := s.clock.NowUTC(ctx)
	if !utils.DepositWindowOpen(now, bookingStart) {
		return nil, utils.ErrBookingWindowNotOpen
	}

	if existing, err := s.holds.GetByTxPurpose(ctx, req.TxID, db_models.PurposeSecurityDeposit); err != nil {
		return nil, utils.ErrDatabaseError
	} else if existing != nil && existing.Status == db_models.SecurityPaymentActive {
		return nil, utils.ErrDuplicateOperation
	}

	held := payments.WithProcessingFee(req.BaseAmount)

	intent, err := s.gateway.CreateIntent(ctx, payments.CreateIntentInput{
		AmountMinor:     held,
		Currency:        req.Currency,
		CustomerID:      req.CustomerID,
		PaymentMethodID: req.PaymentMethodID,
		CaptureMethod:   payments.CaptureManual,
		Confirm:         true,
		OffSession:      true,
		TransferGroup:   depositTransferGroup(req.TxID),
		Metadata: map[string]string{
			payments.MetaTxID:             req.TxID,
			payments.MetaPaymentType:      payments.PaymentTypeSecurityDeposit,
			payments.MetaRefundableAmount: strconv.FormatInt(held, 10),
		},
	})
	if err != nil {
		return nil, err
	}

	hold := &db_models.SecurityPayment{
		TxID:                  req.TxID,
		Purpose:               db_models.PurposeSecurityDeposit,
		IntentID:              intent.ID,
		AmountMinor:           held,
		RefundableAmountMinor: held,
		Currency:              req.Currency,
		CustomerID:            req.CustomerID,
		PaymentMethodID:       req.PaymentMethodID,
		Status:                db_models.SecurityPaymentActive,
	}
	if err := s.holds.Create(ctx, hold); err != nil {
		s.logger.Errorw("deposit authorized but hold row not persisted",
			"tx_id", req.TxID, "intent_id", intent.ID, "error", err)
		return nil, utils.ErrDatabaseError
	}

	return &response_models.AuthorizeDepositResponse{
		IntentID:          intent.ID,
		EncryptedIntentID: s.signer.Sign(intent.ID),
		ClientSecret:      intent.ClientSecret,
		HeldAmount:        held,
		Currency:          req.Currency,
	}, nil
}

func depositTransferGroup(txID string) string {
	return "deposit-" + txID
}

// ClaimDeposit captures the claimed portion of the hold, grossed up by the
// processing-fee buffer, and pays it out to the provider. The provider caps
// the capture at the original authorization; its rejection is propagated.
func (s *DepositService) ClaimDeposit(ctx context.Context, req request_models.ClaimDepositRequest) (*response_models.ClaimDepositResponse, error) {
	if req.IntentID == "" {
		return nil, utils.MissingField("paymentIntentId")
	}
	if req.ClaimAmountCents <= 0 {
		return nil, utils.MissingField("claimAmountCents")
	}
	if req.ProviderStripeAccountID == "" {
		return nil, utils.MissingField("providerStripeAccountId")
	}

	hold, err := s.holds.GetByIntentID(ctx, req.IntentID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if hold == nil {
		return nil, utils.ErrPaymentIntentNotFound
	}
	if hold.Status != db_models.SecurityPaymentActive {
		return nil, utils.ErrDuplicateOperation
	}

	captureAmount := payments.WithProcessingFee(req.ClaimAmountCents)
	captured, err := s.gateway.CaptureIntent(ctx, req.IntentID, captureAmount)
	if err != nil {
		return nil, err
	}
	if err := s.holds.MarkCaptured(ctx, req.IntentID, captured.AmountCapturedMinor); err != nil {
		s.logger.Warnw("deposit captured but hold row not updated",
			"intent_id", req.IntentID, "error", err)
	}

	netAmount := captured.AmountCapturedMinor
	var availableOn int64
	if captured.BalanceTxID != "" {
		balanceTx, err := s.gateway.BalanceTransaction(ctx, captured.BalanceTxID)
		if err != nil {
			return nil, err
		}
		netAmount = balanceTx.NetMinor
		availableOn = balanceTx.AvailableOn
	}

	txID := hold.TxID
	group := depositTransferGroup(txID)
	transfer, err := s.gateway.FindTransferByTxID(ctx, group, txID)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		transfer, err = s.gateway.CreateTransfer(ctx, payments.TransferInput{
			AmountMinor:        netAmount,
			Currency:           hold.Currency,
			DestinationAccount: req.ProviderStripeAccountID,
			SourceChargeID:     captured.ChargeID,
			TransferGroup:      group,
			Metadata: map[string]string{
				payments.MetaTxID:        txID,
				payments.MetaPaymentType: payments.PaymentTypeSecurityDeposit,
			},
		})
		if err != nil {
			return nil, err
		}
	}

	payout := &db_models.SecurityPayout{
		TxID:           txID,
		TransferID:     transfer.ID,
		AmountMinor:    netAmount,
		Currency:       hold.Currency,
		DestinationAcc: req.ProviderStripeAccountID,
		AvailableOn:    availableOn,
		Status:         db_models.SecurityPayoutPaid,
	}
	if err := s.payouts.Create(ctx, payout); err != nil {
		s.logger.Warnw("deposit payout created but row not persisted",
			"tx_id", txID, "transfer_id", transfer.ID, "error", err)
	}

	return &response_models.ClaimDepositResponse{
		Captured: response_models.CapturedIntent{
			CapturedIntentID: captured.IntentID,
			AmountCaptured:   captured.AmountCapturedMinor,
			ChargeID:         captured.ChargeID,
		},
		Payout: &response_models.TransferResponse{
			TransferID:  transfer.ID,
			AvailableOn: availableOn,
		},
		NetAmount: netAmount,
	}, nil
}

// ReleaseDeposit voids the remaining authorization on the normal return flow
// or a rejected dispute. Releasing an already-released hold succeeds.
func (s *DepositService) ReleaseDeposit(ctx context.Context, intentID string) error {
	if intentID == "" {
		return utils.MissingField("paymentIntentId")
	}
	if err := s.gateway.CancelIntent(ctx, intentID, "requested_by_customer"); err != nil {
		return err
	}
	return s.holds.MarkCanceled(ctx, intentID)
}
