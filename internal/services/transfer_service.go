package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fiesta/internal/models/db_models"
	"fiesta/internal/models/response_models"
	"fiesta/internal/payments"
	"fiesta/internal/platform"
	"fiesta/internal/repositories"
	"fiesta/internal/txprocess"
	"fiesta/pkg/utils"
)

type ReverseAndRefundInput struct {
	TransferID        string
	PaymentIntentID   string
	AmountMinor       int64
	CustomerInitiated bool
}

type TransferServiceInterface interface {
	// TransferToProvider pays out a completed transaction. Calling it twice
	// returns the same transfer: an existing transfer carrying the transaction
	// id in its metadata short-circuits creation.
	TransferToProvider(ctx context.Context, txID string) (*response_models.TransferResponse, error)
	ReverseAndRefund(ctx context.Context, in ReverseAndRefundInput) (*response_models.ReverseAndRefundResponse, error)
	CustomerCancel(ctx context.Context, txID string) (*response_models.ReverseAndRefundResponse, error)
	RefundSingleItem(ctx context.Context, cartTxID, itemTxID string) (*response_models.ReverseAndRefundResponse, error)
}

type TransferService struct {
	gateway     payments.Gateway
	marketplace platform.Client
	ledger      repositories.LedgerRepositoryInterface
	metrics     *Metrics
	logger      *zap.SugaredLogger
}

func NewTransferService(
	gateway payments.Gateway,
	marketplace platform.Client,
	ledger repositories.LedgerRepositoryInterface,
	metrics *Metrics,
	logger *zap.SugaredLogger,
) TransferServiceInterface {
	return &TransferService{
		gateway:     gateway,
		marketplace: marketplace,
		ledger:      ledger,
		metrics:     metrics,
		logger:      logger,
	}
}

func stringFromBag(bag map[string]any, key string) string {
	if bag == nil {
		return ""
	}
	s, _ := bag[key].(string)
	return s
}

func (s *TransferService) TransferToProvider(ctx context.Context, txID string) (*response_models.TransferResponse, error) {
	if txID == "" {
		return nil, utils.MissingField("txId")
	}
	tx, err := s.marketplace.ShowTransaction(ctx, txID)
	if err != nil {
		return nil, utils.ErrTransactionNotFound
	}
	if !txprocess.IsCompleted(tx.LastTransition) {
		return nil, fmt.Errorf("%w: last transition %s", utils.ErrPayoutNotEligible, tx.LastTransition)
	}
	if tx.ProviderStripeAccountID == "" {
		return nil, utils.MissingField("provider stripe account")
	}

	intentID := stringFromBag(tx.ProtectedData, platform.ProtectedKeyPaymentIntentID)
	if intentID == "" {
		return nil, utils.ErrPaymentIntentNotFound
	}
	intent, err := s.gateway.GetIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != payments.IntentStatusSucceeded {
		return nil, fmt.Errorf("%w: intent status %s", utils.ErrPayoutNotEligible, intent.Status)
	}

	group := stringFromBag(tx.ProtectedData, platform.ProtectedKeyTransferGroup)
	if group == "" {
		group = txID
	}

	// Retry and replay safety: a transfer tagged with this transaction id must
	// only ever exist once.
	existing, err := s.gateway.FindTransferByTxID(ctx, group, txID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.metrics.DuplicateOperations.Inc()
		s.logger.Infow("transfer already exists, returning it", "tx_id", txID, "transfer_id", existing.ID)
		if err := s.ensureLedgerRow(ctx, tx, existing, intentID); err != nil {
			return nil, err
		}
		return s.transferResponse(ctx, existing)
	}

	transfer, err := s.gateway.CreateTransfer(ctx, payments.TransferInput{
		AmountMinor:        tx.PayoutTotalMinor,
		Currency:           tx.Currency,
		DestinationAccount: tx.ProviderStripeAccountID,
		SourceChargeID:     intent.LatestChargeID,
		TransferGroup:      group,
		Metadata:           map[string]string{payments.MetaTxID: txID},
	})
	if err != nil {
		return nil, err
	}
	s.metrics.TransfersCreated.Inc()

	if err := s.ensureLedgerRow(ctx, tx, transfer, intentID); err != nil {
		return nil, err
	}

	return s.transferResponse(ctx, transfer)
}

// A transfer without its ledger row is invisible to reconciliation, so the
// ledger write must succeed before the payout is reported. A retry after a
// failed write lands in the duplicate short-circuit and backfills the row
// here without creating a second transfer.
func (s *TransferService) ensureLedgerRow(ctx context.Context, tx *platform.Transaction, transfer *payments.Transfer, intentID string) error {
	row, err := s.ledger.GetByTxID(ctx, tx.ID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if row != nil {
		return nil
	}

	row = &db_models.FreeTransaction{
		TxID:                   tx.ID,
		ProviderTransferID:     transfer.ID,
		TxProviderAmountMinor:  transfer.AmountMinor,
		Currency:               transfer.Currency,
		PaymentIntentID:        intentID,
		ProviderTransferStatus: db_models.TransferStatusTransfered,
	}
	if ids, ok := tx.Metadata[platform.MetadataKeyTxIDs].([]any); ok {
		for _, id := range ids {
			if sid, ok := id.(string); ok {
				row.ItemTxIDs = append(row.ItemTxIDs, sid)
			}
		}
	}
	if err := s.ledger.Create(ctx, row); err != nil {
		s.logger.Errorw("transfer created but ledger row not persisted",
			"tx_id", tx.ID, "transfer_id", transfer.ID, "error", err)
		return utils.ErrDatabaseError
	}
	return nil
}

func (s *TransferService) transferResponse(ctx context.Context, transfer *payments.Transfer) (*response_models.TransferResponse, error) {
	resp := &response_models.TransferResponse{TransferID: transfer.ID}
	if transfer.BalanceTxID != "" {
		balanceTx, err := s.gateway.BalanceTransaction(ctx, transfer.BalanceTxID)
		if err != nil {
			return nil, err
		}
		resp.AvailableOn = balanceTx.AvailableOn
	}
	return resp, nil
}

// ReverseAndRefund undoes a payout and refunds the customer. Customer-initiated
// cancellations absorb the payment processor's non-refundable fee; provider or
// system cancellations refund the full amount.
func (s *TransferService) ReverseAndRefund(ctx context.Context, in ReverseAndRefundInput) (*response_models.ReverseAndRefundResponse, error) {
	if in.TransferID == "" {
		return nil, utils.MissingField("transferId")
	}
	if in.PaymentIntentID == "" {
		return nil, utils.MissingField("paymentIntentId")
	}
	if in.AmountMinor <= 0 {
		return nil, utils.MissingField("amount")
	}

	reversal, err := s.gateway.ReverseTransfer(ctx, in.TransferID, in.AmountMinor)
	if err != nil {
		return nil, err
	}

	refundAmount := payments.RefundAmount(in.AmountMinor, in.CustomerInitiated)
	refund, err := s.gateway.Refund(ctx, payments.RefundInput{
		IntentID:    in.PaymentIntentID,
		AmountMinor: refundAmount,
	})
	if err != nil {
		s.logger.Errorw("transfer reversed but refund failed",
			"transfer_id", in.TransferID, "intent_id", in.PaymentIntentID, "error", err)
		return nil, err
	}
	s.metrics.ReversalsCompleted.Inc()

	return &response_models.ReverseAndRefundResponse{
		ReversalID:     reversal.ID,
		RefundID:       refund.ID,
		RefundedAmount: refund.AmountMinor,
	}, nil
}

// CustomerCancel handles a customer-initiated cancellation of a whole order.
// Funds already transferred are reversed with the fee deduction; an uncaptured
// authorization is simply voided.
func (s *TransferService) CustomerCancel(ctx context.Context, txID string) (*response_models.ReverseAndRefundResponse, error) {
	if txID == "" {
		return nil, utils.MissingField("txId")
	}

	row, err := s.ledger.GetByTxID(ctx, txID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if row == nil {
		// No payout yet: void the authorization instead of reversing.
		tx, err := s.marketplace.ShowTransaction(ctx, txID)
		if err != nil {
			return nil, utils.ErrTransactionNotFound
		}
		intentID := stringFromBag(tx.ProtectedData, platform.ProtectedKeyPaymentIntentID)
		if intentID == "" {
			return nil, utils.ErrPaymentIntentNotFound
		}
		if err := s.gateway.CancelIntent(ctx, intentID, "requested_by_customer"); err != nil {
			return nil, err
		}
		return &response_models.ReverseAndRefundResponse{}, nil
	}

	if row.ProviderTransferStatus == db_models.TransferStatusReversed || row.ReversalID != "" {
		s.metrics.DuplicateOperations.Inc()
		return nil, utils.ErrDuplicateOperation
	}

	result, err := s.ReverseAndRefund(ctx, ReverseAndRefundInput{
		TransferID:        row.ProviderTransferID,
		PaymentIntentID:   row.PaymentIntentID,
		AmountMinor:       row.TxProviderAmountMinor,
		CustomerInitiated: true,
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.ledger.MarkReversed(ctx, txID, result.ReversalID, result.RefundID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if !updated {
		s.metrics.DuplicateOperations.Inc()
		s.logger.Warnw("reversal raced with another writer", "tx_id", txID)
	}
	return result, nil
}

// RefundSingleItem reverses and refunds one item of a multi-item cart. The
// cart's ledger row flips to reversed only when the reversal covers the whole
// transferred amount.
func (s *TransferService) RefundSingleItem(ctx context.Context, cartTxID, itemTxID string) (*response_models.ReverseAndRefundResponse, error) {
	if cartTxID == "" {
		return nil, utils.MissingField("cartTxId")
	}
	if itemTxID == "" {
		return nil, utils.MissingField("itemTxId")
	}

	row, err := s.ledger.GetByTxID(ctx, cartTxID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if row == nil {
		return nil, utils.ErrReconciliationLookup
	}
	if row.ProviderTransferStatus == db_models.TransferStatusReversed || row.RefundID != "" {
		s.metrics.DuplicateOperations.Inc()
		return nil, utils.ErrDuplicateOperation
	}

	item, err := s.marketplace.ShowTransaction(ctx, itemTxID)
	if err != nil {
		return nil, utils.ErrTransactionNotFound
	}
	amount := item.PayinTotalMinor
	if amount <= 0 || amount > row.TxProviderAmountMinor {
		return nil, utils.MissingField("item amount")
	}

	reversal, err := s.gateway.ReverseTransfer(ctx, row.ProviderTransferID, amount)
	if err != nil {
		return nil, err
	}
	// TODO: decide whether single-item customer refunds should carry the
	// processing-fee deduction like whole-order cancellations do.
	refund, err := s.gateway.Refund(ctx, payments.RefundInput{
		IntentID:    row.PaymentIntentID,
		AmountMinor: amount,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ReversalsCompleted.Inc()

	if amount >= row.TxProviderAmountMinor {
		if _, err := s.ledger.MarkReversed(ctx, cartTxID, reversal.ID, refund.ID); err != nil {
			return nil, utils.ErrDatabaseError
		}
	}

	return &response_models.ReverseAndRefundResponse{
		ReversalID:     reversal.ID,
		RefundID:       refund.ID,
		RefundedAmount: refund.AmountMinor,
	}, nil
}
