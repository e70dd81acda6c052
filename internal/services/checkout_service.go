package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"fiesta/internal/models/request_models"
	"fiesta/internal/models/response_models"
	"fiesta/internal/payments"
	"fiesta/internal/platform"
	"fiesta/internal/txprocess"
	"fiesta/pkg/utils"
)

type CheckoutServiceInterface interface {
	InitiateMultiCheckout(ctx context.Context, req request_models.InitiateMultiCheckoutRequest) (*response_models.InitiateMultiCheckoutResponse, error)
	ConfirmMultiCheckout(ctx context.Context, req request_models.ConfirmMultiCheckoutRequest) (*response_models.ConfirmMultiCheckoutResponse, error)
}

type CheckoutService struct {
	gateway      payments.Gateway
	marketplace  platform.Client
	signer       *utils.TokenSigner
	processAlias string
	logger       *zap.SugaredLogger
}

func NewCheckoutService(
	gateway payments.Gateway,
	marketplace platform.Client,
	signer *utils.TokenSigner,
	processAlias string,
	logger *zap.SugaredLogger,
) CheckoutServiceInterface {
	return &CheckoutService{
		gateway:      gateway,
		marketplace:  marketplace,
		signer:       signer,
		processAlias: processAlias,
		logger:       logger,
	}
}

// InitiateMultiCheckout starts one purchase transaction per cart item through
// the privileged request-payment transition, records the sibling ids on the
// primary transaction's metadata, and opens a single payment intent covering
// the cart total.
func (s *CheckoutService) InitiateMultiCheckout(ctx context.Context, req request_models.InitiateMultiCheckoutRequest) (*response_models.InitiateMultiCheckoutResponse, error) {
	if len(req.Items) == 0 {
		return nil, utils.MissingField("items")
	}
	if req.Currency == "" {
		return nil, utils.MissingField("currency")
	}

	var total int64
	txIDs := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Amount <= 0 {
			return nil, utils.MissingField("items.amount")
		}
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		tx, err := s.marketplace.InitiateTransaction(ctx, platform.InitiateInput{
			ProcessAlias: s.processAlias,
			Transition:   txprocess.TransitionRequestPayment,
			ListingID:    item.ListingID,
			Params: map[string]any{
				"quantity": qty,
			},
		})
		if err != nil {
			// A half-initiated cart is unusable; report which item broke.
			s.logger.Errorw("cart item initiation failed",
				"listing_id", item.ListingID, "initiated", len(txIDs), "error", err)
			return nil, err
		}
		txIDs = append(txIDs, tx.ID)
		total += item.Amount * int64(qty)
	}

	primary := txIDs[0]
	if err := s.marketplace.UpdateTransactionMetadata(ctx, primary, map[string]any{
		platform.MetadataKeyTxIDs: txIDs,
	}); err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreateIntent(ctx, payments.CreateIntentInput{
		AmountMinor:     total,
		Currency:        req.Currency,
		CustomerID:      req.Customer,
		PaymentMethodID: req.PaymentMethod,
		CaptureMethod:   payments.CaptureAutomatic,
		TransferGroup:   primary,
		Metadata:        map[string]string{payments.MetaTxID: primary},
	})
	if err != nil {
		return nil, err
	}

	return &response_models.InitiateMultiCheckoutResponse{
		TxIDs:       txIDs,
		TotalAmount: total,
		PaymentIntent: response_models.CreatePaymentIntentResponse{
			StripePaymentIntentID:           intent.ID,
			StripePaymentIntentClientSecret: intent.ClientSecret,
			StripeEncryptedPaymentIntentID:  s.signer.Sign(intent.ID),
		},
	}, nil
}

// ConfirmMultiCheckout fans the confirm-payment transition out over the cart's
// item transactions. One failing item does not block the others; failures are
// reported back for the caller to retry.
func (s *CheckoutService) ConfirmMultiCheckout(ctx context.Context, req request_models.ConfirmMultiCheckoutRequest) (*response_models.ConfirmMultiCheckoutResponse, error) {
	if len(req.TxIDs) == 0 {
		return nil, utils.MissingField("txIds")
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	confirmed := make([]string, 0, len(req.TxIDs))
	failed := make([]string, 0)

	for _, txID := range req.TxIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			err := s.marketplace.Transition(ctx, id, txprocess.TransitionConfirmPayment, nil)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Errorw("confirm-payment failed for cart item", "tx_id", id, "error", err)
				failed = append(failed, id)
				return
			}
			confirmed = append(confirmed, id)
		}(txID)
	}
	wg.Wait()

	return &response_models.ConfirmMultiCheckoutResponse{
		Confirmed: confirmed,
		Failed:    failed,
	}, nil
}
