package payments

import (
	"context"
	"errors"
	"net/http"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"fiesta/pkg/utils"
)

type StripeConfig struct {
	SecretKey string
	// MaxNetworkRetries bounds the SDK's retry of transient network failures.
	// Declines and other 4xx rejections are never retried by the backend.
	MaxNetworkRetries int64
}

type StripeGateway struct {
	sc *client.API
}

func NewStripeGateway(cfg StripeConfig) *StripeGateway {
	backendCfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(cfg.MaxNetworkRetries),
	}
	sc := &client.API{}
	sc.Init(cfg.SecretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendCfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendCfg),
	})
	return &StripeGateway{sc: sc}
}

// mapStripeError folds raw provider rejections into the small error taxonomy
// the HTTP layer understands.
func mapStripeError(err error) error {
	if err == nil {
		return nil
	}
	var se *stripe.Error
	if !errors.As(err, &se) {
		return &utils.ProviderError{Kind: utils.ProviderUnavailable, Message: err.Error()}
	}

	kind := utils.ProviderUnavailable
	switch {
	case se.Type == stripe.ErrorTypeCard:
		kind = utils.ProviderCardDeclined
	case se.HTTPStatusCode == http.StatusUnauthorized:
		kind = utils.ProviderAuthenticationFailed
	case se.HTTPStatusCode == http.StatusForbidden:
		kind = utils.ProviderPermissionDenied
	case se.HTTPStatusCode == http.StatusTooManyRequests:
		kind = utils.ProviderRateLimited
	case se.HTTPStatusCode >= 400 && se.HTTPStatusCode < 500:
		kind = utils.ProviderInvalidRequest
	}
	return &utils.ProviderError{Kind: kind, Code: string(se.Code), Message: se.Msg}
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	out := &Intent{
		ID:            pi.ID,
		ClientSecret:  pi.ClientSecret,
		Status:        string(pi.Status),
		AmountMinor:   pi.Amount,
		Currency:      string(pi.Currency),
		TransferGroup: pi.TransferGroup,
		Metadata:      pi.Metadata,
	}
	if pi.LatestCharge != nil {
		out.LatestChargeID = pi.LatestCharge.ID
	}
	if pi.TransferData != nil && pi.TransferData.Destination != nil {
		out.DestinationAccount = pi.TransferData.Destination.ID
	}
	return out
}

func (g *StripeGateway) CreateIntent(ctx context.Context, in CreateIntentInput) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(in.AmountMinor),
		Currency: stripe.String(in.Currency),
	}
	if in.CustomerID != "" {
		params.Customer = stripe.String(in.CustomerID)
	}
	if in.PaymentMethodID != "" {
		params.PaymentMethod = stripe.String(in.PaymentMethodID)
	}
	if in.CaptureMethod == CaptureManual {
		params.CaptureMethod = stripe.String(string(stripe.PaymentIntentCaptureMethodManual))
	}
	if in.Confirm {
		params.Confirm = stripe.Bool(true)
	}
	if in.OffSession {
		params.OffSession = stripe.Bool(true)
	}
	if in.TransferGroup != "" {
		params.TransferGroup = stripe.String(in.TransferGroup)
	}
	if in.DestinationAccount != "" {
		params.TransferData = &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(in.DestinationAccount),
		}
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return intentFromStripe(pi), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, id string) (*Intent, error) {
	pi, err := g.sc.PaymentIntents.Get(id, &stripe.PaymentIntentParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return nil, mapStripeError(err)
	}
	return intentFromStripe(pi), nil
}

func (g *StripeGateway) CaptureIntent(ctx context.Context, id string, amountMinor int64) (*CaptureResult, error) {
	params := &stripe.PaymentIntentCaptureParams{
		Params: stripe.Params{Context: ctx},
	}
	if amountMinor > 0 {
		params.AmountToCapture = stripe.Int64(amountMinor)
	}
	pi, err := g.sc.PaymentIntents.Capture(id, params)
	if err != nil {
		return nil, mapStripeError(err)
	}

	result := &CaptureResult{
		IntentID:            pi.ID,
		AmountCapturedMinor: pi.AmountReceived,
	}
	if pi.LatestCharge == nil {
		return result, nil
	}
	result.ChargeID = pi.LatestCharge.ID

	// The expanded charge carries the balance transaction and, for destination
	// charges, the transfer.
	charge, err := g.sc.Charges.Get(pi.LatestCharge.ID, &stripe.ChargeParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return nil, mapStripeError(err)
	}
	if charge.BalanceTransaction != nil {
		result.BalanceTxID = charge.BalanceTransaction.ID
	}
	if charge.Transfer != nil {
		result.TransferID = charge.Transfer.ID
	}
	return result, nil
}

func (g *StripeGateway) CancelIntent(ctx context.Context, id, reason string) error {
	params := &stripe.PaymentIntentCancelParams{
		Params: stripe.Params{Context: ctx},
	}
	if reason != "" {
		params.CancellationReason = stripe.String(reason)
	}
	_, err := g.sc.PaymentIntents.Cancel(id, params)
	if err == nil {
		return nil
	}

	// Canceling an already-canceled intent is a success for our purposes.
	pi, getErr := g.sc.PaymentIntents.Get(id, &stripe.PaymentIntentParams{Params: stripe.Params{Context: ctx}})
	if getErr == nil && pi.Status == stripe.PaymentIntentStatusCanceled {
		return nil
	}
	return mapStripeError(err)
}

func (g *StripeGateway) CreateSetupIntent(ctx context.Context, customerID, paymentMethodID string) (*SetupIntent, error) {
	params := &stripe.SetupIntentParams{
		Params: stripe.Params{Context: ctx},
		Usage:  stripe.String(string(stripe.SetupIntentUsageOffSession)),
	}
	if customerID != "" {
		params.Customer = stripe.String(customerID)
	}
	if paymentMethodID != "" {
		params.PaymentMethod = stripe.String(paymentMethodID)
	}
	si, err := g.sc.SetupIntents.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return &SetupIntent{ID: si.ID, ClientSecret: si.ClientSecret, Status: string(si.Status)}, nil
}

func (g *StripeGateway) Refund(ctx context.Context, in RefundInput) (*Refund, error) {
	params := &stripe.RefundParams{
		Params:        stripe.Params{Context: ctx},
		PaymentIntent: stripe.String(in.IntentID),
	}
	if in.AmountMinor > 0 {
		params.Amount = stripe.Int64(in.AmountMinor)
	}
	r, err := g.sc.Refunds.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return &Refund{ID: r.ID, AmountMinor: r.Amount, Status: string(r.Status)}, nil
}

func transferFromStripe(t *stripe.Transfer) *Transfer {
	out := &Transfer{
		ID:            t.ID,
		AmountMinor:   t.Amount,
		Currency:      string(t.Currency),
		TransferGroup: t.TransferGroup,
		Metadata:      t.Metadata,
	}
	if t.Destination != nil {
		out.DestinationAccount = t.Destination.ID
	}
	if t.SourceTransaction != nil {
		out.SourceChargeID = t.SourceTransaction.ID
	}
	if t.BalanceTransaction != nil {
		out.BalanceTxID = t.BalanceTransaction.ID
	}
	return out
}

func (g *StripeGateway) CreateTransfer(ctx context.Context, in TransferInput) (*Transfer, error) {
	params := &stripe.TransferParams{
		Params:      stripe.Params{Context: ctx},
		Amount:      stripe.Int64(in.AmountMinor),
		Currency:    stripe.String(in.Currency),
		Destination: stripe.String(in.DestinationAccount),
	}
	if in.SourceChargeID != "" {
		params.SourceTransaction = stripe.String(in.SourceChargeID)
	}
	if in.TransferGroup != "" {
		params.TransferGroup = stripe.String(in.TransferGroup)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	t, err := g.sc.Transfers.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return transferFromStripe(t), nil
}

func (g *StripeGateway) FindTransferByTxID(ctx context.Context, transferGroup, txID string) (*Transfer, error) {
	params := &stripe.TransferListParams{
		ListParams: stripe.ListParams{Context: ctx},
	}
	if transferGroup != "" {
		params.TransferGroup = stripe.String(transferGroup)
	}
	iter := g.sc.Transfers.List(params)
	for iter.Next() {
		t := iter.Transfer()
		if t.Metadata[MetaTxID] == txID {
			return transferFromStripe(t), nil
		}
	}
	if err := iter.Err(); err != nil {
		return nil, mapStripeError(err)
	}
	return nil, nil
}

func (g *StripeGateway) ReverseTransfer(ctx context.Context, transferID string, amountMinor int64) (*Reversal, error) {
	params := &stripe.TransferReversalParams{
		Params: stripe.Params{Context: ctx},
		ID:     stripe.String(transferID),
	}
	if amountMinor > 0 {
		params.Amount = stripe.Int64(amountMinor)
	}
	r, err := g.sc.TransferReversals.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	out := &Reversal{ID: r.ID, AmountMinor: r.Amount}
	if r.Transfer != nil {
		out.TransferID = r.Transfer.ID
	}
	return out, nil
}

func (g *StripeGateway) BalanceTransaction(ctx context.Context, id string) (*BalanceTx, error) {
	bt, err := g.sc.BalanceTransactions.Get(id, &stripe.BalanceTransactionParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return nil, mapStripeError(err)
	}
	return &BalanceTx{ID: bt.ID, NetMinor: bt.Net, AvailableOn: bt.AvailableOn}, nil
}

func (g *StripeGateway) GetVerificationSession(ctx context.Context, id string) (*VerificationSession, error) {
	vs, err := g.sc.IdentityVerificationSessions.Get(id, &stripe.IdentityVerificationSessionParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return nil, mapStripeError(err)
	}
	return &VerificationSession{
		ID:     vs.ID,
		Status: string(vs.Status),
		UserID: vs.Metadata[MetaUserID],
	}, nil
}
