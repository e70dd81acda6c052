package response_models

type CreatePaymentIntentResponse struct {
	StripePaymentIntentID           string `json:"stripePaymentIntentId"`
	StripePaymentIntentClientSecret string `json:"stripePaymentIntentClientSecret"`
	StripeEncryptedPaymentIntentID  string `json:"stripeEncryptedPaymentIntentId"`
}

type TransferResponse struct {
	TransferID  string `json:"transferId"`
	AvailableOn int64  `json:"availableOn"`
}

type CapturedIntent struct {
	CapturedIntentID string `json:"capturedIntentId"`
	AmountCaptured   int64  `json:"amountCaptured"`
	ChargeID         string `json:"chargeId"`
}

type CaptureResponse struct {
	Transfer *TransferResponse `json:"transfer,omitempty"`
	Captured CapturedIntent    `json:"captured"`
}

type SetupIntentResponse struct {
	SetupIntentID string `json:"setupIntentId"`
	ClientSecret  string `json:"clientSecret"`
}

type RefundResponse struct {
	RefundID string `json:"refundId"`
	Amount   int64  `json:"amount"`
}

type ReverseAndRefundResponse struct {
	ReversalID     string `json:"reversalId"`
	RefundID       string `json:"refundId"`
	RefundedAmount int64  `json:"refundedAmount"`
}
