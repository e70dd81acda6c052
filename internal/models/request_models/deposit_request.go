package request_models

type AuthorizeDepositRequest struct {
	TxID              string `json:"txId"`
	CustomerID        string `json:"customerId"`
	PaymentMethodID   string `json:"paymentMethodId"`
	BaseAmount        int64  `json:"baseAmount"`
	Currency          string `json:"currency"`
	BookingStart      string `json:"bookingStart"` // RFC3339
	ProviderAccountID string `json:"providerAccountId"`
}

type ClaimDepositRequest struct {
	TxID                    string `json:"txId"`
	IntentID                string `json:"paymentIntentId"`
	ClaimAmountCents        int64  `json:"claimAmountCents"`
	ProviderStripeAccountID string `json:"providerStripeAccountId"`
}

type ReleaseDepositRequest struct {
	TxID     string `json:"txId"`
	IntentID string `json:"paymentIntentId"`
}
