package request_models

type CheckoutItem struct {
	ListingID string `json:"listingId"`
	Amount    int64  `json:"amount"`
	Quantity  int    `json:"quantity"`
}

type InitiateMultiCheckoutRequest struct {
	Items         []CheckoutItem `json:"items"`
	Currency      string         `json:"currency"`
	Customer      string         `json:"customer"`
	PaymentMethod string         `json:"payment_method"`
}

type ConfirmMultiCheckoutRequest struct {
	TxIDs []string `json:"txIds"`
}
