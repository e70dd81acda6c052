package request_models

type PaymentIntentMetadata struct {
	SharetribeTransactionID string `json:"sharetribe-transaction-id"`
}

type CreatePaymentIntentRequest struct {
	Amount        int64                 `json:"amount"`
	Currency      string                `json:"currency"`
	Metadata      PaymentIntentMetadata `json:"metadata"`
	Customer      string                `json:"customer"`
	PaymentMethod string                `json:"payment_method"`
}

type CapturePaymentIntentRequest struct {
	IntentToCapture         string `json:"intentToCapture"`
	ProviderStripeAccountID string `json:"providerStripeAccountId"`
	ClaimAmountCents        int64  `json:"claimAmountCents"`
	TransferGroup           string `json:"transfer_group"`
	TxID                    string `json:"tx_id"`
}

type CancelPaymentIntentRequest struct {
	IntentID string `json:"paymentIntentId"`
	Reason   string `json:"reason"`
}

type RefundRequest struct {
	IntentID string `json:"paymentIntentId"`
	Amount   int64  `json:"amount"`
}

type SetupIntentRequest struct {
	CustomerID      string `json:"customerId"`
	PaymentMethodID string `json:"paymentMethodId"`
}

type CustomerCancelRequest struct {
	TxID string `json:"txId"`
}

type CreateTransferRequest struct {
	TxID string `json:"txId"`
}

type RefundSingleItemRequest struct {
	CartTxID string `json:"cartTxId"`
	ItemTxID string `json:"itemTxId"`
}
