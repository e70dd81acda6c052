package response_models

type AuthorizeDepositResponse struct {
	IntentID          string `json:"paymentIntentId"`
	EncryptedIntentID string `json:"encryptedPaymentIntentId"`
	ClientSecret      string `json:"clientSecret"`
	HeldAmount        int64  `json:"heldAmount"`
	Currency          string `json:"currency"`
}

type ClaimDepositResponse struct {
	Captured CapturedIntent    `json:"captured"`
	Payout   *TransferResponse `json:"payout,omitempty"`
	NetAmount int64            `json:"netAmount"`
}
