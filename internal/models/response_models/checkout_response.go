package response_models

type InitiateMultiCheckoutResponse struct {
	TxIDs         []string                    `json:"txIds"`
	PaymentIntent CreatePaymentIntentResponse `json:"paymentIntent"`
	TotalAmount   int64                       `json:"totalAmount"`
}

type ConfirmMultiCheckoutResponse struct {
	Confirmed []string `json:"confirmed"`
	Failed    []string `json:"failed"`
}
