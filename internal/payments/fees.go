package payments

import "github.com/shopspring/decimal"

// ProcessingFeeRate is the payment processor's non-refundable fee share.
// Customers who cancel absorb it; provider- or system-initiated cancellations
// refund in full.
var ProcessingFeeRate = decimal.NewFromFloat(0.032)

func processingFee(amountMinor int64) int64 {
	return decimal.NewFromInt(amountMinor).Mul(ProcessingFeeRate).Round(0).IntPart()
}

// WithProcessingFee grosses an amount up by the processing-fee buffer, rounded
// to integer minor units. Used both for the deposit hold (base × 1.032) and
// for the claim capture.
func WithProcessingFee(amountMinor int64) int64 {
	return amountMinor + processingFee(amountMinor)
}

// RefundAmount computes what goes back to the customer for a reversal of
// amountMinor. Customer-initiated cancellations carry the fee deduction,
// floored at zero.
func RefundAmount(amountMinor int64, customerInitiated bool) int64 {
	if !customerInitiated {
		return amountMinor
	}
	refund := amountMinor - processingFee(amountMinor)
	if refund < 0 {
		return 0
	}
	return refund
}
