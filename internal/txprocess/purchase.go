package txprocess

// Purchase (sale) process states. The purchase graph shares most transition
// names with the booking graph but has no deposit or rental-return chain, and
// a cart purchase correlates its sibling item transactions via metadata txIds.
const (
	StatePurchased State = "purchased"
	StateShipped   State = "shipped"
	StateReceived  State = "received"
	StateCompleted State = "completed"
)

// Purchase-only transitions.
const (
	TransitionAutoCancel          Transition = "transition/auto-cancel"
	TransitionMarkShipped         Transition = "transition/mark-shipped"
	TransitionOperatorMarkShipped Transition = "transition/operator-mark-shipped"
	TransitionMarkReceived        Transition = "transition/mark-received"
	TransitionAutoMarkReceived    Transition = "transition/auto-mark-received"
)

var purchaseGraph = map[Transition]edge{
	TransitionInquire:                    {StateInitial, StateInquiry},
	TransitionRequestPayment:             {StateInitial, StatePendingPayment},
	TransitionRequestPaymentAfterInquiry: {StateInquiry, StatePendingPayment},
	TransitionExpirePayment:              {StatePendingPayment, StatePaymentExpired},
	TransitionConfirmPayment:             {StatePendingPayment, StatePurchased},

	TransitionCustomerCancel: {StatePurchased, StateCanceled},
	TransitionProviderCancel: {StatePurchased, StateCanceled},
	TransitionOperatorCancel: {StatePurchased, StateCanceled},
	TransitionAutoCancel:     {StatePurchased, StateCanceled},

	TransitionMarkShipped:           {StatePurchased, StateShipped},
	TransitionOperatorMarkShipped:   {StatePurchased, StateShipped},
	TransitionMarkDelivered:         {StateShipped, StateDelivered},
	TransitionOperatorMarkDelivered: {StateShipped, StateDelivered},
	TransitionMarkReceived:          {StateDelivered, StateReceived},
	TransitionAutoMarkReceived:      {StateDelivered, StateReceived},
	TransitionComplete:              {StateReceived, StateCompleted},

	TransitionReview1ByCustomer:          {StateCompleted, StateReviewedByCustomer},
	TransitionReview1ByProvider:          {StateCompleted, StateReviewedByProvider},
	TransitionReview2ByProvider:          {StateReviewedByCustomer, StateReviewed},
	TransitionReview2ByCustomer:          {StateReviewedByProvider, StateReviewed},
	TransitionExpireReviewPeriod:         {StateCompleted, StateReviewed},
	TransitionExpireCustomerReviewPeriod: {StateReviewedByProvider, StateReviewed},
	TransitionExpireProviderReviewPeriod: {StateReviewedByCustomer, StateReviewed},
}
