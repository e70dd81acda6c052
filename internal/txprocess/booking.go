package txprocess

// Booking (rental) process states.
const (
	StateInitial                      State = "initial"
	StateInquiry                      State = "inquiry"
	StatePendingPayment               State = "pending-payment"
	StatePaymentExpired               State = "payment-expired"
	StatePreauthorized                State = "preauthorized"
	StateDeclined                     State = "declined"
	StateExpired                      State = "expired"
	StateAccepted                     State = "accepted"
	StateCanceled                     State = "canceled"
	StateSecurityDeposited            State = "security-deposited"
	StateOrderDelivered               State = "order-delivered"
	StateOrderReceived                State = "order-received"
	StateOrderReturned                State = "order-returned"
	StateAdditionalFeeRequested       State = "additional-fee-requested"
	StateAdditionalFeeRequestAccepted State = "additional-fee-request-accepted"
	StateDisputed                     State = "disputed"
	StateDisputeApproved              State = "dispute-approved"
	StateDisputeRejected              State = "dispute-rejected"
	StateDelivered                    State = "delivered"
	StateReviewedByCustomer           State = "reviewed-by-customer"
	StateReviewedByProvider           State = "reviewed-by-provider"
	StateReviewed                     State = "reviewed"
)

// Transition names shared by both processes plus the booking-only ones.
const (
	TransitionInquire                      Transition = "transition/inquire"
	TransitionRequestPayment               Transition = "transition/request-payment"
	TransitionRequestPaymentAfterInquiry   Transition = "transition/request-payment-after-inquiry"
	TransitionExpirePayment                Transition = "transition/expire-payment"
	TransitionConfirmPayment               Transition = "transition/confirm-payment"
	TransitionDecline                      Transition = "transition/decline"
	TransitionExpire                       Transition = "transition/expire"
	TransitionAccept                       Transition = "transition/accept"
	TransitionCustomerCancel               Transition = "transition/customer-cancel"
	TransitionProviderCancel               Transition = "transition/provider-cancel"
	TransitionOperatorCancel               Transition = "transition/operator-cancel"
	TransitionSecurityDepositPayment       Transition = "transition/security-deposit-payment"
	TransitionCustomerCancelAfterDeposit   Transition = "transition/customer-cancel-after-deposit"
	TransitionOperatorCancelAfterDeposit   Transition = "transition/operator-cancel-after-deposit"
	TransitionMarkDelivered                Transition = "transition/mark-delivered"
	TransitionOperatorMarkDelivered        Transition = "transition/operator-mark-delivered"
	TransitionMarkOrderReceive             Transition = "transition/mark-order-receive"
	TransitionMarkOrderReturned            Transition = "transition/mark-order-returned"
	TransitionComplete                     Transition = "transition/complete"
	TransitionAdditionalFeeRequest         Transition = "transition/additional-fee-request"
	TransitionAdditionalFeeRequestAccept   Transition = "transition/additional-fee-request-accept"
	TransitionCompleteAfterAdditionalFee   Transition = "transition/complete-after-additional-fee"
	TransitionExpireAdditionalFeeRequest   Transition = "transition/expire-additional-fee-request"
	TransitionDispute                      Transition = "transition/dispute"
	TransitionApproveDispute               Transition = "transition/approve-dispute"
	TransitionRejectDispute                Transition = "transition/reject-dispute"
	TransitionCompleteAfterDisputeApproved Transition = "transition/complete-after-dispute-approved"
	TransitionCompleteAfterDisputeRejected Transition = "transition/complete-after-dispute-rejected"
	TransitionReview1ByCustomer            Transition = "transition/review-1-by-customer"
	TransitionReview1ByProvider            Transition = "transition/review-1-by-provider"
	TransitionReview2ByCustomer            Transition = "transition/review-2-by-customer"
	TransitionReview2ByProvider            Transition = "transition/review-2-by-provider"
	TransitionExpireReviewPeriod           Transition = "transition/expire-review-period"
	TransitionExpireCustomerReviewPeriod   Transition = "transition/expire-customer-review-period"
	TransitionExpireProviderReviewPeriod   Transition = "transition/expire-provider-review-period"
)

var bookingGraph = map[Transition]edge{
	TransitionInquire:                    {StateInitial, StateInquiry},
	TransitionRequestPayment:             {StateInitial, StatePendingPayment},
	TransitionRequestPaymentAfterInquiry: {StateInquiry, StatePendingPayment},
	TransitionExpirePayment:              {StatePendingPayment, StatePaymentExpired},
	TransitionConfirmPayment:             {StatePendingPayment, StatePreauthorized},
	TransitionDecline:                    {StatePreauthorized, StateDeclined},
	TransitionExpire:                     {StatePreauthorized, StateExpired},
	TransitionAccept:                     {StatePreauthorized, StateAccepted},

	TransitionCustomerCancel:             {StateAccepted, StateCanceled},
	TransitionProviderCancel:             {StateAccepted, StateCanceled},
	TransitionOperatorCancel:             {StateAccepted, StateCanceled},
	TransitionSecurityDepositPayment:     {StateAccepted, StateSecurityDeposited},
	TransitionCustomerCancelAfterDeposit: {StateSecurityDeposited, StateCanceled},
	TransitionOperatorCancelAfterDeposit: {StateSecurityDeposited, StateCanceled},

	TransitionMarkDelivered:         {StateSecurityDeposited, StateOrderDelivered},
	TransitionOperatorMarkDelivered: {StateSecurityDeposited, StateOrderDelivered},
	TransitionMarkOrderReceive:      {StateOrderDelivered, StateOrderReceived},
	TransitionMarkOrderReturned:     {StateOrderReceived, StateOrderReturned},

	TransitionComplete:                     {StateOrderReturned, StateDelivered},
	TransitionAdditionalFeeRequest:         {StateOrderReturned, StateAdditionalFeeRequested},
	TransitionAdditionalFeeRequestAccept:   {StateAdditionalFeeRequested, StateAdditionalFeeRequestAccepted},
	TransitionCompleteAfterAdditionalFee:   {StateAdditionalFeeRequestAccepted, StateDelivered},
	TransitionExpireAdditionalFeeRequest:   {StateAdditionalFeeRequested, StateDelivered},
	TransitionDispute:                      {StateAdditionalFeeRequested, StateDisputed},
	TransitionApproveDispute:               {StateDisputed, StateDisputeApproved},
	TransitionRejectDispute:                {StateDisputed, StateDisputeRejected},
	TransitionCompleteAfterDisputeApproved: {StateDisputeApproved, StateDelivered},
	TransitionCompleteAfterDisputeRejected: {StateDisputeRejected, StateDelivered},

	TransitionReview1ByCustomer:          {StateDelivered, StateReviewedByCustomer},
	TransitionReview1ByProvider:          {StateDelivered, StateReviewedByProvider},
	TransitionReview2ByProvider:          {StateReviewedByCustomer, StateReviewed},
	TransitionReview2ByCustomer:          {StateReviewedByProvider, StateReviewed},
	TransitionExpireReviewPeriod:         {StateDelivered, StateReviewed},
	TransitionExpireCustomerReviewPeriod: {StateReviewedByProvider, StateReviewed},
	TransitionExpireProviderReviewPeriod: {StateReviewedByCustomer, StateReviewed},
}
