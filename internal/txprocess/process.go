package txprocess

import "fmt"

// Process names match the process aliases configured on the marketplace platform.
type Process string

const (
	ProcessBooking  Process = "party-rental-booking"
	ProcessPurchase Process = "party-rental-purchase"
)

type State string

type Transition string

// edge is one directed arc of a process graph.
type edge struct {
	from State
	to   State
}

// InvalidTransitionError is returned when a transition is not an edge out of
// the transaction's current state.
type InvalidTransitionError struct {
	Process    Process
	From       State
	Transition Transition
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s from state %s in process %s", e.Transition, e.From, e.Process)
}

func graphFor(p Process) map[Transition]edge {
	switch p {
	case ProcessBooking:
		return bookingGraph
	case ProcessPurchase:
		return purchaseGraph
	default:
		return nil
	}
}

// NextState resolves the target state of a transition taken from the given
// state. Any (state, transition) pair that is not a declared edge yields an
// InvalidTransitionError.
func NextState(p Process, from State, t Transition) (State, error) {
	g := graphFor(p)
	if g == nil {
		return "", &InvalidTransitionError{Process: p, From: from, Transition: t}
	}
	e, ok := g[t]
	if !ok || e.from != from {
		return "", &InvalidTransitionError{Process: p, From: from, Transition: t}
	}
	return e.to, nil
}

// StateAfter resolves the state a transaction is in after its last transition.
// An empty transition means the transaction has not left the initial state.
func StateAfter(p Process, last Transition) (State, error) {
	if last == "" {
		return StateInitial, nil
	}
	g := graphFor(p)
	e, ok := g[last]
	if !ok {
		return "", &InvalidTransitionError{Process: p, From: "", Transition: last}
	}
	return e.to, nil
}

// HasTransition reports whether the process defines the transition at all,
// regardless of the current state.
func HasTransition(p Process, t Transition) bool {
	g := graphFor(p)
	if g == nil {
		return false
	}
	_, ok := g[t]
	return ok
}

// Transitions lists every transition the process defines.
func Transitions(p Process) []Transition {
	g := graphFor(p)
	out := make([]Transition, 0, len(g))
	for t := range g {
		out = append(out, t)
	}
	return out
}

// IsPrivileged reports whether the transition creates a payment and therefore
// must only ever be executed from a trusted server context.
func IsPrivileged(t Transition) bool {
	switch t {
	case TransitionRequestPayment, TransitionRequestPaymentAfterInquiry:
		return true
	}
	return false
}

// IsCompleted reports whether the transition marks the order as fulfilled,
// which gates payout eligibility.
func IsCompleted(t Transition) bool {
	switch t {
	case TransitionComplete,
		TransitionCompleteAfterAdditionalFee,
		TransitionCompleteAfterDisputeApproved,
		TransitionCompleteAfterDisputeRejected,
		TransitionExpireAdditionalFeeRequest,
		TransitionReview1ByCustomer,
		TransitionReview1ByProvider,
		TransitionReview2ByCustomer,
		TransitionReview2ByProvider,
		TransitionExpireReviewPeriod,
		TransitionExpireCustomerReviewPeriod,
		TransitionExpireProviderReviewPeriod:
		return true
	}
	return false
}

// IsRefunded reports whether the transition implies the captured payment must
// be reversed.
func IsRefunded(t Transition) bool {
	switch t {
	case TransitionExpirePayment,
		TransitionExpire,
		TransitionDecline,
		TransitionCustomerCancel,
		TransitionProviderCancel,
		TransitionOperatorCancel,
		TransitionAutoCancel,
		TransitionCustomerCancelAfterDeposit,
		TransitionOperatorCancelAfterDeposit:
		return true
	}
	return false
}

// IsCustomerInitiatedCancel distinguishes the cancellation variants that carry
// the processing-fee deduction from the ones that refund in full.
func IsCustomerInitiatedCancel(t Transition) bool {
	switch t {
	case TransitionCustomerCancel, TransitionCustomerCancelAfterDeposit:
		return true
	}
	return false
}

func IsCustomerReview(t Transition) bool {
	return t == TransitionReview1ByCustomer || t == TransitionReview2ByCustomer
}

func IsProviderReview(t Transition) bool {
	return t == TransitionReview1ByProvider || t == TransitionReview2ByProvider
}

// IsRelevantPastTransition filters the transitions worth rendering on an
// activity feed. System expiries of review windows are noise.
func IsRelevantPastTransition(t Transition) bool {
	switch t {
	case TransitionExpireReviewPeriod,
		TransitionExpireCustomerReviewPeriod,
		TransitionExpireProviderReviewPeriod,
		TransitionExpireAdditionalFeeRequest:
		return false
	}
	return true
}
