package gateway

// Outcome classifies a provider return code. Every gateway-calling
// transition consults this table rather than branching on raw codes.
type Outcome int

const (
	// OutcomeSuccess is a plain success.
	OutcomeSuccess Outcome = iota

	// OutcomeDuplicate means the provider already processed an
	// equivalent request. Callers treat it as success on retry; it is
	// kept distinct from OutcomeSuccess only so the duplicate can be
	// logged.
	OutcomeDuplicate

	// OutcomeRetryable is a transient provider-side failure; the call
	// may be retried without financial effect.
	OutcomeRetryable

	// OutcomeRejected is a hard failure reported to the caller.
	OutcomeRejected
)

// Provider return codes with defined handling.
const (
	CodeSuccess = "0000"

	// CodeDuplicateCall: the confirm/capture was already processed or
	// is in progress.
	CodeDuplicateCall = "1198"

	// CodeDuplicateOrder: a transaction for this order id already
	// exists (returned by the request endpoint).
	CodeDuplicateOrder = "1172"

	// CodeAlreadyRefunded: the transaction was already refunded.
	CodeAlreadyRefunded = "1165"

	// CodeProviderInternal: transient provider-side error.
	CodeProviderInternal = "9000"
)

var outcomes = map[string]Outcome{
	CodeSuccess:          OutcomeSuccess,
	CodeDuplicateCall:    OutcomeDuplicate,
	CodeDuplicateOrder:   OutcomeDuplicate,
	CodeAlreadyRefunded:  OutcomeDuplicate,
	CodeProviderInternal: OutcomeRetryable,
}

// Classify maps a provider return code to its outcome. Unknown codes
// are hard failures; a generic fallback is never treated as success.
func Classify(code string) Outcome {
	if outcome, ok := outcomes[code]; ok {
		return outcome
	}
	return OutcomeRejected
}
