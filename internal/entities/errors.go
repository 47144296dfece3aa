package entities

import "errors"

var (
	ErrValidation           = errors.New("validation error")
	ErrInvalidTransition    = errors.New("invalid transition")
	ErrOrderNotFound        = errors.New("order not found")
	ErrConcurrencyConflict  = errors.New("concurrency conflict")
	ErrPublishFailure       = errors.New("publish failure")
	ErrTransportUnavailable = errors.New("transport unavailable")

	ErrEventNotFound      = errors.New("event not found")
	ErrProjectionNotFound = errors.New("projection not found")
)

type Reason string

const (
	ReasonValidation           Reason = "VALIDATION_ERROR"
	ReasonInvalidTransition    Reason = "INVALID_TRANSITION"
	ReasonOrderNotFound        Reason = "ORDER_NOT_FOUND"
	ReasonConcurrencyConflict  Reason = "CONCURRENCY_CONFLICT"
	ReasonTransportUnavailable Reason = "TRANSPORT_UNAVAILABLE"
)

// ReasonOf maps an error from the taxonomy to the reason code reported to
// callers. Unknown errors are treated as infrastructure faults.
func ReasonOf(err error) Reason {
	switch {
	case errors.Is(err, ErrValidation):
		return ReasonValidation
	case errors.Is(err, ErrInvalidTransition):
		return ReasonInvalidTransition
	case errors.Is(err, ErrOrderNotFound):
		return ReasonOrderNotFound
	case errors.Is(err, ErrConcurrencyConflict):
		return ReasonConcurrencyConflict
	default:
		return ReasonTransportUnavailable
	}
}

// IsBusinessError reports whether err is a rule violation that must be
// surfaced to the caller instead of retried.
func IsBusinessError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrOrderNotFound)
}
