package entities

import (
	"bytes"
	"encoding/gob"
	"time"
)

type OutcomeStatus string

const (
	OutcomeAccepted OutcomeStatus = "ACCEPTED"
	OutcomeRejected OutcomeStatus = "REJECTED"
	OutcomeDeferred OutcomeStatus = "DEFERRED"
)

// Outcome is the result of processing a command. Every command ends with
// exactly one of accepted, rejected or deferred.
type Outcome struct {
	CommandID string
	OrderID   string
	Status    OutcomeStatus

	// Event is set for accepted outcomes.
	Event *DomainEvent

	Reason     Reason
	Message    string
	RetryAfter time.Duration

	// PublishPending means the state change is committed but the event has not
	// reached the bus yet; the reconciler owns it from here.
	PublishPending bool

	// Replayed is set when the outcome was served from a previous processing
	// of the same command id.
	Replayed bool
}

func Accepted(cmd Command, ev DomainEvent) Outcome {
	return Outcome{
		CommandID: cmd.ID,
		OrderID:   cmd.OrderID,
		Status:    OutcomeAccepted,
		Event:     &ev,
	}
}

func Rejected(cmd Command, err error) Outcome {
	return Outcome{
		CommandID: cmd.ID,
		OrderID:   cmd.OrderID,
		Status:    OutcomeRejected,
		Reason:    ReasonOf(err),
		Message:   err.Error(),
	}
}

func Deferred(cmd Command, err error, retryAfter time.Duration) Outcome {
	return Outcome{
		CommandID:  cmd.ID,
		OrderID:    cmd.OrderID,
		Status:     OutcomeDeferred,
		Reason:     ReasonOf(err),
		Message:    err.Error(),
		RetryAfter: retryAfter,
	}
}

// Cacheable reports whether the outcome is final for its command id. Order
// not found is left out because a late create may still arrive.
func (o Outcome) Cacheable() bool {
	switch o.Status {
	case OutcomeAccepted:
		return true
	case OutcomeRejected:
		return o.Reason == ReasonInvalidTransition || o.Reason == ReasonValidation
	}
	return false
}

func (o *Outcome) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (o *Outcome) Unmarshal(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(o)
}
