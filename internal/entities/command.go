package entities

import (
	"fmt"
	"time"
)

type CommandKind string

const (
	CommandCreate         CommandKind = "CREATE"
	CommandPay            CommandKind = "PAY"
	CommandConfirmPayment CommandKind = "CONFIRM_PAYMENT"
	CommandDeclinePayment CommandKind = "DECLINE_PAYMENT"
	CommandShip           CommandKind = "SHIP"
	CommandCancel         CommandKind = "CANCEL"
	CommandRefund         CommandKind = "REFUND"
)

func (k CommandKind) Valid() bool {
	switch k {
	case CommandCreate, CommandPay, CommandConfirmPayment, CommandDeclinePayment,
		CommandShip, CommandCancel, CommandRefund:
		return true
	}
	return false
}

// CommandPayload holds the kind-specific data of a command. Only the fields
// relevant to the command kind are read.
type CommandPayload struct {
	CustomerName   string
	Items          []Item
	PaymentRef     string
	TrackingNumber string
	Reason         string
}

type Command struct {
	ID       string
	OrderID  string
	Kind     CommandKind
	Payload  CommandPayload
	IssuedAt time.Time
}

// Validate checks the envelope of the command. Payload rules belong to the
// state machine.
func (c Command) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: command id is required", ErrValidation)
	}
	if c.OrderID == "" {
		return fmt.Errorf("%w: order id is required", ErrValidation)
	}
	if !c.Kind.Valid() {
		return fmt.Errorf("%w: unknown command kind %q", ErrValidation, c.Kind)
	}
	return nil
}
