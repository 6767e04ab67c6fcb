// Package notify delivers best-effort partner notifications. Failures are
// logged and dropped: a notification must never fail or delay the write that
// triggered it.
package notify

import (
	"context"

	"github.com/adilkt/fleetbook/internal/fleet"
)

// Action is the kind of bookkeeping event a notification reports.
type Action string

const (
	ActionRental     Action = "rental"
	ActionExpense    Action = "expense"
	ActionEMIPayment Action = "emi_payment"
)

// Event carries the action kind and a free-form detail mapping rendered into
// the message body.
type Event struct {
	Action  Action
	Details map[string]string
}

// Notifier is a one-way sink: implementations notify the given partners about
// an event on a vehicle and never return an error.
type Notifier interface {
	NotifyPartners(ctx context.Context, vehicle fleet.Vehicle, partners []fleet.Partner, event Event)
}

// Nop discards all notifications. Used in tests and when SMTP is not
// configured.
type Nop struct{}

func (Nop) NotifyPartners(context.Context, fleet.Vehicle, []fleet.Partner, Event) {}
