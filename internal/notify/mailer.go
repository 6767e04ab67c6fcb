package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"sort"
	"strings"

	"github.com/adilkt/fleetbook/internal/fleet"
)

// Mailer sends plain-text notification mail over SMTP to every active partner
// of the vehicle that has an email address. Delivery happens on its own
// goroutine; errors are logged at ERROR and never retried.
type Mailer struct {
	Addr string // host:port
	From string
	Auth smtp.Auth // nil for unauthenticated relays
	Log  *slog.Logger
	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer constructs an SMTP-backed notifier.
func NewMailer(addr, from string, auth smtp.Auth, log *slog.Logger) *Mailer {
	return &Mailer{Addr: addr, From: from, Auth: auth, Log: log, send: smtp.SendMail}
}

// NotifyPartners implements Notifier.
func (m *Mailer) NotifyPartners(_ context.Context, vehicle fleet.Vehicle, partners []fleet.Partner, event Event) {
	recipients := make([]string, 0, len(partners))
	for _, p := range partners {
		if p.Active && p.Email != "" {
			recipients = append(recipients, p.Email)
		}
	}
	if len(recipients) == 0 {
		return
	}
	subject, body := render(vehicle, event)
	if subject == "" {
		return // unknown action kind
	}
	msg := []byte("From: " + m.From + "\r\n" +
		"To: " + strings.Join(recipients, ", ") + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body)
	sendFn := m.send
	if sendFn == nil {
		sendFn = smtp.SendMail
	}
	go func() {
		if err := sendFn(m.Addr, m.Auth, m.From, recipients, msg); err != nil {
			m.Log.Error("partner notification failed",
				"vehicle", vehicle.Name, "action", string(event.Action), "err", err)
		}
	}()
}

func render(vehicle fleet.Vehicle, event Event) (subject, body string) {
	heading := ""
	switch event.Action {
	case ActionRental:
		subject = "New Rental Added - " + vehicle.Name
		heading = "New Rental Added to"
	case ActionExpense:
		subject = "New Expense Added - " + vehicle.Name
		heading = "New Expense Added to"
	case ActionEMIPayment:
		subject = "EMI Payment Made - " + vehicle.Name
		heading = "EMI Payment Made for"
	default:
		return "", ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (%s)\n\n", heading, vehicle.Name, vehicle.RegistrationNumber)
	keys := make([]string, 0, len(event.Details))
	for k := range event.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, event.Details[k])
	}
	b.WriteString("\nThis is an automated notification from Fleetbook.\n")
	return subject, b.String()
}
