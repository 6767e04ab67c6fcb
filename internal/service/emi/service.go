// Package emi evaluates a vehicle's monthly loan obligation against its
// payment history and records payments.
package emi

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/adilkt/fleetbook/internal/errs"
	"github.com/adilkt/fleetbook/internal/fleet"
	"github.com/adilkt/fleetbook/internal/notify"
)

// Status is the state of a vehicle's EMI for the current calendar month.
type Status string

const (
	// StatusNoConfig means the vehicle has no EMI set up.
	StatusNoConfig Status = "no_config"
	// StatusInactive means a config exists but is disabled.
	StatusInactive Status = "inactive"
	// StatusPaid means a payment discharging the current month exists.
	StatusPaid Status = "paid"
	// StatusDueOK means unpaid with more than warning_days remaining.
	StatusDueOK Status = "due_ok"
	// StatusDueWarning means unpaid with at most warning_days remaining,
	// including overdue (negative days).
	StatusDueWarning Status = "due_warning"
)

// Evaluation is the outcome of checking one vehicle's EMI for the month
// containing today.
type Evaluation struct {
	Status Status
	Config *fleet.EMI
	// DueDate is set for paid/due_ok/due_warning; the configured due day is
	// clamped to the last valid day of the current month.
	DueDate time.Time
	// DaysUntilDue may be negative when overdue. Meaningful only for
	// due_ok/due_warning.
	DaysUntilDue int
	Payment      *fleet.EMIPayment
}

// Repo defines the read operations the EMI service needs.
type Repo interface {
	GetVehicle(ctx context.Context, vehicleID uuid.UUID) (fleet.Vehicle, error)
	PartnersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]fleet.Partner, error)
	EMIByVehicle(ctx context.Context, vehicleID uuid.UUID) (fleet.EMI, error)
	EMIPaymentForMonth(ctx context.Context, vehicleID uuid.UUID, month fleet.Month) (fleet.EMIPayment, bool, error)
	EMIPaymentsByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]fleet.EMIPayment, error)
}

// Writer defines the write operations the EMI service needs.
type Writer interface {
	UpsertEMI(ctx context.Context, e fleet.EMI) (fleet.EMI, error)
	CreateEMIPayment(ctx context.Context, p fleet.EMIPayment) (fleet.EMIPayment, error)
}

// Service evaluates, configures and pays vehicle EMIs.
type Service interface {
	Evaluate(ctx context.Context, vehicleID uuid.UUID, today time.Time) (Evaluation, error)
	Configure(ctx context.Context, cfg fleet.EMI) (fleet.EMI, error)
	Pay(ctx context.Context, vehicleID uuid.UUID, amount money.Amount, date time.Time, remarks string) (fleet.EMIPayment, error)
	History(ctx context.Context, vehicleID uuid.UUID) (fleet.EMI, []fleet.EMIPayment, error)
}

type service struct {
	repo     Repo
	writer   Writer
	notifier notify.Notifier
}

// New constructs the EMI service.
func New(repo Repo, writer Writer, notifier notify.Notifier) Service {
	return &service{repo: repo, writer: writer, notifier: notifier}
}

func (s *service) Evaluate(ctx context.Context, vehicleID uuid.UUID, today time.Time) (Evaluation, error) {
	if vehicleID == uuid.Nil {
		return Evaluation{}, errs.ErrInvalid
	}
	cfg, err := s.repo.EMIByVehicle(ctx, vehicleID)
	if errors.Is(err, errs.ErrNotFound) {
		return Evaluation{Status: StatusNoConfig}, nil
	}
	if err != nil {
		return Evaluation{}, err
	}
	if !cfg.Active {
		return Evaluation{Status: StatusInactive, Config: &cfg}, nil
	}

	month := fleet.MonthOf(today)
	due := DueDate(cfg.DueDay, month)
	daysLeft := daysBetween(midnight(today), due)

	if payment, paid, err := s.repo.EMIPaymentForMonth(ctx, vehicleID, month); err != nil {
		return Evaluation{}, err
	} else if paid {
		return Evaluation{Status: StatusPaid, Config: &cfg, DueDate: due, DaysUntilDue: daysLeft, Payment: &payment}, nil
	}

	status := StatusDueOK
	if daysLeft <= cfg.WarningDays {
		status = StatusDueWarning
	}
	return Evaluation{Status: status, Config: &cfg, DueDate: due, DaysUntilDue: daysLeft}, nil
}

func (s *service) Configure(ctx context.Context, cfg fleet.EMI) (fleet.EMI, error) {
	if cfg.VehicleID == uuid.Nil {
		return fleet.EMI{}, errs.ErrInvalid
	}
	if cfg.DueDay < 1 || cfg.DueDay > 31 {
		return fleet.EMI{}, errs.ErrInvalid
	}
	if cfg.WarningDays < 0 {
		return fleet.EMI{}, errs.ErrInvalid
	}
	if !cfg.Amount.IsPos() {
		return fleet.EMI{}, errs.ErrInvalid
	}
	if _, err := s.repo.GetVehicle(ctx, cfg.VehicleID); err != nil {
		return fleet.EMI{}, err
	}
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	now := time.Now()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now
	return s.writer.UpsertEMI(ctx, cfg)
}

// Pay records the payment discharging the month containing date. A second
// attempt for the same month returns ErrAlreadyPaid and creates nothing.
func (s *service) Pay(ctx context.Context, vehicleID uuid.UUID, amount money.Amount, date time.Time, remarks string) (fleet.EMIPayment, error) {
	if vehicleID == uuid.Nil || !amount.IsPos() {
		return fleet.EMIPayment{}, errs.ErrInvalid
	}
	vehicle, err := s.repo.GetVehicle(ctx, vehicleID)
	if err != nil {
		return fleet.EMIPayment{}, err
	}
	if date.IsZero() {
		date = time.Now()
	}
	month := fleet.MonthOf(date)
	// Read-then-write pre-check; the store's own uniqueness guard backs it up
	// against concurrent attempts.
	if _, paid, err := s.repo.EMIPaymentForMonth(ctx, vehicleID, month); err != nil {
		return fleet.EMIPayment{}, err
	} else if paid {
		return fleet.EMIPayment{}, errs.ErrAlreadyPaid
	}
	payment := fleet.EMIPayment{
		ID:           uuid.New(),
		VehicleID:    vehicleID,
		Amount:       amount,
		Date:         date,
		MonthPaidFor: month,
		Remarks:      remarks,
		CreatedAt:    time.Now(),
	}
	created, err := s.writer.CreateEMIPayment(ctx, payment)
	if errors.Is(err, errs.ErrConflict) {
		return fleet.EMIPayment{}, errs.ErrAlreadyPaid
	}
	if err != nil {
		return fleet.EMIPayment{}, err
	}

	if partners, err := s.repo.PartnersByIDs(ctx, vehicle.PartnerIDs); err == nil {
		list := make([]fleet.Partner, 0, len(partners))
		for _, p := range partners {
			list = append(list, p)
		}
		s.notifier.NotifyPartners(ctx, vehicle, list, notify.Event{
			Action: notify.ActionEMIPayment,
			Details: map[string]string{
				"EMI Amount":   created.Amount.String(),
				"Payment Date": created.Date.Format("02 Jan 2006"),
				"Month":        created.MonthPaidFor.Label(),
			},
		})
	}
	return created, nil
}

func (s *service) History(ctx context.Context, vehicleID uuid.UUID) (fleet.EMI, []fleet.EMIPayment, error) {
	if vehicleID == uuid.Nil {
		return fleet.EMI{}, nil, errs.ErrInvalid
	}
	cfg, err := s.repo.EMIByVehicle(ctx, vehicleID)
	if err != nil {
		return fleet.EMI{}, nil, err
	}
	payments, err := s.repo.EMIPaymentsByVehicle(ctx, vehicleID)
	if err != nil {
		return fleet.EMI{}, nil, err
	}
	return cfg, payments, nil
}

// DueDate places the configured due day inside the given month, clamping
// day 29-31 to the month's last valid day.
func DueDate(dueDay int, month fleet.Month) time.Time {
	last := lastDayOfMonth(month)
	day := dueDay
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(month.Year, month.Mon, day, 0, 0, 0, 0, time.UTC)
}

func lastDayOfMonth(month fleet.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(month.Year, month.Mon+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
