package emi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/adilkt/fleetbook/internal/errs"
	"github.com/adilkt/fleetbook/internal/fleet"
	"github.com/adilkt/fleetbook/internal/notify"
	"github.com/adilkt/fleetbook/internal/storage/memory"
)

func amt(t *testing.T, minor int64) money.Amount {
	t.Helper()
	a, err := money.NewAmountFromMinorUnits(fleet.Currency, minor)
	if err != nil {
		t.Fatalf("amount: %v", err)
	}
	return a
}

func setup(t *testing.T) (*memory.Store, Service, fleet.Vehicle) {
	t.Helper()
	store := memory.New()
	v := fleet.Vehicle{ID: uuid.New(), Name: "Swift", RegistrationNumber: "R1", PricePerDay: fleet.ZeroAmount()}
	store.SeedVehicle(v)
	return store, New(store, store, notify.Nop{}), v
}

func configure(t *testing.T, svc Service, vehicleID uuid.UUID, dueDay, warningDays int) fleet.EMI {
	t.Helper()
	cfg, err := svc.Configure(context.Background(), fleet.EMI{
		VehicleID:   vehicleID,
		Amount:      amt(t, 15000_00),
		DueDay:      dueDay,
		WarningDays: warningDays,
		Active:      true,
	})
	if err != nil {
		t.Fatalf("configure: %v", err)
	}
	return cfg
}

func TestDueDateClampsToShortMonths(t *testing.T) {
	cases := []struct {
		month fleet.Month
		day   int
		want  int
	}{
		{fleet.Month{Year: 2024, Mon: time.April}, 31, 30},
		{fleet.Month{Year: 2024, Mon: time.February}, 31, 29}, // leap year
		{fleet.Month{Year: 2023, Mon: time.February}, 30, 28},
		{fleet.Month{Year: 2024, Mon: time.January}, 31, 31},
		{fleet.Month{Year: 2024, Mon: time.June}, 5, 5},
	}
	for _, tc := range cases {
		got := DueDate(tc.day, tc.month)
		if got.Day() != tc.want {
			t.Errorf("DueDate(%d, %v).Day() = %d, want %d", tc.day, tc.month, got.Day(), tc.want)
		}
	}
}

func TestEvaluateNoConfig(t *testing.T) {
	_, svc, v := setup(t)
	ev, err := svc.Evaluate(context.Background(), v.ID, time.Now())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if ev.Status != StatusNoConfig {
		t.Fatalf("status = %q", ev.Status)
	}
}

func TestEvaluateInactive(t *testing.T) {
	store, svc, v := setup(t)
	cfg := configure(t, svc, v.ID, 10, 3)
	cfg.Active = false
	if _, err := store.UpsertEMI(context.Background(), cfg); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	ev, err := svc.Evaluate(context.Background(), v.ID, time.Now())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if ev.Status != StatusInactive {
		t.Fatalf("status = %q", ev.Status)
	}
}

func TestEvaluateDueStatuses(t *testing.T) {
	_, svc, v := setup(t)
	configure(t, svc, v.ID, 20, 3)

	// 10 days out: fine.
	today := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)
	ev, err := svc.Evaluate(context.Background(), v.ID, today)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if ev.Status != StatusDueOK {
		t.Fatalf("status = %q, want due_ok", ev.Status)
	}
	if ev.DaysUntilDue != 10 {
		t.Fatalf("days until due = %d", ev.DaysUntilDue)
	}

	// Exactly warning_days out: the boundary warns.
	today = time.Date(2024, time.June, 17, 12, 0, 0, 0, time.UTC)
	ev, err = svc.Evaluate(context.Background(), v.ID, today)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if ev.Status != StatusDueWarning {
		t.Fatalf("status = %q, want due_warning at boundary", ev.Status)
	}

	// Overdue: still warning, days go negative.
	today = time.Date(2024, time.June, 25, 12, 0, 0, 0, time.UTC)
	ev, err = svc.Evaluate(context.Background(), v.ID, today)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if ev.Status != StatusDueWarning {
		t.Fatalf("status = %q, want due_warning when overdue", ev.Status)
	}
	if ev.DaysUntilDue != -5 {
		t.Fatalf("days until due = %d, want -5", ev.DaysUntilDue)
	}
}

func TestEvaluatePaidWinsRegardlessOfDate(t *testing.T) {
	_, svc, v := setup(t)
	configure(t, svc, v.ID, 20, 3)

	payDate := time.Date(2024, time.June, 2, 0, 0, 0, 0, time.UTC)
	if _, err := svc.Pay(context.Background(), v.ID, amt(t, 15000_00), payDate, ""); err != nil {
		t.Fatalf("pay: %v", err)
	}

	// Even deep in the warning window the month reads as paid.
	today := time.Date(2024, time.June, 19, 0, 0, 0, 0, time.UTC)
	ev, err := svc.Evaluate(context.Background(), v.ID, today)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if ev.Status != StatusPaid {
		t.Fatalf("status = %q, want paid", ev.Status)
	}
	if ev.Payment == nil {
		t.Fatalf("expected payment attached")
	}
}

func TestPayTwiceSameMonthFails(t *testing.T) {
	_, svc, v := setup(t)
	configure(t, svc, v.ID, 10, 3)

	date := time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC)
	if _, err := svc.Pay(context.Background(), v.ID, amt(t, 15000_00), date, "first"); err != nil {
		t.Fatalf("first pay: %v", err)
	}
	_, err := svc.Pay(context.Background(), v.ID, amt(t, 15000_00), date.AddDate(0, 0, 20), "second")
	if !errors.Is(err, errs.ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}

	// A different month goes through.
	if _, err := svc.Pay(context.Background(), v.ID, amt(t, 15000_00), date.AddDate(0, 1, 0), "july"); err != nil {
		t.Fatalf("next month pay: %v", err)
	}
}

func TestConfigureValidation(t *testing.T) {
	_, svc, v := setup(t)
	cases := []fleet.EMI{
		{VehicleID: v.ID, Amount: amt(t, 100_00), DueDay: 0, WarningDays: 3, Active: true},
		{VehicleID: v.ID, Amount: amt(t, 100_00), DueDay: 32, WarningDays: 3, Active: true},
		{VehicleID: v.ID, Amount: amt(t, 100_00), DueDay: 10, WarningDays: -1, Active: true},
		{VehicleID: v.ID, Amount: fleet.ZeroAmount(), DueDay: 10, WarningDays: 3, Active: true},
		{VehicleID: uuid.Nil, Amount: amt(t, 100_00), DueDay: 10, WarningDays: 3, Active: true},
	}
	for i, cfg := range cases {
		if _, err := svc.Configure(context.Background(), cfg); !errors.Is(err, errs.ErrInvalid) {
			t.Errorf("case %d: expected ErrInvalid, got %v", i, err)
		}
	}
}

func TestConfigureUpsertsSingleConfig(t *testing.T) {
	store, svc, v := setup(t)
	first := configure(t, svc, v.ID, 10, 3)
	second, err := svc.Configure(context.Background(), fleet.EMI{
		VehicleID:   v.ID,
		Amount:      amt(t, 20000_00),
		DueDay:      15,
		WarningDays: 5,
		Active:      true,
	})
	if err != nil {
		t.Fatalf("reconfigure: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("reconfigure must keep the config identity")
	}
	got, err := store.EMIByVehicle(context.Background(), v.ID)
	if err != nil {
		t.Fatalf("emi by vehicle: %v", err)
	}
	if got.DueDay != 15 {
		t.Fatalf("due day = %d after reconfigure", got.DueDay)
	}
}

func TestHistoryReturnsConfigAndPayments(t *testing.T) {
	_, svc, v := setup(t)
	configure(t, svc, v.ID, 10, 3)
	date := time.Date(2024, time.May, 5, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, err := svc.Pay(context.Background(), v.ID, amt(t, 15000_00), date.AddDate(0, i, 0), ""); err != nil {
			t.Fatalf("pay %d: %v", i, err)
		}
	}
	cfg, payments, err := svc.History(context.Background(), v.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if cfg.DueDay != 10 {
		t.Fatalf("config due day = %d", cfg.DueDay)
	}
	if len(payments) != 3 {
		t.Fatalf("payments = %d", len(payments))
	}
}
