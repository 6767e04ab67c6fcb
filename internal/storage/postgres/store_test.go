package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/govalues/money"

	"github.com/adilkt/fleetbook/internal/errs"
	"github.com/adilkt/fleetbook/internal/fleet"
)

// These tests exercise a real database and only run when TEST_DATABASE_URL
// points at one. The schema is (re)applied via EnsureSchema and all tables
// are truncated between tests.

func getTestDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres store tests")
	}
	return dsn
}

func openStore(t *testing.T) *Store {
	t.Helper()
	dsn := getTestDSN(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if _, err := s.pool.Exec(ctx,
		`truncate emi_payments, emis, taken_amounts, expenses, rentals, vehicles, partners cascade`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return s
}

func amt(t *testing.T, minor int64) money.Amount {
	t.Helper()
	a, err := money.NewAmountFromMinorUnits(fleet.Currency, minor)
	if err != nil {
		t.Fatalf("amount: %v", err)
	}
	return a
}

func seedVehicle(t *testing.T, s *Store, partnerIDs ...uuid.UUID) fleet.Vehicle {
	t.Helper()
	v, err := s.CreateVehicle(context.Background(), fleet.Vehicle{
		ID:                 uuid.New(),
		Name:               "Swift Dzire",
		RegistrationNumber: "KL-11-AB-" + uuid.NewString()[:4],
		PricePerDay:        amt(t, 1800_00),
		PartnerIDs:         partnerIDs,
		CreatedAt:          time.Now(),
	})
	if err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	return v
}

func TestVehicleRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	p, err := s.CreatePartner(ctx, fleet.Partner{
		ID: uuid.New(), Name: "Adil", Email: "adil@example.com", Active: true, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("create partner: %v", err)
	}
	v := seedVehicle(t, s, p.ID)

	got, err := s.GetVehicle(ctx, v.ID)
	if err != nil {
		t.Fatalf("get vehicle: %v", err)
	}
	if got.Name != v.Name || got.RegistrationNumber != v.RegistrationNumber {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if m, _ := got.PricePerDay.MinorUnits(); m != 1800_00 {
		t.Fatalf("price = %d minor", m)
	}
	if len(got.PartnerIDs) != 1 || got.PartnerIDs[0] != p.ID {
		t.Fatalf("partner ids = %v", got.PartnerIDs)
	}

	linked, err := s.VehiclesByPartner(ctx, p.ID)
	if err != nil {
		t.Fatalf("vehicles by partner: %v", err)
	}
	if len(linked) != 1 || linked[0].ID != v.ID {
		t.Fatalf("linked = %v", linked)
	}
}

func TestRentalMoneyAndDaysSurviveStorage(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	v := seedVehicle(t, s)

	days, _ := decimal.Parse("2.5")
	r, err := s.CreateRental(ctx, fleet.Rental{
		ID:                  uuid.New(),
		VehicleID:           v.ID,
		DateOut:             time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		CustomerName:        "Anand",
		DaysOfRent:          days,
		RentPerDay:          amt(t, 1000_00),
		AdvanceAmount:       amt(t, 500_00),
		TotalAmountReceived: amt(t, 2000_00),
		DiscountedAmount:    fleet.ZeroAmount(),
		CreatedAt:           time.Now(),
	})
	if err != nil {
		t.Fatalf("create rental: %v", err)
	}
	got, err := s.GetRental(ctx, r.ID)
	if err != nil {
		t.Fatalf("get rental: %v", err)
	}
	if got.DaysOfRent.String() != "2.5" {
		t.Fatalf("days = %s", got.DaysOfRent)
	}
	if m, _ := got.TotalRent().MinorUnits(); m != 2500_00 {
		t.Fatalf("total rent = %d minor", m)
	}
}

func TestDuplicateRegistrationConflicts(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	v := seedVehicle(t, s)

	_, err := s.CreateVehicle(ctx, fleet.Vehicle{
		ID:                 uuid.New(),
		Name:               "Clone",
		RegistrationNumber: v.RegistrationNumber,
		PricePerDay:        amt(t, 1000_00),
		CreatedAt:          time.Now(),
	})
	if !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestEMIPaymentUniquePerMonth(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	v := seedVehicle(t, s)

	if _, err := s.UpsertEMI(ctx, fleet.EMI{
		ID: uuid.New(), VehicleID: v.ID, Amount: amt(t, 12000_00),
		DueDay: 5, WarningDays: 3, Active: true, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("upsert emi: %v", err)
	}

	month := fleet.Month{Year: 2024, Mon: time.June}
	pay := fleet.EMIPayment{
		ID: uuid.New(), VehicleID: v.ID, Amount: amt(t, 12000_00),
		Date: month.Time(), MonthPaidFor: month, CreatedAt: time.Now(),
	}
	if _, err := s.CreateEMIPayment(ctx, pay); err != nil {
		t.Fatalf("first payment: %v", err)
	}
	pay.ID = uuid.New()
	if _, err := s.CreateEMIPayment(ctx, pay); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	got, found, err := s.EMIPaymentForMonth(ctx, v.ID, month)
	if err != nil || !found {
		t.Fatalf("payment for month: found=%v err=%v", found, err)
	}
	if got.MonthPaidFor != month {
		t.Fatalf("month = %v", got.MonthPaidFor)
	}
}

func TestDeletePartnerDetachesEverywhere(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	p, err := s.CreatePartner(ctx, fleet.Partner{
		ID: uuid.New(), Name: "Shibu", Email: "shibu@example.com", Active: true, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("create partner: %v", err)
	}
	v := seedVehicle(t, s, p.ID)

	if err := s.DeletePartner(ctx, p.ID); err != nil {
		t.Fatalf("delete partner: %v", err)
	}
	got, err := s.GetVehicle(ctx, v.ID)
	if err != nil {
		t.Fatalf("get vehicle: %v", err)
	}
	if len(got.PartnerIDs) != 0 {
		t.Fatalf("partner ids should be empty, got %v", got.PartnerIDs)
	}
	if _, err := s.GetPartner(ctx, p.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
