package share

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/adilkt/fleetbook/internal/errs"
	"github.com/adilkt/fleetbook/internal/fleet"
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

func minorOf(t *testing.T, a money.Amount) int64 {
	t.Helper()
	v, ok := a.MinorUnits()
	if !ok {
		t.Fatalf("minor units overflow for %v", a)
	}
	return v
}

func seedVehicleWithProfit(t *testing.T, store *memory.Store, partnerIDs []uuid.UUID, reg string, profitMinor int64) fleet.Vehicle {
	t.Helper()
	v := fleet.Vehicle{
		ID:                 uuid.New(),
		Name:               "Vehicle " + reg,
		RegistrationNumber: reg,
		PricePerDay:        fleet.ZeroAmount(),
		PartnerIDs:         partnerIDs,
	}
	store.SeedVehicle(v)
	store.SeedRental(fleet.Rental{
		ID:                  uuid.New(),
		VehicleID:           v.ID,
		DateOut:             time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		CustomerName:        "Customer",
		TotalAmountReceived: amt(t, profitMinor),
		RentPerDay:          fleet.ZeroAmount(),
		AdvanceAmount:       fleet.ZeroAmount(),
		DiscountedAmount:    fleet.ZeroAmount(),
	})
	return v
}

func TestSummarySplitsEquallyByPartnerCount(t *testing.T) {
	store := memory.New()
	p1 := fleet.Partner{ID: uuid.New(), Name: "P1", Active: true}
	p2 := fleet.Partner{ID: uuid.New(), Name: "P2", Active: true}
	store.SeedPartner(p1)
	store.SeedPartner(p2)
	seedVehicleWithProfit(t, store, []uuid.UUID{p1.ID, p2.ID}, "R1", 9000_00)

	svc := New(store, store)
	sum, err := svc.Summary(context.Background(), p1.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(sum.Vehicles) != 1 {
		t.Fatalf("expected 1 vehicle line, got %d", len(sum.Vehicles))
	}
	if minorOf(t, sum.Vehicles[0].Share) != 4500_00 {
		t.Fatalf("share = %d, want half of 9000", minorOf(t, sum.Vehicles[0].Share))
	}
	if minorOf(t, sum.TotalShare) != 4500_00 {
		t.Fatalf("total share = %d", minorOf(t, sum.TotalShare))
	}
}

// Shares always split by the current partner list: adding a partner later
// recomputes historical profit over the new headcount too.
func TestSummarySplitIsRetroactive(t *testing.T) {
	store := memory.New()
	p1 := fleet.Partner{ID: uuid.New(), Name: "P1", Active: true}
	store.SeedPartner(p1)
	v := seedVehicleWithProfit(t, store, []uuid.UUID{p1.ID}, "R1", 9000_00)

	svc := New(store, store)
	before, err := svc.Summary(context.Background(), p1.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if minorOf(t, before.TotalShare) != 9000_00 {
		t.Fatalf("sole partner share = %d", minorOf(t, before.TotalShare))
	}

	p2 := fleet.Partner{ID: uuid.New(), Name: "P2", Active: true}
	store.SeedPartner(p2)
	v.PartnerIDs = append(v.PartnerIDs, p2.ID)
	if _, err := store.UpdateVehicle(context.Background(), v); err != nil {
		t.Fatalf("update vehicle: %v", err)
	}

	after, err := svc.Summary(context.Background(), p1.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if minorOf(t, after.TotalShare) != 4500_00 {
		t.Fatalf("share after adding partner = %d, want 4500", minorOf(t, after.TotalShare))
	}
}

func TestSummaryBalanceReflectsTaken(t *testing.T) {
	store := memory.New()
	p := fleet.Partner{ID: uuid.New(), Name: "P", Active: true}
	store.SeedPartner(p)
	v := seedVehicleWithProfit(t, store, []uuid.UUID{p.ID}, "R1", 5000_00)

	svc := New(store, store)
	if _, err := svc.RecordTaken(context.Background(), p.ID, v.ID, amt(t, 1500_00), time.Time{}); err != nil {
		t.Fatalf("record taken: %v", err)
	}

	sum, err := svc.Summary(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if minorOf(t, sum.TotalTaken) != 1500_00 {
		t.Fatalf("taken = %d", minorOf(t, sum.TotalTaken))
	}
	if minorOf(t, sum.RemainingBalance) != 3500_00 {
		t.Fatalf("remaining = %d", minorOf(t, sum.RemainingBalance))
	}
}

func TestRecordTakenRejectsNonPositiveAmount(t *testing.T) {
	store := memory.New()
	p := fleet.Partner{ID: uuid.New(), Name: "P", Active: true}
	store.SeedPartner(p)
	v := seedVehicleWithProfit(t, store, []uuid.UUID{p.ID}, "R1", 5000_00)

	svc := New(store, store)
	_, err := svc.RecordTaken(context.Background(), p.ID, v.ID, fleet.ZeroAmount(), time.Now())
	if !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestRecordTakenRejectsUnlinkedPartner(t *testing.T) {
	store := memory.New()
	owner := fleet.Partner{ID: uuid.New(), Name: "Owner", Active: true}
	outsider := fleet.Partner{ID: uuid.New(), Name: "Outsider", Active: true}
	store.SeedPartner(owner)
	store.SeedPartner(outsider)
	v := seedVehicleWithProfit(t, store, []uuid.UUID{owner.ID}, "R1", 5000_00)

	svc := New(store, store)
	_, err := svc.RecordTaken(context.Background(), outsider.ID, v.ID, amt(t, 100_00), time.Now())
	if !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestYearBreakdownDividesMonthlyFigures(t *testing.T) {
	store := memory.New()
	p1 := fleet.Partner{ID: uuid.New(), Name: "P1", Active: true}
	p2 := fleet.Partner{ID: uuid.New(), Name: "P2", Active: true}
	store.SeedPartner(p1)
	store.SeedPartner(p2)
	v := seedVehicleWithProfit(t, store, []uuid.UUID{p1.ID, p2.ID}, "R1", 6000_00)
	// Activity outside the requested year must not appear.
	store.SeedRental(fleet.Rental{
		ID:                  uuid.New(),
		VehicleID:           v.ID,
		DateOut:             time.Date(2023, time.December, 20, 0, 0, 0, 0, time.UTC),
		CustomerName:        "Old Customer",
		TotalAmountReceived: amt(t, 10_000_00),
		RentPerDay:          fleet.ZeroAmount(),
		AdvanceAmount:       fleet.ZeroAmount(),
		DiscountedAmount:    fleet.ZeroAmount(),
	})

	svc := New(store, store)
	shares, err := svc.YearBreakdown(context.Background(), p1.ID, 2024)
	if err != nil {
		t.Fatalf("year breakdown: %v", err)
	}
	if len(shares) != 1 {
		t.Fatalf("expected 1 vehicle, got %d", len(shares))
	}
	vs := shares[0]
	if vs.PartnerCount != 2 {
		t.Fatalf("partner count = %d", vs.PartnerCount)
	}
	if len(vs.Months) != 1 {
		t.Fatalf("expected only the 2024 month, got %v", vs.Months)
	}
	if minorOf(t, vs.Months[0].IncomeShare) != 3000_00 {
		t.Fatalf("income share = %d", minorOf(t, vs.Months[0].IncomeShare))
	}
}
