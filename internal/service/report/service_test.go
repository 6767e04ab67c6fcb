package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

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

func rentalOn(t *testing.T, vehicleID uuid.UUID, date time.Time, receivedMinor int64) fleet.Rental {
	t.Helper()
	return fleet.Rental{
		ID:                  uuid.New(),
		VehicleID:           vehicleID,
		DateOut:             date,
		CustomerName:        "Customer",
		TotalAmountReceived: amt(t, receivedMinor),
		RentPerDay:          fleet.ZeroAmount(),
		AdvanceAmount:       fleet.ZeroAmount(),
		DiscountedAmount:    fleet.ZeroAmount(),
	}
}

func expenseOn(t *testing.T, vehicleID uuid.UUID, date time.Time, amountMinor int64) fleet.Expense {
	t.Helper()
	return fleet.Expense{
		ID:          uuid.New(),
		VehicleID:   vehicleID,
		Date:        date,
		Particulars: "Fuel",
		Amount:      amt(t, amountMinor),
	}
}

func TestSeriesSparseSkipsEmptyMonths(t *testing.T) {
	vehicleID := uuid.New()
	jan := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	apr := time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC)
	rentals := []fleet.Rental{
		rentalOn(t, vehicleID, jan, 5000_00),
		rentalOn(t, vehicleID, apr, 3000_00),
	}
	expenses := []fleet.Expense{expenseOn(t, vehicleID, apr, 1000_00)}

	figures := Series(rentals, expenses, Sparse, time.Now())
	if len(figures) != 2 {
		t.Fatalf("expected 2 months, got %d", len(figures))
	}
	if figures[0].Month.String() != "2024-01" || figures[1].Month.String() != "2024-04" {
		t.Fatalf("unexpected months: %v, %v", figures[0].Month, figures[1].Month)
	}
	if minorOf(t, figures[1].Profit) != 2000_00 {
		t.Fatalf("april profit = %d", minorOf(t, figures[1].Profit))
	}
}

func TestSeriesDenseFillsGapMonths(t *testing.T) {
	vehicleID := uuid.New()
	jan := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	apr := time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC)
	rentals := []fleet.Rental{
		rentalOn(t, vehicleID, jan, 5000_00),
		rentalOn(t, vehicleID, apr, 3000_00),
	}

	figures := Series(rentals, nil, Dense, time.Now())
	if len(figures) != 4 {
		t.Fatalf("expected Jan..Apr = 4 months, got %d", len(figures))
	}
	for _, f := range figures[1:3] {
		if !f.Income.IsZero() || !f.Expense.IsZero() || !f.Profit.IsZero() {
			t.Fatalf("gap month %v should be all zero", f.Month)
		}
	}
}

func TestSeriesDenseEmptyFallsBackToCurrentMonth(t *testing.T) {
	now := time.Date(2024, time.July, 10, 0, 0, 0, 0, time.UTC)
	figures := Series(nil, nil, Dense, now)
	if len(figures) != 1 {
		t.Fatalf("expected one fallback row, got %d", len(figures))
	}
	if figures[0].Month.String() != "2024-07" {
		t.Fatalf("fallback month = %v", figures[0].Month)
	}
	if !figures[0].Profit.IsZero() {
		t.Fatalf("fallback row should be zero")
	}
}

func TestSeriesProfitIsIncomeMinusExpense(t *testing.T) {
	vehicleID := uuid.New()
	date := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	rentals := []fleet.Rental{
		rentalOn(t, vehicleID, date, 1234_56),
		rentalOn(t, vehicleID, date.AddDate(0, 0, 10), 1000_00),
	}
	expenses := []fleet.Expense{expenseOn(t, vehicleID, date.AddDate(0, 0, 5), 234_56)}

	figures := Series(rentals, expenses, Sparse, time.Now())
	if len(figures) != 1 {
		t.Fatalf("expected single month, got %d", len(figures))
	}
	f := figures[0]
	if minorOf(t, f.Income)-minorOf(t, f.Expense) != minorOf(t, f.Profit) {
		t.Fatalf("profit mismatch: income=%d expense=%d profit=%d",
			minorOf(t, f.Income), minorOf(t, f.Expense), minorOf(t, f.Profit))
	}
	if minorOf(t, f.Profit) != 2000_00 {
		t.Fatalf("profit = %d", minorOf(t, f.Profit))
	}
}

func TestDashboardTotals(t *testing.T) {
	store := memory.New()
	v1 := fleet.Vehicle{ID: uuid.New(), Name: "A", RegistrationNumber: "R1", PricePerDay: fleet.ZeroAmount()}
	v2 := fleet.Vehicle{ID: uuid.New(), Name: "B", RegistrationNumber: "R2", PricePerDay: fleet.ZeroAmount()}
	store.SeedVehicle(v1)
	store.SeedVehicle(v2)
	date := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)
	store.SeedRental(rentalOn(t, v1.ID, date, 4000_00))
	store.SeedRental(rentalOn(t, v2.ID, date, 1000_00))
	store.SeedExpense(expenseOn(t, v1.ID, date, 500_00))

	svc := New(store)
	d, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.VehicleCount != 2 {
		t.Fatalf("vehicle count = %d", d.VehicleCount)
	}
	if minorOf(t, d.TotalIncome) != 5000_00 {
		t.Fatalf("total income = %d", minorOf(t, d.TotalIncome))
	}
	if minorOf(t, d.Profit) != 4500_00 {
		t.Fatalf("profit = %d", minorOf(t, d.Profit))
	}
	if len(d.Monthly) != 1 {
		t.Fatalf("expected sparse single month, got %d", len(d.Monthly))
	}
}

func TestVehicleReportDenseSeries(t *testing.T) {
	store := memory.New()
	v := fleet.Vehicle{ID: uuid.New(), Name: "A", RegistrationNumber: "R1", PricePerDay: fleet.ZeroAmount()}
	store.SeedVehicle(v)
	store.SeedRental(rentalOn(t, v.ID, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), 1000_00))
	store.SeedRental(rentalOn(t, v.ID, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), 1000_00))

	svc := New(store)
	rep, err := svc.VehicleReport(context.Background(), v.ID)
	if err != nil {
		t.Fatalf("vehicle report: %v", err)
	}
	if len(rep.Monthly) != 3 {
		t.Fatalf("expected dense Jan..Mar, got %d rows", len(rep.Monthly))
	}
	if len(rep.Rentals) != 2 {
		t.Fatalf("expected raw rentals, got %d", len(rep.Rentals))
	}
}

func TestPartnerYearReportFiltersAndYears(t *testing.T) {
	store := memory.New()
	partner := fleet.Partner{ID: uuid.New(), Name: "P", Active: true}
	store.SeedPartner(partner)
	v := fleet.Vehicle{ID: uuid.New(), Name: "A", RegistrationNumber: "R1", PricePerDay: fleet.ZeroAmount(), PartnerIDs: []uuid.UUID{partner.ID}}
	store.SeedVehicle(v)

	r2023 := rentalOn(t, v.ID, time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC), 1000_00)
	r2023.PartnerID = partner.ID
	r2024 := rentalOn(t, v.ID, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), 2000_00)
	r2024.PartnerID = partner.ID
	store.SeedRental(r2023)
	store.SeedRental(r2024)

	now := time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC)
	svc := NewWithClock(store, func() time.Time { return now })
	rep, err := svc.PartnerYearReport(context.Background(), partner.ID, 2023)
	if err != nil {
		t.Fatalf("partner report: %v", err)
	}
	if minorOf(t, rep.TotalIncome) != 1000_00 {
		t.Fatalf("2023 income = %d", minorOf(t, rep.TotalIncome))
	}
	// Years with activity plus the current one, newest first.
	want := []int{2024, 2023}
	if len(rep.AvailableYears) != len(want) {
		t.Fatalf("available years = %v", rep.AvailableYears)
	}
	for i, y := range want {
		if rep.AvailableYears[i] != y {
			t.Fatalf("available years = %v, want %v", rep.AvailableYears, want)
		}
	}
}
