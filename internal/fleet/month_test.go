package fleet

import (
	"testing"
	"time"

	"github.com/govalues/decimal"
	"github.com/govalues/money"
)

func TestMonthOfDiscardsDayAndTime(t *testing.T) {
	a := MonthOf(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	b := MonthOf(time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC))
	if a != b {
		t.Fatalf("expected same bucket, got %v and %v", a, b)
	}
}

func TestMonthNextWrapsYear(t *testing.T) {
	m := Month{Year: 2023, Mon: time.December}
	next := m.Next()
	if next.Year != 2024 || next.Mon != time.January {
		t.Fatalf("expected 2024-01, got %v", next)
	}
}

func TestMonthsBetweenInclusive(t *testing.T) {
	first := Month{Year: 2023, Mon: time.November}
	last := Month{Year: 2024, Mon: time.February}
	months := MonthsBetween(first, last)
	if len(months) != 4 {
		t.Fatalf("expected 4 months, got %d (%v)", len(months), months)
	}
	if months[0] != first || months[3] != last {
		t.Fatalf("expected inclusive span, got %v", months)
	}
}

func TestMonthsBetweenSingle(t *testing.T) {
	m := Month{Year: 2024, Mon: time.June}
	months := MonthsBetween(m, m)
	if len(months) != 1 || months[0] != m {
		t.Fatalf("expected just %v, got %v", m, months)
	}
}

func TestMonthsBetweenReversedIsEmpty(t *testing.T) {
	first := Month{Year: 2024, Mon: time.June}
	last := Month{Year: 2024, Mon: time.May}
	if months := MonthsBetween(first, last); len(months) != 0 {
		t.Fatalf("expected empty span, got %v", months)
	}
}

func TestMonthFormatting(t *testing.T) {
	m := Month{Year: 2024, Mon: time.January}
	if got := m.String(); got != "2024-01" {
		t.Fatalf("String() = %q", got)
	}
	if got := m.Label(); got != "January 2024" {
		t.Fatalf("Label() = %q", got)
	}
}

func TestRentalTotalRentAndBalance(t *testing.T) {
	days, err := decimal.Parse("2.5")
	if err != nil {
		t.Fatalf("parse days: %v", err)
	}
	r := Rental{
		DaysOfRent:          days,
		RentPerDay:          amt(t, 1000_00),
		TotalAmountReceived: amt(t, 2000_00),
	}
	if got, _ := r.TotalRent().MinorUnits(); got != 2500_00 {
		t.Fatalf("TotalRent() minor = %d", got)
	}
	if got, _ := r.Balance().MinorUnits(); got != 500_00 {
		t.Fatalf("Balance() minor = %d", got)
	}
}

func amt(t *testing.T, minor int64) money.Amount {
	t.Helper()
	a, err := money.NewAmountFromMinorUnits(Currency, minor)
	if err != nil {
		t.Fatalf("amount: %v", err)
	}
	return a
}
