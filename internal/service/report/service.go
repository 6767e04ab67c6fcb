// Package report builds the monthly income/expense/profit series and the
// dashboard totals. It holds no state of its own: every report is recomputed
// from a fresh store snapshot on each call.
package report

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/adilkt/fleetbook/internal/errs"
	"github.com/adilkt/fleetbook/internal/fleet"
)

// Mode selects which periods a series emits.
type Mode int

const (
	// Sparse emits only months containing at least one record.
	Sparse Mode = iota
	// Dense emits every month between the earliest and latest contributing
	// month inclusive, zero-filled. With no records at all it falls back to
	// a single all-zero row for the current month.
	Dense
)

// Repo defines the read operations the report service needs.
type Repo interface {
	ListVehicles(ctx context.Context) ([]fleet.Vehicle, error)
	GetVehicle(ctx context.Context, vehicleID uuid.UUID) (fleet.Vehicle, error)
	GetPartner(ctx context.Context, partnerID uuid.UUID) (fleet.Partner, error)
	ListRentals(ctx context.Context) ([]fleet.Rental, error)
	ListExpenses(ctx context.Context) ([]fleet.Expense, error)
	RentalsByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]fleet.Rental, error)
	ExpensesByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]fleet.Expense, error)
	RentalsByPartner(ctx context.Context, partnerID uuid.UUID) ([]fleet.Rental, error)
	ExpensesByPartner(ctx context.Context, partnerID uuid.UUID) ([]fleet.Expense, error)
}

// Dashboard carries the global lifetime totals and the sparse monthly series.
type Dashboard struct {
	TotalIncome  money.Amount
	TotalExpense money.Amount
	Profit       money.Amount
	VehicleCount int
	Monthly      []fleet.MonthlyFigure
}

// VehicleReport is the single-vehicle detail view: lifetime totals plus the
// dense month-by-month series and the raw records.
type VehicleReport struct {
	Vehicle      fleet.Vehicle
	TotalIncome  money.Amount
	TotalExpense money.Amount
	Profit       money.Amount
	Monthly      []fleet.MonthlyFigure
	Rentals      []fleet.Rental
	Expenses     []fleet.Expense
}

// PartnerYearReport is the per-partner view filtered to one calendar year.
type PartnerYearReport struct {
	Partner        fleet.Partner
	Year           int
	TotalIncome    money.Amount
	TotalExpense   money.Amount
	Profit         money.Amount
	Monthly        []fleet.MonthlyFigure
	Rentals        []fleet.Rental
	Expenses       []fleet.Expense
	AvailableYears []int
}

// Service computes dashboards and per-vehicle/per-partner series.
type Service interface {
	Dashboard(ctx context.Context) (Dashboard, error)
	VehicleReport(ctx context.Context, vehicleID uuid.UUID) (VehicleReport, error)
	PartnerYearReport(ctx context.Context, partnerID uuid.UUID, year int) (PartnerYearReport, error)
}

type service struct {
	repo Repo
	now  func() time.Time
}

// New constructs the report service.
func New(repo Repo) Service { return &service{repo: repo, now: time.Now} }

// NewWithClock is New with an injected clock for tests.
func NewWithClock(repo Repo, now func() time.Time) Service {
	return &service{repo: repo, now: now}
}

func (s *service) Dashboard(ctx context.Context) (Dashboard, error) {
	rentals, err := s.repo.ListRentals(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	expenses, err := s.repo.ListExpenses(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	vehicles, err := s.repo.ListVehicles(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	income, expense := totals(rentals, expenses)
	return Dashboard{
		TotalIncome:  income,
		TotalExpense: expense,
		Profit:       sub(income, expense),
		VehicleCount: len(vehicles),
		Monthly:      Series(rentals, expenses, Sparse, s.now()),
	}, nil
}

func (s *service) VehicleReport(ctx context.Context, vehicleID uuid.UUID) (VehicleReport, error) {
	if vehicleID == uuid.Nil {
		return VehicleReport{}, errs.ErrInvalid
	}
	vehicle, err := s.repo.GetVehicle(ctx, vehicleID)
	if err != nil {
		return VehicleReport{}, err
	}
	rentals, err := s.repo.RentalsByVehicle(ctx, vehicleID)
	if err != nil {
		return VehicleReport{}, err
	}
	expenses, err := s.repo.ExpensesByVehicle(ctx, vehicleID)
	if err != nil {
		return VehicleReport{}, err
	}
	income, expense := totals(rentals, expenses)
	return VehicleReport{
		Vehicle:      vehicle,
		TotalIncome:  income,
		TotalExpense: expense,
		Profit:       sub(income, expense),
		Monthly:      Series(rentals, expenses, Dense, s.now()),
		Rentals:      rentals,
		Expenses:     expenses,
	}, nil
}

func (s *service) PartnerYearReport(ctx context.Context, partnerID uuid.UUID, year int) (PartnerYearReport, error) {
	if partnerID == uuid.Nil {
		return PartnerYearReport{}, errs.ErrInvalid
	}
	partner, err := s.repo.GetPartner(ctx, partnerID)
	if err != nil {
		return PartnerYearReport{}, err
	}
	allRentals, err := s.repo.RentalsByPartner(ctx, partnerID)
	if err != nil {
		return PartnerYearReport{}, err
	}
	allExpenses, err := s.repo.ExpensesByPartner(ctx, partnerID)
	if err != nil {
		return PartnerYearReport{}, err
	}

	rentals := make([]fleet.Rental, 0, len(allRentals))
	years := map[int]struct{}{s.now().Year(): {}}
	for _, r := range allRentals {
		years[r.DateOut.Year()] = struct{}{}
		if r.DateOut.Year() == year {
			rentals = append(rentals, r)
		}
	}
	expenses := make([]fleet.Expense, 0, len(allExpenses))
	for _, e := range allExpenses {
		years[e.Date.Year()] = struct{}{}
		if e.Date.Year() == year {
			expenses = append(expenses, e)
		}
	}
	available := make([]int, 0, len(years))
	for y := range years {
		available = append(available, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(available)))

	income, expense := totals(rentals, expenses)
	return PartnerYearReport{
		Partner:        partner,
		Year:           year,
		TotalIncome:    income,
		TotalExpense:   expense,
		Profit:         sub(income, expense),
		Monthly:        Series(rentals, expenses, Sparse, s.now()),
		Rentals:        rentals,
		Expenses:       expenses,
		AvailableYears: available,
	}, nil
}

// Series buckets rentals (by date-out) and expenses (by date) into calendar
// months and emits the ordered income/expense/profit figures. Summation stays
// decimal-exact; callers convert to floats only at the display boundary.
func Series(rentals []fleet.Rental, expenses []fleet.Expense, mode Mode, now time.Time) []fleet.MonthlyFigure {
	incomeByMonth := make(map[fleet.Month]money.Amount)
	for _, r := range rentals {
		m := fleet.MonthOf(r.DateOut)
		incomeByMonth[m] = add(bucket(incomeByMonth, m), r.TotalAmountReceived)
	}
	expenseByMonth := make(map[fleet.Month]money.Amount)
	for _, e := range expenses {
		m := fleet.MonthOf(e.Date)
		expenseByMonth[m] = add(bucket(expenseByMonth, m), e.Amount)
	}

	var months []fleet.Month
	switch mode {
	case Dense:
		first, last, ok := monthSpan(incomeByMonth, expenseByMonth)
		if !ok {
			first = fleet.CurrentMonth(now)
			last = first
		}
		months = fleet.MonthsBetween(first, last)
	default:
		seen := make(map[fleet.Month]struct{}, len(incomeByMonth)+len(expenseByMonth))
		for m := range incomeByMonth {
			seen[m] = struct{}{}
		}
		for m := range expenseByMonth {
			seen[m] = struct{}{}
		}
		months = make([]fleet.Month, 0, len(seen))
		for m := range seen {
			months = append(months, m)
		}
		sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	}

	out := make([]fleet.MonthlyFigure, 0, len(months))
	for _, m := range months {
		income := bucket(incomeByMonth, m)
		expense := bucket(expenseByMonth, m)
		out = append(out, fleet.MonthlyFigure{
			Month:   m,
			Income:  income,
			Expense: expense,
			Profit:  sub(income, expense),
		})
	}
	return out
}

func totals(rentals []fleet.Rental, expenses []fleet.Expense) (income, expense money.Amount) {
	income, expense = fleet.ZeroAmount(), fleet.ZeroAmount()
	for _, r := range rentals {
		income = add(income, r.TotalAmountReceived)
	}
	for _, e := range expenses {
		expense = add(expense, e.Amount)
	}
	return income, expense
}

func monthSpan(a, b map[fleet.Month]money.Amount) (first, last fleet.Month, ok bool) {
	for m := range a {
		first, last, ok = widen(first, last, m, ok)
	}
	for m := range b {
		first, last, ok = widen(first, last, m, ok)
	}
	return first, last, ok
}

func widen(first, last, m fleet.Month, ok bool) (fleet.Month, fleet.Month, bool) {
	if !ok {
		return m, m, true
	}
	if m.Before(first) {
		first = m
	}
	if m.After(last) {
		last = m
	}
	return first, last, true
}

func bucket(byMonth map[fleet.Month]money.Amount, m fleet.Month) money.Amount {
	if v, ok := byMonth[m]; ok {
		return v
	}
	return fleet.ZeroAmount()
}

// add and sub ignore the currency-mismatch error: the book is single-currency
// by construction (fleet.Currency).
func add(a, b money.Amount) money.Amount {
	v, err := a.Add(b)
	if err != nil {
		return a
	}
	return v
}

func sub(a, b money.Amount) money.Amount {
	v, err := a.Sub(b)
	if err != nil {
		return a
	}
	return v
}
