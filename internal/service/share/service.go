// Package share computes each partner's slice of vehicle profits and nets it
// against their recorded withdrawals.
//
// Policy: a vehicle's lifetime profit is split equally across its CURRENT
// partner count. The same divisor is applied to historical months in the
// yearly breakdown, even for partners added after those transactions
// occurred. That retroactive equal split is deliberate and load-bearing;
// tests assert it.
package share

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/govalues/money"

	"github.com/adilkt/fleetbook/internal/errs"
	"github.com/adilkt/fleetbook/internal/fleet"
	"github.com/adilkt/fleetbook/internal/service/report"
)

// Repo defines the read operations the share service needs.
type Repo interface {
	GetPartner(ctx context.Context, partnerID uuid.UUID) (fleet.Partner, error)
	GetVehicle(ctx context.Context, vehicleID uuid.UUID) (fleet.Vehicle, error)
	VehiclesByPartner(ctx context.Context, partnerID uuid.UUID) ([]fleet.Vehicle, error)
	RentalsByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]fleet.Rental, error)
	ExpensesByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]fleet.Expense, error)
	TakenAmountsByPartner(ctx context.Context, partnerID uuid.UUID) ([]fleet.TakenAmount, error)
}

// Writer defines the write operations the share service needs.
type Writer interface {
	CreateTakenAmount(ctx context.Context, t fleet.TakenAmount) (fleet.TakenAmount, error)
}

// VehicleShare is one vehicle's line in a partner's share summary.
type VehicleShare struct {
	Vehicle       fleet.Vehicle
	VehicleProfit money.Amount
	PartnerCount  int
	// Share is VehicleProfit / PartnerCount, zero when the vehicle has no
	// partners on record.
	Share   money.Amount
	Taken   money.Amount
	Balance money.Amount
}

// Summary aggregates a partner's shares across all linked vehicles.
type Summary struct {
	Partner          fleet.Partner
	Vehicles         []VehicleShare
	TotalShare       money.Amount
	TotalTaken       money.Amount
	RemainingBalance money.Amount
}

// MonthShare is the partner's slice of one vehicle's activity in one month.
type MonthShare struct {
	Month        fleet.Month
	IncomeShare  money.Amount
	ExpenseShare money.Amount
}

// VehicleYearShare is the per-month breakdown for one vehicle in one year.
type VehicleYearShare struct {
	Vehicle      fleet.Vehicle
	PartnerCount int
	Months       []MonthShare
}

// Service exposes share computation and withdrawal recording.
type Service interface {
	Summary(ctx context.Context, partnerID uuid.UUID) (Summary, error)
	YearBreakdown(ctx context.Context, partnerID uuid.UUID, year int) ([]VehicleYearShare, error)
	RecordTaken(ctx context.Context, partnerID, vehicleID uuid.UUID, amount money.Amount, date time.Time) (fleet.TakenAmount, error)
}

type service struct {
	repo   Repo
	writer Writer
}

// New constructs the share service.
func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

func (s *service) Summary(ctx context.Context, partnerID uuid.UUID) (Summary, error) {
	if partnerID == uuid.Nil {
		return Summary{}, errs.ErrInvalid
	}
	partner, err := s.repo.GetPartner(ctx, partnerID)
	if err != nil {
		return Summary{}, err
	}
	vehicles, err := s.repo.VehiclesByPartner(ctx, partnerID)
	if err != nil {
		return Summary{}, err
	}
	taken, err := s.repo.TakenAmountsByPartner(ctx, partnerID)
	if err != nil {
		return Summary{}, err
	}
	takenByVehicle := make(map[uuid.UUID]money.Amount, len(vehicles))
	for _, t := range taken {
		prev, ok := takenByVehicle[t.VehicleID]
		if !ok {
			prev = fleet.ZeroAmount()
		}
		takenByVehicle[t.VehicleID] = add(prev, t.Amount)
	}

	out := Summary{
		Partner:          partner,
		Vehicles:         make([]VehicleShare, 0, len(vehicles)),
		TotalShare:       fleet.ZeroAmount(),
		TotalTaken:       fleet.ZeroAmount(),
		RemainingBalance: fleet.ZeroAmount(),
	}
	for _, v := range vehicles {
		rentals, err := s.repo.RentalsByVehicle(ctx, v.ID)
		if err != nil {
			return Summary{}, err
		}
		expenses, err := s.repo.ExpensesByVehicle(ctx, v.ID)
		if err != nil {
			return Summary{}, err
		}
		profit := lifetimeProfit(rentals, expenses)
		vshare := splitEqually(profit, len(v.PartnerIDs))
		vtaken, ok := takenByVehicle[v.ID]
		if !ok {
			vtaken = fleet.ZeroAmount()
		}
		out.Vehicles = append(out.Vehicles, VehicleShare{
			Vehicle:       v,
			VehicleProfit: profit,
			PartnerCount:  len(v.PartnerIDs),
			Share:         vshare,
			Taken:         vtaken,
			Balance:       sub(vshare, vtaken),
		})
		out.TotalShare = add(out.TotalShare, vshare)
		out.TotalTaken = add(out.TotalTaken, vtaken)
	}
	out.RemainingBalance = sub(out.TotalShare, out.TotalTaken)
	return out, nil
}

func (s *service) YearBreakdown(ctx context.Context, partnerID uuid.UUID, year int) ([]VehicleYearShare, error) {
	if partnerID == uuid.Nil {
		return nil, errs.ErrInvalid
	}
	if _, err := s.repo.GetPartner(ctx, partnerID); err != nil {
		return nil, err
	}
	vehicles, err := s.repo.VehiclesByPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	out := make([]VehicleYearShare, 0, len(vehicles))
	for _, v := range vehicles {
		rentals, err := s.repo.RentalsByVehicle(ctx, v.ID)
		if err != nil {
			return nil, err
		}
		expenses, err := s.repo.ExpensesByVehicle(ctx, v.ID)
		if err != nil {
			return nil, err
		}
		yearRentals := rentals[:0:0]
		for _, r := range rentals {
			if r.DateOut.Year() == year {
				yearRentals = append(yearRentals, r)
			}
		}
		yearExpenses := expenses[:0:0]
		for _, e := range expenses {
			if e.Date.Year() == year {
				yearExpenses = append(yearExpenses, e)
			}
		}
		series := report.Series(yearRentals, yearExpenses, report.Sparse, time.Now())
		months := make([]MonthShare, 0, len(series))
		for _, fig := range series {
			months = append(months, MonthShare{
				Month:        fig.Month,
				IncomeShare:  splitEqually(fig.Income, len(v.PartnerIDs)),
				ExpenseShare: splitEqually(fig.Expense, len(v.PartnerIDs)),
			})
		}
		out = append(out, VehicleYearShare{
			Vehicle:      v,
			PartnerCount: len(v.PartnerIDs),
			Months:       months,
		})
	}
	return out, nil
}

func (s *service) RecordTaken(ctx context.Context, partnerID, vehicleID uuid.UUID, amount money.Amount, date time.Time) (fleet.TakenAmount, error) {
	if partnerID == uuid.Nil || vehicleID == uuid.Nil {
		return fleet.TakenAmount{}, errs.ErrInvalid
	}
	if !amount.IsPos() {
		return fleet.TakenAmount{}, errs.ErrInvalid
	}
	if _, err := s.repo.GetPartner(ctx, partnerID); err != nil {
		return fleet.TakenAmount{}, err
	}
	vehicle, err := s.repo.GetVehicle(ctx, vehicleID)
	if err != nil {
		return fleet.TakenAmount{}, err
	}
	if !vehicle.HasPartner(partnerID) {
		return fleet.TakenAmount{}, errs.ErrInvalid
	}
	if date.IsZero() {
		date = time.Now()
	}
	t := fleet.TakenAmount{
		ID:        uuid.New(),
		PartnerID: partnerID,
		VehicleID: vehicleID,
		Amount:    amount,
		Date:      date,
		CreatedAt: time.Now(),
	}
	return s.writer.CreateTakenAmount(ctx, t)
}

// lifetimeProfit is all-time income minus all-time expense, unfiltered.
func lifetimeProfit(rentals []fleet.Rental, expenses []fleet.Expense) money.Amount {
	profit := fleet.ZeroAmount()
	for _, r := range rentals {
		profit = add(profit, r.TotalAmountReceived)
	}
	for _, e := range expenses {
		profit = sub(profit, e.Amount)
	}
	return profit
}

// splitEqually divides an amount by the partner count. Zero partners means
// zero share, not a division error. Non-divisible amounts round to the
// currency scale; the remainder (at most one minor unit per partner) is not
// redistributed.
func splitEqually(amount money.Amount, partnerCount int) money.Amount {
	if partnerCount <= 0 {
		return fleet.ZeroAmount()
	}
	n, err := decimal.New(int64(partnerCount), 0)
	if err != nil {
		return fleet.ZeroAmount()
	}
	v, err := amount.Quo(n)
	if err != nil {
		return fleet.ZeroAmount()
	}
	return v
}

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
