package memory

// Package memory provides a simple in-memory implementation used for
// development and tests. It keeps code paths easy to follow while allowing us
// to plug in a real DB later.
import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/adilkt/fleetbook/internal/errs"
	"github.com/adilkt/fleetbook/internal/fleet"
)

// Store is an in-memory implementation of the repository+writer interfaces
// used by the services and the API. It is guarded by an RWMutex for
// concurrent reads/writes.
type Store struct {
	mu          sync.RWMutex
	partners    map[uuid.UUID]fleet.Partner
	vehicles    map[uuid.UUID]fleet.Vehicle
	rentals     map[uuid.UUID]fleet.Rental
	expenses    map[uuid.UUID]fleet.Expense
	taken       map[uuid.UUID]fleet.TakenAmount
	emis        map[uuid.UUID]fleet.EMI        // keyed by vehicle ID (one-to-one)
	emiPayments map[uuid.UUID]fleet.EMIPayment // keyed by payment ID
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		partners:    make(map[uuid.UUID]fleet.Partner),
		vehicles:    make(map[uuid.UUID]fleet.Vehicle),
		rentals:     make(map[uuid.UUID]fleet.Rental),
		expenses:    make(map[uuid.UUID]fleet.Expense),
		taken:       make(map[uuid.UUID]fleet.TakenAmount),
		emis:        make(map[uuid.UUID]fleet.EMI),
		emiPayments: make(map[uuid.UUID]fleet.EMIPayment),
	}
}

// Reset drops all data. Test helper.
func (s *Store) Reset() {
	s.mu.Lock()
	s.partners = map[uuid.UUID]fleet.Partner{}
	s.vehicles = map[uuid.UUID]fleet.Vehicle{}
	s.rentals = map[uuid.UUID]fleet.Rental{}
	s.expenses = map[uuid.UUID]fleet.Expense{}
	s.taken = map[uuid.UUID]fleet.TakenAmount{}
	s.emis = map[uuid.UUID]fleet.EMI{}
	s.emiPayments = map[uuid.UUID]fleet.EMIPayment{}
	s.mu.Unlock()
}

// Seed helpers for local dev/tests.
func (s *Store) SeedPartner(p fleet.Partner) { s.mu.Lock(); s.partners[p.ID] = p; s.mu.Unlock() }
func (s *Store) SeedVehicle(v fleet.Vehicle) { s.mu.Lock(); s.vehicles[v.ID] = v; s.mu.Unlock() }
func (s *Store) SeedRental(r fleet.Rental)   { s.mu.Lock(); s.rentals[r.ID] = r; s.mu.Unlock() }
func (s *Store) SeedExpense(e fleet.Expense) { s.mu.Lock(); s.expenses[e.ID] = e; s.mu.Unlock() }

// --- Partners ---

func (s *Store) CreatePartner(_ context.Context, p fleet.Partner) (fleet.Partner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partners[p.ID] = p
	return p, nil
}

func (s *Store) UpdatePartner(_ context.Context, p fleet.Partner) (fleet.Partner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.partners[p.ID]; !ok {
		return fleet.Partner{}, errs.ErrNotFound
	}
	s.partners[p.ID] = p
	return p, nil
}

// DeletePartner removes the partner, unlinks them from vehicles, clears
// attribution on their rentals/expenses and drops their taken amounts.
func (s *Store) DeletePartner(_ context.Context, partnerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.partners[partnerID]; !ok {
		return errs.ErrNotFound
	}
	delete(s.partners, partnerID)
	for id, v := range s.vehicles {
		kept := make([]uuid.UUID, 0, len(v.PartnerIDs))
		for _, pid := range v.PartnerIDs {
			if pid != partnerID {
				kept = append(kept, pid)
			}
		}
		v.PartnerIDs = kept
		s.vehicles[id] = v
	}
	for id, r := range s.rentals {
		if r.PartnerID == partnerID {
			r.PartnerID = uuid.Nil
			s.rentals[id] = r
		}
	}
	for id, e := range s.expenses {
		if e.PartnerID == partnerID {
			e.PartnerID = uuid.Nil
			s.expenses[id] = e
		}
	}
	for id, t := range s.taken {
		if t.PartnerID == partnerID {
			delete(s.taken, id)
		}
	}
	return nil
}

func (s *Store) GetPartner(_ context.Context, partnerID uuid.UUID) (fleet.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.partners[partnerID]
	if !ok {
		return fleet.Partner{}, errs.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListPartners(_ context.Context) ([]fleet.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fleet.Partner, 0, len(s.partners))
	for _, p := range s.partners {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// PartnersByIDs returns the partners for the given ids, ignoring unknown ones.
func (s *Store) PartnersByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]fleet.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]fleet.Partner, len(ids))
	for _, id := range ids {
		if p, ok := s.partners[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// --- Vehicles ---

func (s *Store) CreateVehicle(_ context.Context, v fleet.Vehicle) (fleet.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.vehicles {
		if existing.RegistrationNumber == v.RegistrationNumber {
			return fleet.Vehicle{}, errs.ErrConflict
		}
	}
	s.vehicles[v.ID] = v
	return v, nil
}

func (s *Store) UpdateVehicle(_ context.Context, v fleet.Vehicle) (fleet.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vehicles[v.ID]; !ok {
		return fleet.Vehicle{}, errs.ErrNotFound
	}
	for id, existing := range s.vehicles {
		if id != v.ID && existing.RegistrationNumber == v.RegistrationNumber {
			return fleet.Vehicle{}, errs.ErrConflict
		}
	}
	s.vehicles[v.ID] = v
	return v, nil
}

// DeleteVehicle cascades to the vehicle's rentals, expenses, EMI config,
// EMI payments and taken amounts.
func (s *Store) DeleteVehicle(_ context.Context, vehicleID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vehicles[vehicleID]; !ok {
		return errs.ErrNotFound
	}
	delete(s.vehicles, vehicleID)
	delete(s.emis, vehicleID)
	for id, r := range s.rentals {
		if r.VehicleID == vehicleID {
			delete(s.rentals, id)
		}
	}
	for id, e := range s.expenses {
		if e.VehicleID == vehicleID {
			delete(s.expenses, id)
		}
	}
	for id, p := range s.emiPayments {
		if p.VehicleID == vehicleID {
			delete(s.emiPayments, id)
		}
	}
	for id, t := range s.taken {
		if t.VehicleID == vehicleID {
			delete(s.taken, id)
		}
	}
	return nil
}

func (s *Store) GetVehicle(_ context.Context, vehicleID uuid.UUID) (fleet.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vehicles[vehicleID]
	if !ok {
		return fleet.Vehicle{}, errs.ErrNotFound
	}
	return v, nil
}

func (s *Store) ListVehicles(_ context.Context) ([]fleet.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fleet.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// VehiclesByPartner returns the vehicles the partner is linked to.
func (s *Store) VehiclesByPartner(_ context.Context, partnerID uuid.UUID) ([]fleet.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fleet.Vehicle, 0)
	for _, v := range s.vehicles {
		if v.HasPartner(partnerID) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- Rentals ---

func (s *Store) CreateRental(_ context.Context, r fleet.Rental) (fleet.Rental, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rentals[r.ID] = r
	return r, nil
}

func (s *Store) UpdateRental(_ context.Context, r fleet.Rental) (fleet.Rental, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rentals[r.ID]; !ok {
		return fleet.Rental{}, errs.ErrNotFound
	}
	s.rentals[r.ID] = r
	return r, nil
}

func (s *Store) DeleteRental(_ context.Context, rentalID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rentals[rentalID]; !ok {
		return errs.ErrNotFound
	}
	delete(s.rentals, rentalID)
	return nil
}

func (s *Store) GetRental(_ context.Context, rentalID uuid.UUID) (fleet.Rental, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rentals[rentalID]
	if !ok {
		return fleet.Rental{}, errs.ErrNotFound
	}
	return r, nil
}

func (s *Store) ListRentals(_ context.Context) ([]fleet.Rental, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fleet.Rental, 0, len(s.rentals))
	for _, r := range s.rentals {
		out = append(out, r)
	}
	sortRentals(out)
	return out, nil
}

func (s *Store) RentalsByVehicle(_ context.Context, vehicleID uuid.UUID) ([]fleet.Rental, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fleet.Rental, 0)
	for _, r := range s.rentals {
		if r.VehicleID == vehicleID {
			out = append(out, r)
		}
	}
	sortRentals(out)
	return out, nil
}

func (s *Store) RentalsByPartner(_ context.Context, partnerID uuid.UUID) ([]fleet.Rental, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fleet.Rental, 0)
	for _, r := range s.rentals {
		if r.PartnerID == partnerID {
			out = append(out, r)
		}
	}
	sortRentals(out)
	return out, nil
}

// --- Expenses ---

func (s *Store) CreateExpense(_ context.Context, e fleet.Expense) (fleet.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses[e.ID] = e
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, e fleet.Expense) (fleet.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[e.ID]; !ok {
		return fleet.Expense{}, errs.ErrNotFound
	}
	s.expenses[e.ID] = e
	return e, nil
}

func (s *Store) DeleteExpense(_ context.Context, expenseID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[expenseID]; !ok {
		return errs.ErrNotFound
	}
	delete(s.expenses, expenseID)
	return nil
}

func (s *Store) GetExpense(_ context.Context, expenseID uuid.UUID) (fleet.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.expenses[expenseID]
	if !ok {
		return fleet.Expense{}, errs.ErrNotFound
	}
	return e, nil
}

func (s *Store) ListExpenses(_ context.Context) ([]fleet.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fleet.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		out = append(out, e)
	}
	sortExpenses(out)
	return out, nil
}

func (s *Store) ExpensesByVehicle(_ context.Context, vehicleID uuid.UUID) ([]fleet.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fleet.Expense, 0)
	for _, e := range s.expenses {
		if e.VehicleID == vehicleID {
			out = append(out, e)
		}
	}
	sortExpenses(out)
	return out, nil
}

func (s *Store) ExpensesByPartner(_ context.Context, partnerID uuid.UUID) ([]fleet.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fleet.Expense, 0)
	for _, e := range s.expenses {
		if e.PartnerID == partnerID {
			out = append(out, e)
		}
	}
	sortExpenses(out)
	return out, nil
}

// --- Taken amounts ---

func (s *Store) CreateTakenAmount(_ context.Context, t fleet.TakenAmount) (fleet.TakenAmount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taken[t.ID] = t
	return t, nil
}

func (s *Store) TakenAmountsByPartner(_ context.Context, partnerID uuid.UUID) ([]fleet.TakenAmount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fleet.TakenAmount, 0)
	for _, t := range s.taken {
		if t.PartnerID == partnerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// --- EMI ---

// UpsertEMI creates or replaces the vehicle's EMI config.
func (s *Store) UpsertEMI(_ context.Context, e fleet.EMI) (fleet.EMI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.emis[e.VehicleID]; ok {
		e.ID = existing.ID
		e.CreatedAt = existing.CreatedAt
	}
	s.emis[e.VehicleID] = e
	return e, nil
}

func (s *Store) EMIByVehicle(_ context.Context, vehicleID uuid.UUID) (fleet.EMI, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.emis[vehicleID]
	if !ok {
		return fleet.EMI{}, errs.ErrNotFound
	}
	return e, nil
}

// CreateEMIPayment rejects a second payment for the same vehicle and month,
// mirroring the uniqueness constraint the SQL store enforces.
func (s *Store) CreateEMIPayment(_ context.Context, p fleet.EMIPayment) (fleet.EMIPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.emiPayments {
		if existing.VehicleID == p.VehicleID && existing.MonthPaidFor == p.MonthPaidFor {
			return fleet.EMIPayment{}, errs.ErrConflict
		}
	}
	s.emiPayments[p.ID] = p
	return p, nil
}

func (s *Store) EMIPaymentsByVehicle(_ context.Context, vehicleID uuid.UUID) ([]fleet.EMIPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fleet.EMIPayment, 0)
	for _, p := range s.emiPayments {
		if p.VehicleID == vehicleID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MonthPaidFor.Before(out[j].MonthPaidFor) })
	return out, nil
}

// EMIPaymentForMonth reports whether a payment discharging the given month
// exists for the vehicle.
func (s *Store) EMIPaymentForMonth(_ context.Context, vehicleID uuid.UUID, month fleet.Month) (fleet.EMIPayment, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.emiPayments {
		if p.VehicleID == vehicleID && p.MonthPaidFor == month {
			return p, true, nil
		}
	}
	return fleet.EMIPayment{}, false, nil
}

func sortRentals(rs []fleet.Rental) {
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].DateOut.Equal(rs[j].DateOut) {
			return rs[i].DateOut.Before(rs[j].DateOut)
		}
		return rs[i].ID.String() < rs[j].ID.String()
	})
}

func sortExpenses(es []fleet.Expense) {
	sort.Slice(es, func(i, j int) bool {
		if !es[i].Date.Equal(es[j].Date) {
			return es[i].Date.Before(es[j].Date)
		}
		return es[i].ID.String() < es[j].ID.String()
	})
}
