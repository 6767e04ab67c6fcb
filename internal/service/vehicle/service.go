// Package vehicle implements the record-keeping rules for vehicles, rentals,
// expenses and partners: required fields, the unique registration number,
// cascade deletes, and partner notification fan-out on new records.
package vehicle

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/adilkt/fleetbook/internal/errs"
	"github.com/adilkt/fleetbook/internal/fleet"
	"github.com/adilkt/fleetbook/internal/notify"
)

// Repo defines the read operations the service needs.
type Repo interface {
	GetVehicle(ctx context.Context, vehicleID uuid.UUID) (fleet.Vehicle, error)
	ListVehicles(ctx context.Context) ([]fleet.Vehicle, error)
	GetRental(ctx context.Context, rentalID uuid.UUID) (fleet.Rental, error)
	GetExpense(ctx context.Context, expenseID uuid.UUID) (fleet.Expense, error)
	GetPartner(ctx context.Context, partnerID uuid.UUID) (fleet.Partner, error)
	ListPartners(ctx context.Context) ([]fleet.Partner, error)
	PartnersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]fleet.Partner, error)
}

// Writer defines the write operations the service needs.
type Writer interface {
	CreateVehicle(ctx context.Context, v fleet.Vehicle) (fleet.Vehicle, error)
	UpdateVehicle(ctx context.Context, v fleet.Vehicle) (fleet.Vehicle, error)
	DeleteVehicle(ctx context.Context, vehicleID uuid.UUID) error
	CreateRental(ctx context.Context, r fleet.Rental) (fleet.Rental, error)
	UpdateRental(ctx context.Context, r fleet.Rental) (fleet.Rental, error)
	DeleteRental(ctx context.Context, rentalID uuid.UUID) error
	CreateExpense(ctx context.Context, e fleet.Expense) (fleet.Expense, error)
	UpdateExpense(ctx context.Context, e fleet.Expense) (fleet.Expense, error)
	DeleteExpense(ctx context.Context, expenseID uuid.UUID) error
	CreatePartner(ctx context.Context, p fleet.Partner) (fleet.Partner, error)
	UpdatePartner(ctx context.Context, p fleet.Partner) (fleet.Partner, error)
	DeletePartner(ctx context.Context, partnerID uuid.UUID) error
}

// Service exposes the CRUD operations for the record store entities.
type Service interface {
	CreateVehicle(ctx context.Context, v fleet.Vehicle) (fleet.Vehicle, error)
	UpdateVehicle(ctx context.Context, v fleet.Vehicle) (fleet.Vehicle, error)
	DeleteVehicle(ctx context.Context, vehicleID uuid.UUID) error
	ListVehicles(ctx context.Context) ([]fleet.Vehicle, error)
	GetVehicle(ctx context.Context, vehicleID uuid.UUID) (fleet.Vehicle, error)

	CreateRental(ctx context.Context, r fleet.Rental) (fleet.Rental, error)
	UpdateRental(ctx context.Context, r fleet.Rental) (fleet.Rental, error)
	DeleteRental(ctx context.Context, rentalID uuid.UUID) error

	CreateExpense(ctx context.Context, e fleet.Expense) (fleet.Expense, error)
	UpdateExpense(ctx context.Context, e fleet.Expense) (fleet.Expense, error)
	DeleteExpense(ctx context.Context, expenseID uuid.UUID) error

	CreatePartner(ctx context.Context, p fleet.Partner) (fleet.Partner, error)
	UpdatePartner(ctx context.Context, p fleet.Partner) (fleet.Partner, error)
	DeletePartner(ctx context.Context, partnerID uuid.UUID) error
	ListPartners(ctx context.Context) ([]fleet.Partner, error)
	GetPartner(ctx context.Context, partnerID uuid.UUID) (fleet.Partner, error)
}

type service struct {
	repo     Repo
	writer   Writer
	notifier notify.Notifier
}

// New constructs the vehicle service.
func New(repo Repo, writer Writer, notifier notify.Notifier) Service {
	return &service{repo: repo, writer: writer, notifier: notifier}
}

// --- Vehicles ---

func validateVehicle(v fleet.Vehicle) error {
	if v.Name == "" {
		return errors.New("name is required")
	}
	if v.RegistrationNumber == "" {
		return errors.New("registration number is required")
	}
	if v.PricePerDay.IsNeg() {
		return errors.New("price per day must not be negative")
	}
	return nil
}

func (s *service) CreateVehicle(ctx context.Context, v fleet.Vehicle) (fleet.Vehicle, error) {
	if err := validateVehicle(v); err != nil {
		return fleet.Vehicle{}, err
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	return s.writer.CreateVehicle(ctx, v)
}

func (s *service) UpdateVehicle(ctx context.Context, v fleet.Vehicle) (fleet.Vehicle, error) {
	if v.ID == uuid.Nil {
		return fleet.Vehicle{}, errs.ErrInvalid
	}
	if err := validateVehicle(v); err != nil {
		return fleet.Vehicle{}, err
	}
	current, err := s.repo.GetVehicle(ctx, v.ID)
	if err != nil {
		return fleet.Vehicle{}, err
	}
	v.CreatedAt = current.CreatedAt
	return s.writer.UpdateVehicle(ctx, v)
}

func (s *service) DeleteVehicle(ctx context.Context, vehicleID uuid.UUID) error {
	if vehicleID == uuid.Nil {
		return errs.ErrInvalid
	}
	return s.writer.DeleteVehicle(ctx, vehicleID)
}

func (s *service) ListVehicles(ctx context.Context) ([]fleet.Vehicle, error) {
	return s.repo.ListVehicles(ctx)
}

func (s *service) GetVehicle(ctx context.Context, vehicleID uuid.UUID) (fleet.Vehicle, error) {
	if vehicleID == uuid.Nil {
		return fleet.Vehicle{}, errs.ErrInvalid
	}
	return s.repo.GetVehicle(ctx, vehicleID)
}

// --- Rentals ---

func validateRental(r fleet.Rental) error {
	if r.VehicleID == uuid.Nil {
		return errors.New("vehicle is required")
	}
	if r.DateOut.IsZero() {
		return errors.New("date out is required")
	}
	if r.CustomerName == "" {
		return errors.New("customer name is required")
	}
	if r.DaysOfRent.Sign() < 0 {
		return errors.New("days of rent must not be negative")
	}
	if r.RentPerDay.IsNeg() || r.AdvanceAmount.IsNeg() || r.TotalAmountReceived.IsNeg() || r.DiscountedAmount.IsNeg() {
		return errors.New("amounts must not be negative")
	}
	return nil
}

func (s *service) CreateRental(ctx context.Context, r fleet.Rental) (fleet.Rental, error) {
	if err := validateRental(r); err != nil {
		return fleet.Rental{}, err
	}
	vehicle, err := s.repo.GetVehicle(ctx, r.VehicleID)
	if err != nil {
		return fleet.Rental{}, err
	}
	if r.PartnerID != uuid.Nil {
		if _, err := s.repo.GetPartner(ctx, r.PartnerID); err != nil {
			return fleet.Rental{}, err
		}
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	created, err := s.writer.CreateRental(ctx, r)
	if err != nil {
		return fleet.Rental{}, err
	}
	s.notifyPartners(ctx, vehicle, notify.Event{
		Action: notify.ActionRental,
		Details: map[string]string{
			"Customer":        created.CustomerName,
			"Date Out":        created.DateOut.Format("02 Jan 2006"),
			"Destination":     created.Destination,
			"Days":            created.DaysOfRent.String(),
			"Amount Received": created.TotalAmountReceived.String(),
		},
	})
	return created, nil
}

func (s *service) UpdateRental(ctx context.Context, r fleet.Rental) (fleet.Rental, error) {
	if r.ID == uuid.Nil {
		return fleet.Rental{}, errs.ErrInvalid
	}
	if err := validateRental(r); err != nil {
		return fleet.Rental{}, err
	}
	current, err := s.repo.GetRental(ctx, r.ID)
	if err != nil {
		return fleet.Rental{}, err
	}
	r.CreatedAt = current.CreatedAt
	return s.writer.UpdateRental(ctx, r)
}

func (s *service) DeleteRental(ctx context.Context, rentalID uuid.UUID) error {
	if rentalID == uuid.Nil {
		return errs.ErrInvalid
	}
	return s.writer.DeleteRental(ctx, rentalID)
}

// --- Expenses ---

func validateExpense(e fleet.Expense) error {
	if e.VehicleID == uuid.Nil {
		return errors.New("vehicle is required")
	}
	if e.Date.IsZero() {
		return errors.New("date is required")
	}
	if e.Particulars == "" {
		return errors.New("particulars is required")
	}
	if e.Amount.IsNeg() {
		return errors.New("amount must not be negative")
	}
	return nil
}

func (s *service) CreateExpense(ctx context.Context, e fleet.Expense) (fleet.Expense, error) {
	if err := validateExpense(e); err != nil {
		return fleet.Expense{}, err
	}
	vehicle, err := s.repo.GetVehicle(ctx, e.VehicleID)
	if err != nil {
		return fleet.Expense{}, err
	}
	if e.PartnerID != uuid.Nil {
		if _, err := s.repo.GetPartner(ctx, e.PartnerID); err != nil {
			return fleet.Expense{}, err
		}
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	created, err := s.writer.CreateExpense(ctx, e)
	if err != nil {
		return fleet.Expense{}, err
	}
	s.notifyPartners(ctx, vehicle, notify.Event{
		Action: notify.ActionExpense,
		Details: map[string]string{
			"Date":        created.Date.Format("02 Jan 2006"),
			"Particulars": created.Particulars,
			"Place":       created.Place,
			"Amount":      created.Amount.String(),
		},
	})
	return created, nil
}

func (s *service) UpdateExpense(ctx context.Context, e fleet.Expense) (fleet.Expense, error) {
	if e.ID == uuid.Nil {
		return fleet.Expense{}, errs.ErrInvalid
	}
	if err := validateExpense(e); err != nil {
		return fleet.Expense{}, err
	}
	current, err := s.repo.GetExpense(ctx, e.ID)
	if err != nil {
		return fleet.Expense{}, err
	}
	e.CreatedAt = current.CreatedAt
	return s.writer.UpdateExpense(ctx, e)
}

func (s *service) DeleteExpense(ctx context.Context, expenseID uuid.UUID) error {
	if expenseID == uuid.Nil {
		return errs.ErrInvalid
	}
	return s.writer.DeleteExpense(ctx, expenseID)
}

// --- Partners ---

// CreatePartner builds the bookkeeping profile as an explicit step of the
// creation operation. New partners start active with no management
// permissions.
func (s *service) CreatePartner(ctx context.Context, p fleet.Partner) (fleet.Partner, error) {
	if p.Name == "" {
		return fleet.Partner{}, errors.New("name is required")
	}
	if p.Email == "" {
		return fleet.Partner{}, errors.New("email is required")
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Active = true
	p.CanManageUsers = false
	p.CanManageVehicles = false
	p.CanImportData = false
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	return s.writer.CreatePartner(ctx, p)
}

func (s *service) UpdatePartner(ctx context.Context, p fleet.Partner) (fleet.Partner, error) {
	if p.ID == uuid.Nil {
		return fleet.Partner{}, errs.ErrInvalid
	}
	if p.Name == "" {
		return fleet.Partner{}, errors.New("name is required")
	}
	if p.Email == "" {
		return fleet.Partner{}, errors.New("email is required")
	}
	current, err := s.repo.GetPartner(ctx, p.ID)
	if err != nil {
		return fleet.Partner{}, err
	}
	p.CreatedAt = current.CreatedAt
	return s.writer.UpdatePartner(ctx, p)
}

func (s *service) DeletePartner(ctx context.Context, partnerID uuid.UUID) error {
	if partnerID == uuid.Nil {
		return errs.ErrInvalid
	}
	return s.writer.DeletePartner(ctx, partnerID)
}

func (s *service) ListPartners(ctx context.Context) ([]fleet.Partner, error) {
	return s.repo.ListPartners(ctx)
}

func (s *service) GetPartner(ctx context.Context, partnerID uuid.UUID) (fleet.Partner, error) {
	if partnerID == uuid.Nil {
		return fleet.Partner{}, errs.ErrInvalid
	}
	return s.repo.GetPartner(ctx, partnerID)
}

// notifyPartners resolves the vehicle's partners and hands the event to the
// notifier. Lookup failures are swallowed: notification is best effort.
func (s *service) notifyPartners(ctx context.Context, vehicle fleet.Vehicle, event notify.Event) {
	partners, err := s.repo.PartnersByIDs(ctx, vehicle.PartnerIDs)
	if err != nil {
		return
	}
	list := make([]fleet.Partner, 0, len(partners))
	for _, p := range partners {
		list = append(list, p)
	}
	s.notifier.NotifyPartners(ctx, vehicle, list, event)
}
