package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/adilkt/fleetbook/internal/errs"
	"github.com/adilkt/fleetbook/internal/fleet"
)

func newVehicle(reg string, partnerIDs ...uuid.UUID) fleet.Vehicle {
	return fleet.Vehicle{
		ID:                 uuid.New(),
		Name:               "Vehicle " + reg,
		RegistrationNumber: reg,
		PricePerDay:        fleet.ZeroAmount(),
		PartnerIDs:         partnerIDs,
	}
}

func TestCreateVehicleRejectsDuplicateRegistration(t *testing.T) {
	store := New()
	ctx := context.Background()
	if _, err := store.CreateVehicle(ctx, newVehicle("KL-01")); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := store.CreateVehicle(ctx, newVehicle("KL-01"))
	if !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestDeleteVehicleCascades(t *testing.T) {
	store := New()
	ctx := context.Background()
	v := newVehicle("KL-01")
	store.SeedVehicle(v)
	r := fleet.Rental{
		ID: uuid.New(), VehicleID: v.ID, DateOut: time.Now(), CustomerName: "C",
		RentPerDay: fleet.ZeroAmount(), AdvanceAmount: fleet.ZeroAmount(),
		TotalAmountReceived: fleet.ZeroAmount(), DiscountedAmount: fleet.ZeroAmount(),
	}
	store.SeedRental(r)
	e := fleet.Expense{ID: uuid.New(), VehicleID: v.ID, Date: time.Now(), Particulars: "Fuel", Amount: fleet.ZeroAmount()}
	store.SeedExpense(e)

	if err := store.DeleteVehicle(ctx, v.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetRental(ctx, r.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("rental should cascade, got %v", err)
	}
	if _, err := store.GetExpense(ctx, e.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expense should cascade, got %v", err)
	}
}

func TestDeletePartnerDetachesRecords(t *testing.T) {
	store := New()
	ctx := context.Background()
	p := fleet.Partner{ID: uuid.New(), Name: "P", Active: true}
	store.SeedPartner(p)
	v := newVehicle("KL-01", p.ID)
	store.SeedVehicle(v)
	r := fleet.Rental{
		ID: uuid.New(), VehicleID: v.ID, PartnerID: p.ID, DateOut: time.Now(), CustomerName: "C",
		RentPerDay: fleet.ZeroAmount(), AdvanceAmount: fleet.ZeroAmount(),
		TotalAmountReceived: fleet.ZeroAmount(), DiscountedAmount: fleet.ZeroAmount(),
	}
	store.SeedRental(r)

	if err := store.DeletePartner(ctx, p.ID); err != nil {
		t.Fatalf("delete partner: %v", err)
	}
	got, err := store.GetVehicle(ctx, v.ID)
	if err != nil {
		t.Fatalf("vehicle must survive: %v", err)
	}
	if got.HasPartner(p.ID) {
		t.Fatalf("partner link should be removed")
	}
	rental, err := store.GetRental(ctx, r.ID)
	if err != nil {
		t.Fatalf("rental must survive: %v", err)
	}
	if rental.PartnerID != uuid.Nil {
		t.Fatalf("rental attribution should be cleared, got %v", rental.PartnerID)
	}
}

func TestRentalsByVehicleSortedByDate(t *testing.T) {
	store := New()
	ctx := context.Background()
	v := newVehicle("KL-01")
	store.SeedVehicle(v)
	later := fleet.Rental{
		ID: uuid.New(), VehicleID: v.ID, DateOut: time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC), CustomerName: "Later",
		RentPerDay: fleet.ZeroAmount(), AdvanceAmount: fleet.ZeroAmount(),
		TotalAmountReceived: fleet.ZeroAmount(), DiscountedAmount: fleet.ZeroAmount(),
	}
	earlier := later
	earlier.ID = uuid.New()
	earlier.DateOut = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	earlier.CustomerName = "Earlier"
	store.SeedRental(later)
	store.SeedRental(earlier)

	rentals, err := store.RentalsByVehicle(ctx, v.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rentals) != 2 || rentals[0].CustomerName != "Earlier" {
		t.Fatalf("expected ascending date order, got %v", rentals)
	}
}

func TestCreateEMIPaymentUniquePerMonth(t *testing.T) {
	store := New()
	ctx := context.Background()
	v := newVehicle("KL-01")
	store.SeedVehicle(v)
	month := fleet.Month{Year: 2024, Mon: time.June}
	p := fleet.EMIPayment{ID: uuid.New(), VehicleID: v.ID, Amount: fleet.ZeroAmount(), Date: time.Now(), MonthPaidFor: month}
	if _, err := store.CreateEMIPayment(ctx, p); err != nil {
		t.Fatalf("first payment: %v", err)
	}
	dup := p
	dup.ID = uuid.New()
	if _, err := store.CreateEMIPayment(ctx, dup); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, found, err := store.EMIPaymentForMonth(ctx, v.ID, month); err != nil || !found {
		t.Fatalf("payment lookup: found=%v err=%v", found, err)
	}
}

func TestUpsertEMIKeepsIdentity(t *testing.T) {
	store := New()
	ctx := context.Background()
	v := newVehicle("KL-01")
	store.SeedVehicle(v)
	first, err := store.UpsertEMI(ctx, fleet.EMI{ID: uuid.New(), VehicleID: v.ID, Amount: fleet.ZeroAmount(), DueDay: 10})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	second, err := store.UpsertEMI(ctx, fleet.EMI{ID: uuid.New(), VehicleID: v.ID, Amount: fleet.ZeroAmount(), DueDay: 15})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert must keep config id")
	}
	if second.DueDay != 15 {
		t.Fatalf("due day = %d", second.DueDay)
	}
}
