package fleet

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/govalues/money"
)

// Currency is the single bookkeeping currency of the whole book.
// Multi-currency is out of scope; every amount in the system carries it.
const Currency = "INR"

// ZeroAmount returns a zero amount in the bookkeeping currency.
func ZeroAmount() money.Amount {
	return money.MustNewAmount(Currency, 0, 0)
}

// Vehicle is a rental asset. Partners listed on it split the vehicle's
// lifetime profit equally.
type Vehicle struct {
	ID                 uuid.UUID
	Name               string
	RegistrationNumber string
	Color              string
	// ImagePath references an externally stored photo; empty when none.
	ImagePath   string
	PricePerDay money.Amount
	// PartnerIDs is the unordered set of partners holding a stake.
	PartnerIDs []uuid.UUID
	CreatedAt  time.Time
}

// HasPartner reports whether the given partner holds a stake in the vehicle.
func (v Vehicle) HasPartner(partnerID uuid.UUID) bool {
	for _, id := range v.PartnerIDs {
		if id == partnerID {
			return true
		}
	}
	return false
}

// Partner is a user with a bookkeeping stake in one or more vehicles.
type Partner struct {
	ID     uuid.UUID
	Name   string
	Email  string
	Active bool
	// Permission flags. They gate the corresponding HTTP operations only;
	// the services themselves stay permission-agnostic.
	CanManageUsers    bool
	CanManageVehicles bool
	CanImportData     bool
	CreatedAt         time.Time
}

// Rental is one booking of a vehicle. PartnerID optionally attributes the
// booking to the partner who handled it.
type Rental struct {
	ID        uuid.UUID
	VehicleID uuid.UUID
	PartnerID uuid.UUID // uuid.Nil when unattributed

	DateOut time.Time
	TimeOut *time.Time
	DateIn  *time.Time
	TimeIn  *time.Time

	CustomerName string
	ContactNo    string
	CustomerID   string
	CareOf       string
	Destination  string

	DaysOfRent          decimal.Decimal
	RentPerDay          money.Amount
	AdvanceAmount       money.Amount
	TotalAmountReceived money.Amount
	DiscountedAmount    money.Amount

	// Odometer readings; nil means not recorded (distinct from zero).
	StartingKM *int64
	EndingKM   *int64

	CreatedAt time.Time
}

// TotalRent is days_of_rent x rent_per_day.
func (r Rental) TotalRent() money.Amount {
	v, err := r.RentPerDay.Mul(r.DaysOfRent)
	if err != nil {
		return ZeroAmount()
	}
	return v
}

// Balance is the outstanding amount: total rent minus what was received.
func (r Rental) Balance() money.Amount {
	v, err := r.TotalRent().Sub(r.TotalAmountReceived)
	if err != nil {
		return ZeroAmount()
	}
	return v
}

// Expense is a cost booked against a vehicle.
type Expense struct {
	ID        uuid.UUID
	VehicleID uuid.UUID
	PartnerID uuid.UUID // uuid.Nil when unattributed

	Date        time.Time
	Particulars string
	Place       string
	CareOf      string
	Amount      money.Amount

	CreatedAt time.Time
}

// TakenAmount records a partner withdrawing money from a vehicle's proceeds.
// Entries are append-only: never updated, only created.
type TakenAmount struct {
	ID        uuid.UUID
	PartnerID uuid.UUID
	VehicleID uuid.UUID
	Amount    money.Amount
	Date      time.Time
	CreatedAt time.Time
}

// EMI is the monthly loan obligation configured for a vehicle (one-to-one).
type EMI struct {
	ID        uuid.UUID
	VehicleID uuid.UUID
	Amount    money.Amount
	// DueDay is the day of month the installment falls due (1-31). Days past
	// the end of a shorter month clamp to that month's last day.
	DueDay int
	// WarningDays is the lead time before the due date during which an
	// unpaid installment is flagged.
	WarningDays int
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EMIPayment discharges one vehicle's installment for one calendar month.
type EMIPayment struct {
	ID        uuid.UUID
	VehicleID uuid.UUID
	Amount    money.Amount
	Date      time.Time
	// MonthPaidFor identifies the calendar month the payment discharges,
	// normalized to the first of the month.
	MonthPaidFor Month
	Remarks      string
	CreatedAt    time.Time
}
