package httpapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/adilkt/fleetbook/internal/fleet"
	"github.com/adilkt/fleetbook/internal/service/emi"
	"github.com/adilkt/fleetbook/internal/service/report"
	"github.com/adilkt/fleetbook/internal/service/share"
)

// minor extracts the minor-unit integer for the wire. Amounts in the book are
// constructed from minor units, so the conversion cannot fail in practice.
func minor(a money.Amount) int64 {
	v, _ := a.MinorUnits()
	return v
}

func amountFromMinor(v int64) money.Amount {
	a, err := money.NewAmountFromMinorUnits(fleet.Currency, v)
	if err != nil {
		return fleet.ZeroAmount()
	}
	return a
}

// --- Vehicles ---

type vehicleRequest struct {
	Name               string      `json:"name"`
	RegistrationNumber string      `json:"registration_number"`
	Color              string      `json:"color"`
	ImagePath          string      `json:"image_path"`
	PricePerDayMinor   int64       `json:"price_per_day_minor"`
	PartnerIDs         []uuid.UUID `json:"partner_ids"`
}

func (in vehicleRequest) toDomain() fleet.Vehicle {
	return fleet.Vehicle{
		Name:               in.Name,
		RegistrationNumber: in.RegistrationNumber,
		Color:              in.Color,
		ImagePath:          in.ImagePath,
		PricePerDay:        amountFromMinor(in.PricePerDayMinor),
		PartnerIDs:         in.PartnerIDs,
	}
}

type vehicleResponse struct {
	ID                 uuid.UUID   `json:"id"`
	Name               string      `json:"name"`
	RegistrationNumber string      `json:"registration_number"`
	Color              string      `json:"color,omitempty"`
	ImagePath          string      `json:"image_path,omitempty"`
	PricePerDayMinor   int64       `json:"price_per_day_minor"`
	PricePerDay        string      `json:"price_per_day"`
	PartnerIDs         []uuid.UUID `json:"partner_ids"`
	CreatedAt          time.Time   `json:"created_at"`
}

func toVehicleResponse(v fleet.Vehicle) vehicleResponse {
	return vehicleResponse{
		ID:                 v.ID,
		Name:               v.Name,
		RegistrationNumber: v.RegistrationNumber,
		Color:              v.Color,
		ImagePath:          v.ImagePath,
		PricePerDayMinor:   minor(v.PricePerDay),
		PricePerDay:        v.PricePerDay.String(),
		PartnerIDs:         v.PartnerIDs,
		CreatedAt:          v.CreatedAt,
	}
}

// --- Rentals ---

type rentalRequest struct {
	PartnerID uuid.UUID `json:"partner_id,omitempty"`

	DateOut time.Time  `json:"date_out"`
	TimeOut *time.Time `json:"time_out,omitempty"`
	DateIn  *time.Time `json:"date_in,omitempty"`
	TimeIn  *time.Time `json:"time_in,omitempty"`

	CustomerName string `json:"customer_name"`
	ContactNo    string `json:"contact_no,omitempty"`
	CustomerID   string `json:"customer_id,omitempty"`
	CareOf       string `json:"care_of,omitempty"`
	Destination  string `json:"destination,omitempty"`

	// DaysOfRent is a decimal string; half-day rentals are real.
	DaysOfRent               string `json:"days_of_rent"`
	RentPerDayMinor          int64  `json:"rent_per_day_minor"`
	AdvanceAmountMinor       int64  `json:"advance_amount_minor"`
	TotalAmountReceivedMinor int64  `json:"total_amount_received_minor"`
	DiscountedAmountMinor    int64  `json:"discounted_amount_minor"`

	StartingKM *int64 `json:"starting_km,omitempty"`
	EndingKM   *int64 `json:"ending_km,omitempty"`
}

type rentalResponse struct {
	ID        uuid.UUID `json:"id"`
	VehicleID uuid.UUID `json:"vehicle_id"`
	PartnerID uuid.UUID `json:"partner_id,omitempty"`

	DateOut time.Time  `json:"date_out"`
	TimeOut *time.Time `json:"time_out,omitempty"`
	DateIn  *time.Time `json:"date_in,omitempty"`
	TimeIn  *time.Time `json:"time_in,omitempty"`

	CustomerName string `json:"customer_name"`
	ContactNo    string `json:"contact_no,omitempty"`
	CustomerID   string `json:"customer_id,omitempty"`
	CareOf       string `json:"care_of,omitempty"`
	Destination  string `json:"destination,omitempty"`

	DaysOfRent               string `json:"days_of_rent"`
	RentPerDayMinor          int64  `json:"rent_per_day_minor"`
	AdvanceAmountMinor       int64  `json:"advance_amount_minor"`
	TotalAmountReceivedMinor int64  `json:"total_amount_received_minor"`
	DiscountedAmountMinor    int64  `json:"discounted_amount_minor"`
	TotalRentMinor           int64  `json:"total_rent_minor"`
	BalanceMinor             int64  `json:"balance_minor"`

	StartingKM *int64 `json:"starting_km,omitempty"`
	EndingKM   *int64 `json:"ending_km,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func toRentalResponse(r fleet.Rental) rentalResponse {
	return rentalResponse{
		ID:           r.ID,
		VehicleID:    r.VehicleID,
		PartnerID:    r.PartnerID,
		DateOut:      r.DateOut,
		TimeOut:      r.TimeOut,
		DateIn:       r.DateIn,
		TimeIn:       r.TimeIn,
		CustomerName: r.CustomerName,
		ContactNo:    r.ContactNo,
		CustomerID:   r.CustomerID,
		CareOf:       r.CareOf,
		Destination:  r.Destination,

		DaysOfRent:               r.DaysOfRent.String(),
		RentPerDayMinor:          minor(r.RentPerDay),
		AdvanceAmountMinor:       minor(r.AdvanceAmount),
		TotalAmountReceivedMinor: minor(r.TotalAmountReceived),
		DiscountedAmountMinor:    minor(r.DiscountedAmount),
		TotalRentMinor:           minor(r.TotalRent()),
		BalanceMinor:             minor(r.Balance()),

		StartingKM: r.StartingKM,
		EndingKM:   r.EndingKM,
		CreatedAt:  r.CreatedAt,
	}
}

// --- Expenses ---

type expenseRequest struct {
	PartnerID   uuid.UUID `json:"partner_id,omitempty"`
	Date        time.Time `json:"date"`
	Particulars string    `json:"particulars"`
	Place       string    `json:"place,omitempty"`
	CareOf      string    `json:"care_of,omitempty"`
	AmountMinor int64     `json:"amount_minor"`
}

type expenseResponse struct {
	ID          uuid.UUID `json:"id"`
	VehicleID   uuid.UUID `json:"vehicle_id"`
	PartnerID   uuid.UUID `json:"partner_id,omitempty"`
	Date        time.Time `json:"date"`
	Particulars string    `json:"particulars"`
	Place       string    `json:"place,omitempty"`
	CareOf      string    `json:"care_of,omitempty"`
	AmountMinor int64     `json:"amount_minor"`
	Amount      string    `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}

func toExpenseResponse(e fleet.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		VehicleID:   e.VehicleID,
		PartnerID:   e.PartnerID,
		Date:        e.Date,
		Particulars: e.Particulars,
		Place:       e.Place,
		CareOf:      e.CareOf,
		AmountMinor: minor(e.Amount),
		Amount:      e.Amount.String(),
		CreatedAt:   e.CreatedAt,
	}
}

// --- Partners ---

type partnerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type partnerResponse struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Active            bool      `json:"active"`
	CanManageUsers    bool      `json:"can_manage_users"`
	CanManageVehicles bool      `json:"can_manage_vehicles"`
	CanImportData     bool      `json:"can_import_data"`
	CreatedAt         time.Time `json:"created_at"`
}

func toPartnerResponse(p fleet.Partner) partnerResponse {
	return partnerResponse{
		ID:                p.ID,
		Name:              p.Name,
		Email:             p.Email,
		Active:            p.Active,
		CanManageUsers:    p.CanManageUsers,
		CanManageVehicles: p.CanManageVehicles,
		CanImportData:     p.CanImportData,
		CreatedAt:         p.CreatedAt,
	}
}

// --- Reports ---

type monthlyFigureResponse struct {
	Month        string `json:"month"`
	Label        string `json:"label"`
	IncomeMinor  int64  `json:"income_minor"`
	ExpenseMinor int64  `json:"expense_minor"`
	ProfitMinor  int64  `json:"profit_minor"`
}

func toMonthlyResponses(figures []fleet.MonthlyFigure) []monthlyFigureResponse {
	out := make([]monthlyFigureResponse, 0, len(figures))
	for _, f := range figures {
		out = append(out, monthlyFigureResponse{
			Month:        f.Month.String(),
			Label:        f.Month.Label(),
			IncomeMinor:  minor(f.Income),
			ExpenseMinor: minor(f.Expense),
			ProfitMinor:  minor(f.Profit),
		})
	}
	return out
}

type dashboardResponse struct {
	TotalIncomeMinor  int64                   `json:"total_income_minor"`
	TotalExpenseMinor int64                   `json:"total_expense_minor"`
	ProfitMinor       int64                   `json:"profit_minor"`
	VehicleCount      int                     `json:"vehicle_count"`
	Monthly           []monthlyFigureResponse `json:"monthly"`
}

func toDashboardResponse(d report.Dashboard) dashboardResponse {
	return dashboardResponse{
		TotalIncomeMinor:  minor(d.TotalIncome),
		TotalExpenseMinor: minor(d.TotalExpense),
		ProfitMinor:       minor(d.Profit),
		VehicleCount:      d.VehicleCount,
		Monthly:           toMonthlyResponses(d.Monthly),
	}
}

type vehicleReportResponse struct {
	Vehicle           vehicleResponse         `json:"vehicle"`
	TotalIncomeMinor  int64                   `json:"total_income_minor"`
	TotalExpenseMinor int64                   `json:"total_expense_minor"`
	ProfitMinor       int64                   `json:"profit_minor"`
	Monthly           []monthlyFigureResponse `json:"monthly"`
	Rentals           []rentalResponse        `json:"rentals"`
	Expenses          []expenseResponse       `json:"expenses"`
}

func toVehicleReportResponse(rep report.VehicleReport) vehicleReportResponse {
	rentals := make([]rentalResponse, 0, len(rep.Rentals))
	for _, r := range rep.Rentals {
		rentals = append(rentals, toRentalResponse(r))
	}
	expenses := make([]expenseResponse, 0, len(rep.Expenses))
	for _, e := range rep.Expenses {
		expenses = append(expenses, toExpenseResponse(e))
	}
	return vehicleReportResponse{
		Vehicle:           toVehicleResponse(rep.Vehicle),
		TotalIncomeMinor:  minor(rep.TotalIncome),
		TotalExpenseMinor: minor(rep.TotalExpense),
		ProfitMinor:       minor(rep.Profit),
		Monthly:           toMonthlyResponses(rep.Monthly),
		Rentals:           rentals,
		Expenses:          expenses,
	}
}

type partnerReportResponse struct {
	Partner           partnerResponse         `json:"partner"`
	Year              int                     `json:"year"`
	TotalIncomeMinor  int64                   `json:"total_income_minor"`
	TotalExpenseMinor int64                   `json:"total_expense_minor"`
	ProfitMinor       int64                   `json:"profit_minor"`
	Monthly           []monthlyFigureResponse `json:"monthly"`
	AvailableYears    []int                   `json:"available_years"`
}

func toPartnerReportResponse(rep report.PartnerYearReport) partnerReportResponse {
	return partnerReportResponse{
		Partner:           toPartnerResponse(rep.Partner),
		Year:              rep.Year,
		TotalIncomeMinor:  minor(rep.TotalIncome),
		TotalExpenseMinor: minor(rep.TotalExpense),
		ProfitMinor:       minor(rep.Profit),
		Monthly:           toMonthlyResponses(rep.Monthly),
		AvailableYears:    rep.AvailableYears,
	}
}

// --- Shares ---

type vehicleShareResponse struct {
	Vehicle            vehicleResponse `json:"vehicle"`
	VehicleProfitMinor int64           `json:"vehicle_profit_minor"`
	PartnerCount       int             `json:"partner_count"`
	ShareMinor         int64           `json:"share_minor"`
	TakenMinor         int64           `json:"taken_minor"`
	BalanceMinor       int64           `json:"balance_minor"`
}

type shareSummaryResponse struct {
	Partner               partnerResponse        `json:"partner"`
	Vehicles              []vehicleShareResponse `json:"vehicles"`
	TotalShareMinor       int64                  `json:"total_share_minor"`
	TotalTakenMinor       int64                  `json:"total_taken_minor"`
	RemainingBalanceMinor int64                  `json:"remaining_balance_minor"`
}

func toShareSummaryResponse(sum share.Summary) shareSummaryResponse {
	vehicles := make([]vehicleShareResponse, 0, len(sum.Vehicles))
	for _, v := range sum.Vehicles {
		vehicles = append(vehicles, vehicleShareResponse{
			Vehicle:            toVehicleResponse(v.Vehicle),
			VehicleProfitMinor: minor(v.VehicleProfit),
			PartnerCount:       v.PartnerCount,
			ShareMinor:         minor(v.Share),
			TakenMinor:         minor(v.Taken),
			BalanceMinor:       minor(v.Balance),
		})
	}
	return shareSummaryResponse{
		Partner:               toPartnerResponse(sum.Partner),
		Vehicles:              vehicles,
		TotalShareMinor:       minor(sum.TotalShare),
		TotalTakenMinor:       minor(sum.TotalTaken),
		RemainingBalanceMinor: minor(sum.RemainingBalance),
	}
}

type monthShareResponse struct {
	Month             string `json:"month"`
	IncomeShareMinor  int64  `json:"income_share_minor"`
	ExpenseShareMinor int64  `json:"expense_share_minor"`
}

type vehicleYearShareResponse struct {
	Vehicle      vehicleResponse      `json:"vehicle"`
	PartnerCount int                  `json:"partner_count"`
	Months       []monthShareResponse `json:"months"`
}

func toYearBreakdownResponse(shares []share.VehicleYearShare) []vehicleYearShareResponse {
	out := make([]vehicleYearShareResponse, 0, len(shares))
	for _, vs := range shares {
		months := make([]monthShareResponse, 0, len(vs.Months))
		for _, m := range vs.Months {
			months = append(months, monthShareResponse{
				Month:             m.Month.String(),
				IncomeShareMinor:  minor(m.IncomeShare),
				ExpenseShareMinor: minor(m.ExpenseShare),
			})
		}
		out = append(out, vehicleYearShareResponse{
			Vehicle:      toVehicleResponse(vs.Vehicle),
			PartnerCount: vs.PartnerCount,
			Months:       months,
		})
	}
	return out
}

type takenRequest struct {
	VehicleID   uuid.UUID  `json:"vehicle_id"`
	AmountMinor int64      `json:"amount_minor"`
	Date        *time.Time `json:"date,omitempty"`
}

type takenResponse struct {
	ID          uuid.UUID `json:"id"`
	PartnerID   uuid.UUID `json:"partner_id"`
	VehicleID   uuid.UUID `json:"vehicle_id"`
	AmountMinor int64     `json:"amount_minor"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

func toTakenResponse(t fleet.TakenAmount) takenResponse {
	return takenResponse{
		ID:          t.ID,
		PartnerID:   t.PartnerID,
		VehicleID:   t.VehicleID,
		AmountMinor: minor(t.Amount),
		Date:        t.Date,
		CreatedAt:   t.CreatedAt,
	}
}

// --- EMI ---

type emiConfigRequest struct {
	AmountMinor int64 `json:"amount_minor"`
	DueDay      int   `json:"due_day"`
	WarningDays int   `json:"warning_days"`
	Active      bool  `json:"active"`
}

type emiConfigResponse struct {
	ID          uuid.UUID `json:"id"`
	VehicleID   uuid.UUID `json:"vehicle_id"`
	AmountMinor int64     `json:"amount_minor"`
	Amount      string    `json:"amount"`
	DueDay      int       `json:"due_day"`
	WarningDays int       `json:"warning_days"`
	Active      bool      `json:"active"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toEMIConfigResponse(e fleet.EMI) emiConfigResponse {
	return emiConfigResponse{
		ID:          e.ID,
		VehicleID:   e.VehicleID,
		AmountMinor: minor(e.Amount),
		Amount:      e.Amount.String(),
		DueDay:      e.DueDay,
		WarningDays: e.WarningDays,
		Active:      e.Active,
		UpdatedAt:   e.UpdatedAt,
	}
}

type emiPaymentRequest struct {
	AmountMinor int64      `json:"amount_minor"`
	Date        *time.Time `json:"date,omitempty"`
	Remarks     string     `json:"remarks,omitempty"`
}

type emiPaymentResponse struct {
	ID           uuid.UUID `json:"id"`
	VehicleID    uuid.UUID `json:"vehicle_id"`
	AmountMinor  int64     `json:"amount_minor"`
	Date         time.Time `json:"date"`
	MonthPaidFor string    `json:"month_paid_for"`
	Remarks      string    `json:"remarks,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func toEMIPaymentResponse(p fleet.EMIPayment) emiPaymentResponse {
	return emiPaymentResponse{
		ID:           p.ID,
		VehicleID:    p.VehicleID,
		AmountMinor:  minor(p.Amount),
		Date:         p.Date,
		MonthPaidFor: p.MonthPaidFor.String(),
		Remarks:      p.Remarks,
		CreatedAt:    p.CreatedAt,
	}
}

type emiStatusResponse struct {
	Status       emi.Status          `json:"status"`
	Config       *emiConfigResponse  `json:"config,omitempty"`
	DueDate      *time.Time          `json:"due_date,omitempty"`
	DaysUntilDue *int                `json:"days_until_due,omitempty"`
	Payment      *emiPaymentResponse `json:"payment,omitempty"`
}

func toEMIStatusResponse(ev emi.Evaluation) emiStatusResponse {
	resp := emiStatusResponse{Status: ev.Status}
	if ev.Config != nil {
		cfg := toEMIConfigResponse(*ev.Config)
		resp.Config = &cfg
	}
	if !ev.DueDate.IsZero() {
		due := ev.DueDate
		resp.DueDate = &due
	}
	if ev.Status == emi.StatusDueOK || ev.Status == emi.StatusDueWarning {
		days := ev.DaysUntilDue
		resp.DaysUntilDue = &days
	}
	if ev.Payment != nil {
		pay := toEMIPaymentResponse(*ev.Payment)
		resp.Payment = &pay
	}
	return resp
}

// --- Import ---

type importResponse struct {
	RentalsCreated  int      `json:"rentals_created"`
	ExpensesCreated int      `json:"expenses_created"`
	RowErrors       []string `json:"row_errors,omitempty"`
	Warning         string   `json:"warning,omitempty"`
}
