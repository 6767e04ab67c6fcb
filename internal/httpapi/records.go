// Rental and expense handlers. Creates are nested under the vehicle;
// updates and deletes address the record directly.
package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/adilkt/fleetbook/internal/fleet"
)

func (s *Server) postRental(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid vehicle id")
		return
	}
	var in rentalRequest
	if err := decodeJSON(r, &in); err != nil {
		badJSON(w, err)
		return
	}
	rental, err := rentalFromRequest(in, vehicleID)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	rental, err = s.vehicleSvc.CreateRental(r.Context(), rental)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toRentalResponse(rental))
}

func rentalFromRequest(in rentalRequest, vehicleID uuid.UUID) (fleet.Rental, error) {
	days := decimal.Decimal{}
	if in.DaysOfRent != "" {
		var err error
		days, err = decimal.Parse(in.DaysOfRent)
		if err != nil {
			return fleet.Rental{}, err
		}
	}
	return fleet.Rental{
		VehicleID: vehicleID,
		PartnerID: in.PartnerID,

		DateOut: in.DateOut,
		TimeOut: in.TimeOut,
		DateIn:  in.DateIn,
		TimeIn:  in.TimeIn,

		CustomerName: in.CustomerName,
		ContactNo:    in.ContactNo,
		CustomerID:   in.CustomerID,
		CareOf:       in.CareOf,
		Destination:  in.Destination,

		DaysOfRent:          days,
		RentPerDay:          amountFromMinor(in.RentPerDayMinor),
		AdvanceAmount:       amountFromMinor(in.AdvanceAmountMinor),
		TotalAmountReceived: amountFromMinor(in.TotalAmountReceivedMinor),
		DiscountedAmount:    amountFromMinor(in.DiscountedAmountMinor),

		StartingKM: in.StartingKM,
		EndingKM:   in.EndingKM,
	}, nil
}

func (s *Server) updateRental(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid rental id")
		return
	}
	var payload struct {
		PartnerID *uuid.UUID `json:"partner_id"`

		DateOut *time.Time `json:"date_out"`
		TimeOut *time.Time `json:"time_out"`
		DateIn  *time.Time `json:"date_in"`
		TimeIn  *time.Time `json:"time_in"`

		CustomerName *string `json:"customer_name"`
		ContactNo    *string `json:"contact_no"`
		CustomerID   *string `json:"customer_id"`
		CareOf       *string `json:"care_of"`
		Destination  *string `json:"destination"`

		DaysOfRent               *string `json:"days_of_rent"`
		RentPerDayMinor          *int64  `json:"rent_per_day_minor"`
		AdvanceAmountMinor       *int64  `json:"advance_amount_minor"`
		TotalAmountReceivedMinor *int64  `json:"total_amount_received_minor"`
		DiscountedAmountMinor    *int64  `json:"discounted_amount_minor"`

		StartingKM *int64 `json:"starting_km"`
		EndingKM   *int64 `json:"ending_km"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		badJSON(w, err)
		return
	}
	rental, err := s.store.GetRental(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if payload.PartnerID != nil {
		rental.PartnerID = *payload.PartnerID
	}
	if payload.DateOut != nil {
		rental.DateOut = *payload.DateOut
	}
	if payload.TimeOut != nil {
		rental.TimeOut = payload.TimeOut
	}
	if payload.DateIn != nil {
		rental.DateIn = payload.DateIn
	}
	if payload.TimeIn != nil {
		rental.TimeIn = payload.TimeIn
	}
	if payload.CustomerName != nil {
		rental.CustomerName = *payload.CustomerName
	}
	if payload.ContactNo != nil {
		rental.ContactNo = *payload.ContactNo
	}
	if payload.CustomerID != nil {
		rental.CustomerID = *payload.CustomerID
	}
	if payload.CareOf != nil {
		rental.CareOf = *payload.CareOf
	}
	if payload.Destination != nil {
		rental.Destination = *payload.Destination
	}
	if payload.DaysOfRent != nil {
		days, err := decimal.Parse(*payload.DaysOfRent)
		if err != nil {
			badRequest(w, "invalid days_of_rent")
			return
		}
		rental.DaysOfRent = days
	}
	if payload.RentPerDayMinor != nil {
		rental.RentPerDay = amountFromMinor(*payload.RentPerDayMinor)
	}
	if payload.AdvanceAmountMinor != nil {
		rental.AdvanceAmount = amountFromMinor(*payload.AdvanceAmountMinor)
	}
	if payload.TotalAmountReceivedMinor != nil {
		rental.TotalAmountReceived = amountFromMinor(*payload.TotalAmountReceivedMinor)
	}
	if payload.DiscountedAmountMinor != nil {
		rental.DiscountedAmount = amountFromMinor(*payload.DiscountedAmountMinor)
	}
	if payload.StartingKM != nil {
		rental.StartingKM = payload.StartingKM
	}
	if payload.EndingKM != nil {
		rental.EndingKM = payload.EndingKM
	}
	rental, err = s.vehicleSvc.UpdateRental(r.Context(), rental)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toRentalResponse(rental))
}

func (s *Server) deleteRental(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid rental id")
		return
	}
	if err := s.vehicleSvc.DeleteRental(r.Context(), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postExpense(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid vehicle id")
		return
	}
	var in expenseRequest
	if err := decodeJSON(r, &in); err != nil {
		badJSON(w, err)
		return
	}
	expense := fleet.Expense{
		VehicleID:   vehicleID,
		PartnerID:   in.PartnerID,
		Date:        in.Date,
		Particulars: in.Particulars,
		Place:       in.Place,
		CareOf:      in.CareOf,
		Amount:      amountFromMinor(in.AmountMinor),
	}
	expense, err := s.vehicleSvc.CreateExpense(r.Context(), expense)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (s *Server) updateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid expense id")
		return
	}
	var payload struct {
		PartnerID   *uuid.UUID `json:"partner_id"`
		Date        *time.Time `json:"date"`
		Particulars *string    `json:"particulars"`
		Place       *string    `json:"place"`
		CareOf      *string    `json:"care_of"`
		AmountMinor *int64     `json:"amount_minor"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		badJSON(w, err)
		return
	}
	expense, err := s.store.GetExpense(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if payload.PartnerID != nil {
		expense.PartnerID = *payload.PartnerID
	}
	if payload.Date != nil {
		expense.Date = *payload.Date
	}
	if payload.Particulars != nil {
		expense.Particulars = *payload.Particulars
	}
	if payload.Place != nil {
		expense.Place = *payload.Place
	}
	if payload.CareOf != nil {
		expense.CareOf = *payload.CareOf
	}
	if payload.AmountMinor != nil {
		expense.Amount = amountFromMinor(*payload.AmountMinor)
	}
	expense, err = s.vehicleSvc.UpdateExpense(r.Context(), expense)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toExpenseResponse(expense))
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid expense id")
		return
	}
	if err := s.vehicleSvc.DeleteExpense(r.Context(), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
