// EMI handlers: configure, evaluate, pay, history.
package httpapi

import (
	"net/http"
	"time"

	"github.com/adilkt/fleetbook/internal/fleet"
)

func (s *Server) putEMI(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid vehicle id")
		return
	}
	var in emiConfigRequest
	if err := decodeJSON(r, &in); err != nil {
		badJSON(w, err)
		return
	}
	cfg, err := s.emiSvc.Configure(r.Context(), fleet.EMI{
		VehicleID:   vehicleID,
		Amount:      amountFromMinor(in.AmountMinor),
		DueDay:      in.DueDay,
		WarningDays: in.WarningDays,
		Active:      in.Active,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toEMIConfigResponse(cfg))
}

func (s *Server) getEMIStatus(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid vehicle id")
		return
	}
	ev, err := s.emiSvc.Evaluate(r.Context(), vehicleID, time.Now().UTC())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toEMIStatusResponse(ev))
}

func (s *Server) postEMIPayment(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid vehicle id")
		return
	}
	var in emiPaymentRequest
	if err := decodeJSON(r, &in); err != nil {
		badJSON(w, err)
		return
	}
	date := time.Now().UTC()
	if in.Date != nil {
		date = *in.Date
	}
	payment, err := s.emiSvc.Pay(r.Context(), vehicleID, amountFromMinor(in.AmountMinor), date, in.Remarks)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toEMIPaymentResponse(payment))
}

func (s *Server) getEMIHistory(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid vehicle id")
		return
	}
	cfg, payments, err := s.emiSvc.History(r.Context(), vehicleID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]emiPaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toEMIPaymentResponse(p))
	}
	toJSON(w, http.StatusOK, struct {
		Config   emiConfigResponse    `json:"config"`
		Payments []emiPaymentResponse `json:"payments"`
	}{Config: toEMIConfigResponse(cfg), Payments: out})
}
