// Partner handlers: CRUD, share views, withdrawal recording.
package httpapi

import (
	"net/http"
	"strconv"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/adilkt/fleetbook/internal/fleet"
)

func (s *Server) postPartner(w http.ResponseWriter, r *http.Request) {
	var in partnerRequest
	if err := decodeJSON(r, &in); err != nil {
		badJSON(w, err)
		return
	}
	p, err := s.vehicleSvc.CreatePartner(r.Context(), fleet.Partner{Name: in.Name, Email: in.Email})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toPartnerResponse(p))
}

func (s *Server) listPartners(w http.ResponseWriter, r *http.Request) {
	partners, err := s.vehicleSvc.ListPartners(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]partnerResponse, 0, len(partners))
	for _, p := range partners {
		out = append(out, toPartnerResponse(p))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getPartner(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid partner id")
		return
	}
	p, err := s.vehicleSvc.GetPartner(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toPartnerResponse(p))
}

func (s *Server) updatePartner(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid partner id")
		return
	}
	var payload struct {
		Name              *string `json:"name"`
		Email             *string `json:"email"`
		Active            *bool   `json:"active"`
		CanManageUsers    *bool   `json:"can_manage_users"`
		CanManageVehicles *bool   `json:"can_manage_vehicles"`
		CanImportData     *bool   `json:"can_import_data"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		badJSON(w, err)
		return
	}
	p, err := s.vehicleSvc.GetPartner(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if payload.Name != nil {
		p.Name = *payload.Name
	}
	if payload.Email != nil {
		p.Email = *payload.Email
	}
	if payload.Active != nil {
		p.Active = *payload.Active
	}
	if payload.CanManageUsers != nil {
		p.CanManageUsers = *payload.CanManageUsers
	}
	if payload.CanManageVehicles != nil {
		p.CanManageVehicles = *payload.CanManageVehicles
	}
	if payload.CanImportData != nil {
		p.CanImportData = *payload.CanImportData
	}
	p, err = s.vehicleSvc.UpdatePartner(r.Context(), p)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toPartnerResponse(p))
}

func (s *Server) deletePartner(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid partner id")
		return
	}
	if err := s.vehicleSvc.DeletePartner(r.Context(), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getShareSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid partner id")
		return
	}
	sum, err := s.shareSvc.Summary(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toShareSummaryResponse(sum))
}

func (s *Server) getShareYearBreakdown(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid partner id")
		return
	}
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		badRequest(w, "invalid year")
		return
	}
	shares, err := s.shareSvc.YearBreakdown(r.Context(), id, year)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toYearBreakdownResponse(shares))
}

// getPartnerReport handles GET /v1/partners/{id}/report?year=YYYY.
// The year defaults to the current one.
func (s *Server) getPartnerReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid partner id")
		return
	}
	year := time.Now().Year()
	if q := r.URL.Query().Get("year"); q != "" {
		y, err := strconv.Atoi(q)
		if err != nil {
			badRequest(w, "invalid year")
			return
		}
		year = y
	}
	rep, err := s.reportSvc.PartnerYearReport(r.Context(), id, year)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toPartnerReportResponse(rep))
}

func (s *Server) postTakenAmount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid partner id")
		return
	}
	var in takenRequest
	if err := decodeJSON(r, &in); err != nil {
		badJSON(w, err)
		return
	}
	var date time.Time
	if in.Date != nil {
		date = *in.Date
	}
	taken, err := s.shareSvc.RecordTaken(r.Context(), id, in.VehicleID, amountFromMinor(in.AmountMinor), date)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toTakenResponse(taken))
}
