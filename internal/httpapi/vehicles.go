// Vehicle handlers: CRUD plus the per-vehicle report.
package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

func (s *Server) postVehicle(w http.ResponseWriter, r *http.Request) {
	var in vehicleRequest
	if err := decodeJSON(r, &in); err != nil {
		badJSON(w, err)
		return
	}
	v, err := s.vehicleSvc.CreateVehicle(r.Context(), in.toDomain())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toVehicleResponse(v))
}

func (s *Server) listVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := s.vehicleSvc.ListVehicles(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]vehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, toVehicleResponse(v))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid vehicle id")
		return
	}
	v, err := s.vehicleSvc.GetVehicle(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toVehicleResponse(v))
}

// updateVehicle handles PATCH /v1/vehicles/{id}: load current, apply the
// provided fields, write back through the service.
func (s *Server) updateVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid vehicle id")
		return
	}
	var payload struct {
		Name               *string      `json:"name"`
		RegistrationNumber *string      `json:"registration_number"`
		Color              *string      `json:"color"`
		ImagePath          *string      `json:"image_path"`
		PricePerDayMinor   *int64       `json:"price_per_day_minor"`
		PartnerIDs         *[]uuid.UUID `json:"partner_ids"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		badJSON(w, err)
		return
	}
	v, err := s.vehicleSvc.GetVehicle(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if payload.Name != nil {
		v.Name = *payload.Name
	}
	if payload.RegistrationNumber != nil {
		v.RegistrationNumber = *payload.RegistrationNumber
	}
	if payload.Color != nil {
		v.Color = *payload.Color
	}
	if payload.ImagePath != nil {
		v.ImagePath = *payload.ImagePath
	}
	if payload.PricePerDayMinor != nil {
		v.PricePerDay = amountFromMinor(*payload.PricePerDayMinor)
	}
	if payload.PartnerIDs != nil {
		v.PartnerIDs = *payload.PartnerIDs
	}
	v, err = s.vehicleSvc.UpdateVehicle(r.Context(), v)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toVehicleResponse(v))
}

func (s *Server) deleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid vehicle id")
		return
	}
	if err := s.vehicleSvc.DeleteVehicle(r.Context(), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getVehicleReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid vehicle id")
		return
	}
	rep, err := s.reportSvc.VehicleReport(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toVehicleReportResponse(rep))
}

func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.reportSvc.Dashboard(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toDashboardResponse(d))
}
