// Package httpapi wires the HTTP surface of the fleet bookkeeping service.
// It keeps handlers thin, delegating business rules to the service layer.
package httpapi

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/adilkt/fleetbook/internal/notify"
	"github.com/adilkt/fleetbook/internal/service/emi"
	"github.com/adilkt/fleetbook/internal/service/report"
	"github.com/adilkt/fleetbook/internal/service/share"
	"github.com/adilkt/fleetbook/internal/service/vehicle"
	"github.com/adilkt/fleetbook/internal/sheet"
)

// Server wires handlers and middleware using Chi.
// It composes read (repo) and write (writer) dependencies through services.
type Server struct {
	store      Store
	vehicleSvc vehicle.Service
	reportSvc  report.Service
	shareSvc   share.Service
	emiSvc     emi.Service
	importer   *sheet.Importer
	log        *slog.Logger
	rt         *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
// The logger is used by basic request/response logging and panic recovery.
func New(store Store, notifier notify.Notifier, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)

	s := &Server{
		store:      store,
		vehicleSvc: vehicle.New(store, store, notifier),
		reportSvc:  report.New(store),
		shareSvc:   share.New(store, store),
		emiSvc:     emi.New(store, store, notifier),
		importer:   sheet.NewImporter(store),
		log:        logger,
		rt:         r,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints.
func (s *Server) routes() {
	// Dashboard
	s.rt.Get("/v1/dashboard", s.getDashboard)

	// Vehicles
	s.rt.Post("/v1/vehicles", s.postVehicle)
	s.rt.Get("/v1/vehicles", s.listVehicles)
	s.rt.Get("/v1/vehicles/{id}", s.getVehicle)
	s.rt.Patch("/v1/vehicles/{id}", s.updateVehicle)
	s.rt.Delete("/v1/vehicles/{id}", s.deleteVehicle)
	s.rt.Get("/v1/vehicles/{id}/report", s.getVehicleReport)

	// Rentals and expenses, nested creates, flat updates
	s.rt.Post("/v1/vehicles/{id}/rentals", s.postRental)
	s.rt.Patch("/v1/rentals/{id}", s.updateRental)
	s.rt.Delete("/v1/rentals/{id}", s.deleteRental)
	s.rt.Post("/v1/vehicles/{id}/expenses", s.postExpense)
	s.rt.Patch("/v1/expenses/{id}", s.updateExpense)
	s.rt.Delete("/v1/expenses/{id}", s.deleteExpense)

	// EMI
	s.rt.Put("/v1/vehicles/{id}/emi", s.putEMI)
	s.rt.Get("/v1/vehicles/{id}/emi", s.getEMIHistory)
	s.rt.Get("/v1/vehicles/{id}/emi/status", s.getEMIStatus)
	s.rt.Post("/v1/vehicles/{id}/emi/payments", s.postEMIPayment)

	// Partners and shares
	s.rt.Post("/v1/partners", s.postPartner)
	s.rt.Get("/v1/partners", s.listPartners)
	s.rt.Get("/v1/partners/{id}", s.getPartner)
	s.rt.Patch("/v1/partners/{id}", s.updatePartner)
	s.rt.Delete("/v1/partners/{id}", s.deletePartner)
	s.rt.Get("/v1/partners/{id}/shares", s.getShareSummary)
	s.rt.Get("/v1/partners/{id}/shares/{year}", s.getShareYearBreakdown)
	s.rt.Get("/v1/partners/{id}/report", s.getPartnerReport)
	s.rt.Post("/v1/partners/{id}/taken", s.postTakenAmount)

	// Spreadsheet books
	s.rt.Post("/v1/vehicles/{id}/import", s.postImport)
	s.rt.Get("/v1/vehicles/{id}/export", s.getExport)

	// Health and metrics (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())
}
