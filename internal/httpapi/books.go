// Spreadsheet handlers: register import and history export.
package httpapi

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/adilkt/fleetbook/internal/sheet"
)

// maxImportBytes bounds uploaded workbook size.
const maxImportBytes = 20 << 20

// postImport accepts either a multipart form with a "file" field or the raw
// workbook bytes as the request body.
func (s *Server) postImport(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid vehicle id")
		return
	}
	data, err := importBody(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if len(data) == 0 {
		badRequest(w, "empty upload")
		return
	}
	res, err := s.importer.Import(r.Context(), data, vehicleID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	s.log.Info("import complete",
		"vehicle_id", vehicleID,
		"rentals", res.RentalsCreated,
		"expenses", res.ExpensesCreated,
		"row_errors", len(res.RowErrors),
	)
	out := importResponse{
		RentalsCreated:  res.RentalsCreated,
		ExpensesCreated: res.ExpensesCreated,
		RowErrors:       res.RowErrors,
	}
	if res.Empty() {
		out.Warning = "no records imported"
	}
	toJSON(w, http.StatusOK, out)
}

func importBody(r *http.Request) ([]byte, error) {
	body := http.MaxBytesReader(nil, r.Body, maxImportBytes)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return io.ReadAll(body)
	}
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// getExport handles GET /v1/vehicles/{id}/export?year=YYYY. Without a year it
// exports the vehicle's full history.
func (s *Server) getExport(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid vehicle id")
		return
	}
	vehicle, err := s.store.GetVehicle(r.Context(), vehicleID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	rentals, err := s.store.RentalsByVehicle(r.Context(), vehicleID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	expenses, err := s.store.ExpensesByVehicle(r.Context(), vehicleID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}

	periodLabel := "All Time"
	if q := r.URL.Query().Get("year"); q != "" {
		year, err := strconv.Atoi(q)
		if err != nil {
			badRequest(w, "invalid year")
			return
		}
		periodLabel = q
		filteredRentals := rentals[:0:0]
		for _, rec := range rentals {
			if rec.DateOut.Year() == year {
				filteredRentals = append(filteredRentals, rec)
			}
		}
		filteredExpenses := expenses[:0:0]
		for _, rec := range expenses {
			if rec.Date.Year() == year {
				filteredExpenses = append(filteredExpenses, rec)
			}
		}
		rentals, expenses = filteredRentals, filteredExpenses
	}

	partners, err := s.store.ListPartners(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	names := make(map[string]string, len(partners))
	for _, p := range partners {
		names[p.ID.String()] = p.Name
	}

	buf, err := sheet.Export(vehicle, rentals, expenses, periodLabel, names)
	if err != nil {
		s.log.Error("export failed", "vehicle_id", vehicleID, "err", err)
		writeErr(w, http.StatusInternalServerError, "could not build workbook", "")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+sheet.Filename(vehicle.Name, periodLabel)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}
