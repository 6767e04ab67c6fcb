package httpapi

import (
	"errors"
	"net/http"

	"github.com/adilkt/fleetbook/internal/errs"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) { writeErr(w, http.StatusBadRequest, msg, "") }
func notFound(w http.ResponseWriter)               { writeErr(w, http.StatusNotFound, "not_found", "not_found") }

// writeDomainErr maps sentinel errors from the services and stores onto HTTP
// statuses. Anything unrecognized is treated as a validation failure rather
// than a 500: the services return plain errors for bad input.
func writeDomainErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		notFound(w)
	case errors.Is(err, errs.ErrAlreadyPaid):
		writeErr(w, http.StatusConflict, err.Error(), "already_paid")
	case errors.Is(err, errs.ErrConflict):
		writeErr(w, http.StatusConflict, err.Error(), "conflict")
	case errors.Is(err, errs.ErrHeaderNotFound):
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "header_not_found")
	case errors.Is(err, errs.ErrInvalid):
		writeErr(w, http.StatusBadRequest, err.Error(), "invalid")
	default:
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "validation_error")
	}
}
