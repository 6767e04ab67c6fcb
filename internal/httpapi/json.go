package httpapi

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
)

var errUnsupportedMedia = errors.New("expected application/json")

// toJSON writes a JSON response with status code.
func toJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes a request body strictly, rejecting unknown fields. A
// declared non-JSON content type yields errUnsupportedMedia; an absent
// Content-Type header is accepted.
func decodeJSON(r *http.Request, dst any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != "application/json" {
			return errUnsupportedMedia
		}
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// badJSON reports a request-body decode failure: 415 for a wrong media type,
// 400 for malformed or unexpected JSON.
func badJSON(w http.ResponseWriter, err error) {
	if errors.Is(err, errUnsupportedMedia) {
		writeErr(w, http.StatusUnsupportedMediaType, err.Error(), "unsupported_media_type")
		return
	}
	badRequest(w, "invalid JSON: "+err.Error())
}
