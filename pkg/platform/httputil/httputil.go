// Package httputil centralizes JSON response and error envelopes so every
// handler renders errors the same way.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "subsets/pkg/domain-errors"
)

// WriteJSON renders v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a coded error into the standard error envelope.
// Internal errors omit the description so invariant-breach details never
// leak to clients; everything else returns the message verbatim.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := map[string]string{
		"error": string(code),
	}
	if code != dErrors.CodeInternal {
		if msg := dErrors.MessageOf(err); msg != "" {
			body["error_description"] = msg
		}
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}
