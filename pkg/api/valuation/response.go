package valuation

import (
	"encoding/json"
	"errors"
	"net/http"

	"dcf_valuation/pkg/core/valuation"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps request errors to 400, assumption errors to 422 and
// everything else to fallback.
func statusFor(err error, fallback int) (int, ErrorResponse) {
	resp := ErrorResponse{Error: err.Error()}

	var reqErr *requestError
	var verr *valuation.ValidationError
	switch {
	case errors.As(err, &reqErr):
		resp.Field = reqErr.Field
		return http.StatusBadRequest, resp
	case errors.As(err, &verr):
		resp.Field = verr.Field
		return http.StatusUnprocessableEntity, resp
	case errors.Is(err, valuation.ErrInvalidAssumption):
		return http.StatusUnprocessableEntity, resp
	default:
		return fallback, resp
	}
}

func writeError(w http.ResponseWriter, err error, fallback int) {
	status, resp := statusFor(err, fallback)
	writeJSON(w, status, resp)
}
