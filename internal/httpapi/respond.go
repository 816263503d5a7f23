package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"hospital-onboarding/internal/common/apperr"
	"hospital-onboarding/internal/common/logger"
)

// errorBody is the wire shape of every failed response.
type errorBody struct {
	Error struct {
		Kind    apperr.Kind `json:"kind"`
		Message string      `json:"message"`
		Details string      `json:"details,omitempty"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps the error taxonomy onto HTTP. Internal causes are logged
// server-side and never leak into the response body.
func writeError(w http.ResponseWriter, log logger.Logger, err error) {
	status := apperr.HTTPStatus(err)

	var body errorBody
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Kind != apperr.KindInternal {
		body.Error.Kind = appErr.Kind
		body.Error.Message = appErr.Message
		body.Error.Details = appErr.Details
	} else {
		body.Error.Kind = apperr.KindInternal
		body.Error.Message = "internal server error"
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed", map[string]interface{}{"error": err})
	}

	writeJSON(w, status, body)
}
