package http

import (
	"encoding/json"
	"net/http"

	"pollution-tracker/internal/domain"
	"pollution-tracker/internal/dto"
	"pollution-tracker/internal/observability/logging"
)

const internalErrorMsg = "Internal server error"

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, dto.Envelope{Status: http.StatusOK, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.Envelope{Status: status, ErrorMsg: msg})
}

// writeError maps err to a status. Server-side kinds are logged and
// reported with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)
	if !kind.IsClientFacing() {
		logging.FromContext(r.Context()).Error("request failed",
			"kind", kind.String(),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeMessage(w, status, internalErrorMsg)
		return
	}
	writeMessage(w, status, err.Error())
}

func statusFor(k domain.Kind) int {
	switch k {
	case domain.KindClient:
		return http.StatusBadRequest
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
