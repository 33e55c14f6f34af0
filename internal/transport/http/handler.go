package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"pollution-tracker/internal/domain"
	"pollution-tracker/internal/dto"
	"pollution-tracker/internal/observability/logging"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

type handler struct {
	svc Services
}

func (h *handler) root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Welcome to the Pollution Tracker API"))
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if h.svc.Health != nil {
		if err := h.svc.Health(r.Context()); err != nil {
			logging.FromContext(r.Context()).Error("health check failed", "error", err)
			writeMessage(w, http.StatusServiceUnavailable, "Database is down")
			return
		}
	}
	writeData(w, "Database is up and running")
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var form dto.UserForm
	if !decode(w, r, &form) {
		return
	}
	if err := h.svc.Auth.Register(r.Context(), form); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Envelope{Status: http.StatusOK})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var form dto.UserForm
	if !decode(w, r, &form) {
		return
	}
	res, err := h.svc.Auth.Login(r.Context(), form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, res)
}

func (h *handler) ingest(w http.ResponseWriter, r *http.Request) {
	var req dto.ReadingRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Ingest.Ingest(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, res)
}

func (h *handler) sensors(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.ErrUnauthenticated)
		return
	}
	sensors, err := h.svc.Readings.Sensors(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, sensors)
}

func (h *handler) readings(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.ErrUnauthenticated)
		return
	}
	sensorID, err := sensorIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rng, err := domain.ParseTimeRange(r.URL.Query().Get("range"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	readings, err := h.svc.Readings.Readings(r.Context(), claims.Subject, sensorID, rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, readings)
}

func (h *handler) proof(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.ErrUnauthenticated)
		return
	}
	sensorID, err := sensorIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	readingID, err := strconv.ParseInt(chi.URLParam(r, "reading_id"), 10, 64)
	if err != nil || readingID <= 0 {
		writeError(w, r, fmt.Errorf("%w: reading id must be a positive integer", domain.ErrInvalidInput))
		return
	}

	proof, err := h.svc.Readings.Proof(r.Context(), claims.Subject, sensorID, domain.ReadingID(readingID))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, proof)
}

func sensorIDParam(r *http.Request) (domain.SensorID, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "sensor_id"), 10, 32)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: sensor id must be a positive integer", domain.ErrInvalidInput)
	}
	return domain.SensorID(id), nil
}

// decode reads a JSON body into dst and reports a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
