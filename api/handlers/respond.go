package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/linesmerrill/court-compliance-api/api"
	"github.com/linesmerrill/court-compliance-api/apperr"
	"github.com/linesmerrill/court-compliance-api/models"
)

// statusFor maps an error kind onto its HTTP status
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.InvalidPeriod, apperr.UnknownJurisdiction, apperr.JurisdictionalDeadline,
		apperr.OverlappingDelay, apperr.InvalidRequest:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.AlreadyExists, apperr.ScheduleConflict, apperr.AlreadyDecided:
		return http.StatusConflict
	case apperr.SlotUnavailable:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// errorStatus logs err and writes it as an ErrorMessageResponse with the
// status its kind maps to
func errorStatus(message string, w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)
	log := zap.S().With("error", err, "kind", kind, "requestId", api.RequestID(r.Context()))
	if status >= http.StatusInternalServerError {
		log.Error(message)
	} else {
		log.Debug(message)
	}

	b, _ := json.Marshal(models.ErrorMessageResponse{Response: models.MessageError{
		Message: message,
		Error:   err.Error(),
		Kind:    string(kind),
	}})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		errorStatus("failed to marshal response", w, r, apperr.Wrap(apperr.StorageFailure, err, "marshal"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.InvalidRequest, err, "invalid request body")
	}
	return nil
}

// queryDate parses an optional YYYY-MM-DD query parameter; absent yields the zero date
func queryDate(r *http.Request, name string) (models.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return models.Date{}, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return models.Date{}, apperr.Wrap(apperr.InvalidRequest, err, "invalid %s", name)
	}
	return d, nil
}

// queryInt parses an optional integer query parameter
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Wrap(apperr.InvalidRequest, err, "invalid %s", name)
	}
	return n, nil
}
