package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/court-compliance-api/api"
	"github.com/linesmerrill/court-compliance-api/models"
	"github.com/linesmerrill/court-compliance-api/speedytrial"
	"github.com/linesmerrill/court-compliance-api/tenant"
)

// SpeedyTrial exported for testing purposes
type SpeedyTrial struct {
	Service *speedytrial.Service
	// ApproachingDays is the threshold used when the query gives none
	ApproachingDays int
}

type closeClockRequest struct {
	DisposedOn models.Date `json:"disposedOn"`
}

type remedyRequest struct {
	ClearedBy string `json:"clearedBy"`
	Reason    string `json:"reason"`
}

// StartClockHandler opens the speedy-trial clock for a case
func (s SpeedyTrial) StartClockHandler(w http.ResponseWriter, r *http.Request) {
	var req speedytrial.StartRequest
	if err := decodeBody(r, &req); err != nil {
		errorStatus("failed to decode request", w, r, err)
		return
	}
	req.CaseID = mux.Vars(r)["case_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	clock, err := s.Service.Start(ctx, tenant.FromContext(r.Context()), req)
	if err != nil {
		errorStatus("failed to start speedy-trial clock", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, clock)
}

// ClockHandler returns the clock evaluated as of ?asOf=, defaulting to today
func (s SpeedyTrial) ClockHandler(w http.ResponseWriter, r *http.Request) {
	asOf, err := queryDate(r, "asOf")
	if err != nil {
		errorStatus("failed to parse asOf", w, r, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	clock, err := s.Service.Get(ctx, tenant.FromContext(r.Context()), mux.Vars(r)["case_id"], asOf)
	if err != nil {
		errorStatus("failed to get speedy-trial clock", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, clock)
}

// AddDelayHandler records an excludable delay against a case's clock
func (s SpeedyTrial) AddDelayHandler(w http.ResponseWriter, r *http.Request) {
	var req speedytrial.DelayRequest
	if err := decodeBody(r, &req); err != nil {
		errorStatus("failed to decode request", w, r, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	clock, err := s.Service.AddExcludableDelay(ctx, tenant.FromContext(r.Context()), mux.Vars(r)["case_id"], req)
	if err != nil {
		errorStatus("failed to add excludable delay", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, clock)
}

// CheckViolationHandler evaluates a clock and flags it when over the limit
func (s SpeedyTrial) CheckViolationHandler(w http.ResponseWriter, r *http.Request) {
	asOf, err := queryDate(r, "asOf")
	if err != nil {
		errorStatus("failed to parse asOf", w, r, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	clock, err := s.Service.CheckViolation(ctx, tenant.FromContext(r.Context()), mux.Vars(r)["case_id"], asOf)
	if err != nil {
		errorStatus("failed to check speedy-trial clock", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, clock)
}

// CloseClockHandler stops a clock at the case's disposition
func (s SpeedyTrial) CloseClockHandler(w http.ResponseWriter, r *http.Request) {
	var req closeClockRequest
	if err := decodeBody(r, &req); err != nil {
		errorStatus("failed to decode request", w, r, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	clock, err := s.Service.Close(ctx, tenant.FromContext(r.Context()), mux.Vars(r)["case_id"], req.DisposedOn)
	if err != nil {
		errorStatus("failed to close speedy-trial clock", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, clock)
}

// RemedyHandler clears a violation flag with a recorded reason
func (s SpeedyTrial) RemedyHandler(w http.ResponseWriter, r *http.Request) {
	var req remedyRequest
	if err := decodeBody(r, &req); err != nil {
		errorStatus("failed to decode request", w, r, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	clock, err := s.Service.Remedy(ctx, tenant.FromContext(r.Context()), mux.Vars(r)["case_id"], req.ClearedBy, req.Reason)
	if err != nil {
		errorStatus("failed to remedy speedy-trial clock", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, clock)
}

// ApproachingHandler lists running clocks within ?threshold= days of their limit
func (s SpeedyTrial) ApproachingHandler(w http.ResponseWriter, r *http.Request) {
	threshold, err := queryInt(r, "threshold", s.ApproachingDays)
	if err != nil {
		errorStatus("failed to parse threshold", w, r, err)
		return
	}
	asOf, err := queryDate(r, "asOf")
	if err != nil {
		errorStatus("failed to parse asOf", w, r, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := s.Service.FindApproaching(ctx, tenant.FromContext(r.Context()), threshold, asOf)
	if err != nil {
		errorStatus("failed to find approaching clocks", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}
