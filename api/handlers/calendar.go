package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/court-compliance-api/api"
	"github.com/linesmerrill/court-compliance-api/models"
	"github.com/linesmerrill/court-compliance-api/scheduling"
	"github.com/linesmerrill/court-compliance-api/tenant"
)

// Calendar exported for testing purposes
type Calendar struct {
	Resolver *scheduling.Resolver
}

type conflictRequest struct {
	Kind            models.ResourceKind `json:"kind"`
	ResourceID      string              `json:"resourceID"`
	Start           time.Time           `json:"start"`
	DurationMinutes int                 `json:"durationMinutes"`
}

// ConflictResponse reports whether a proposed interval overlaps a booking
type ConflictResponse struct {
	Conflict bool `json:"conflict"`
}

// ConflictHandler checks one resource for an overlapping booking
func (c Calendar) ConflictHandler(w http.ResponseWriter, r *http.Request) {
	var req conflictRequest
	if err := decodeBody(r, &req); err != nil {
		errorStatus("failed to decode request", w, r, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	conflict, err := c.Resolver.HasConflict(ctx, tenant.FromContext(r.Context()), req.Kind, req.ResourceID, req.Start, req.DurationMinutes)
	if err != nil {
		errorStatus("failed to check conflict", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ConflictResponse{Conflict: conflict})
}

// SlotHandler finds the first slot where judge and courtroom are both free
func (c Calendar) SlotHandler(w http.ResponseWriter, r *http.Request) {
	var req scheduling.SlotRequest
	if err := decodeBody(r, &req); err != nil {
		errorStatus("failed to decode request", w, r, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	slot, err := c.Resolver.FindAvailableSlot(ctx, tenant.FromContext(r.Context()), req)
	if err != nil {
		errorStatus("failed to find available slot", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, slot)
}

// BookEventHandler books an event, reserving its judge and courtroom
func (c Calendar) BookEventHandler(w http.ResponseWriter, r *http.Request) {
	var req scheduling.BookRequest
	if err := decodeBody(r, &req); err != nil {
		errorStatus("failed to decode request", w, r, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	event, err := c.Resolver.Book(ctx, tenant.FromContext(r.Context()), req)
	if err != nil {
		errorStatus("failed to book event", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, event)
}

// EventByIDHandler returns a calendar event by ID
func (c Calendar) EventByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	event, err := c.Resolver.Get(ctx, tenant.FromContext(r.Context()), mux.Vars(r)["event_id"])
	if err != nil {
		errorStatus("failed to get event by ID", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, event)
}

// CancelEventHandler cancels an event and frees its resources
func (c Calendar) CancelEventHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	event, err := c.Resolver.Cancel(ctx, tenant.FromContext(r.Context()), mux.Vars(r)["event_id"])
	if err != nil {
		errorStatus("failed to cancel event", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, event)
}

// ResourceEventsHandler lists the scheduled events of a judge or courtroom
func (c Calendar) ResourceEventsHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := c.Resolver.ListForResource(ctx, tenant.FromContext(r.Context()), models.ResourceKind(vars["kind"]), vars["resource_id"])
	if err != nil {
		errorStatus("failed to get resource events", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}
