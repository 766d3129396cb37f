package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/court-compliance-api/api"
	"github.com/linesmerrill/court-compliance-api/deadlines"
	"github.com/linesmerrill/court-compliance-api/tenant"
)

// Deadline exported for testing purposes
type Deadline struct {
	Clock     *deadlines.Clock
	Service   *deadlines.Service
	Reminders *deadlines.Reminders
}

type completeDeadlineRequest struct {
	CompletedBy string `json:"completedBy"`
}

type acknowledgeReminderRequest struct {
	AcknowledgedBy string `json:"acknowledgedBy"`
}

// ComputeHandler computes a due date without persisting anything
func (d Deadline) ComputeHandler(w http.ResponseWriter, r *http.Request) {
	var req deadlines.ComputeRequest
	if err := decodeBody(r, &req); err != nil {
		errorStatus("failed to decode request", w, r, err)
		return
	}
	computation, err := d.Clock.ComputeDueDate(req)
	if err != nil {
		errorStatus("failed to compute due date", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, computation)
}

// CreateDeadlineHandler computes and registers a deadline with its reminders
func (d Deadline) CreateDeadlineHandler(w http.ResponseWriter, r *http.Request) {
	var req deadlines.CreateRequest
	if err := decodeBody(r, &req); err != nil {
		errorStatus("failed to decode request", w, r, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	deadline, err := d.Service.Create(ctx, tenant.FromContext(r.Context()), req)
	if err != nil {
		errorStatus("failed to create deadline", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, deadline)
}

// DeadlineByIDHandler returns a deadline by ID
func (d Deadline) DeadlineByIDHandler(w http.ResponseWriter, r *http.Request) {
	deadlineID := mux.Vars(r)["deadline_id"]

	zap.S().Debugf("deadline_id: %v", deadlineID)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	deadline, err := d.Service.Get(ctx, tenant.FromContext(r.Context()), deadlineID)
	if err != nil {
		errorStatus("failed to get deadline by ID", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, deadline)
}

// DeadlinesByCaseIDHandler returns every deadline on a case, earliest due first
func (d Deadline) DeadlinesByCaseIDHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := d.Service.ListForCase(ctx, tenant.FromContext(r.Context()), caseID)
	if err != nil {
		errorStatus("failed to get deadlines by case ID", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}

// CompleteDeadlineHandler records that a deadline was met
func (d Deadline) CompleteDeadlineHandler(w http.ResponseWriter, r *http.Request) {
	deadlineID := mux.Vars(r)["deadline_id"]

	var req completeDeadlineRequest
	if err := decodeBody(r, &req); err != nil {
		errorStatus("failed to decode request", w, r, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	deadline, err := d.Service.Complete(ctx, tenant.FromContext(r.Context()), deadlineID, req.CompletedBy)
	if err != nil {
		errorStatus("failed to complete deadline", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, deadline)
}

// RemindersByDeadlineIDHandler returns a deadline's reminders in schedule order
func (d Deadline) RemindersByDeadlineIDHandler(w http.ResponseWriter, r *http.Request) {
	deadlineID := mux.Vars(r)["deadline_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ns := tenant.FromContext(r.Context())
	if _, err := d.Service.Get(ctx, ns, deadlineID); err != nil {
		errorStatus("failed to get deadline by ID", w, r, err)
		return
	}
	list, err := d.Reminders.ListForDeadline(ctx, ns, deadlineID)
	if err != nil {
		errorStatus("failed to get reminders", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}

// AcknowledgeReminderHandler marks a reminder acknowledged
func (d Deadline) AcknowledgeReminderHandler(w http.ResponseWriter, r *http.Request) {
	reminderID := mux.Vars(r)["reminder_id"]

	var req acknowledgeReminderRequest
	if err := decodeBody(r, &req); err != nil {
		errorStatus("failed to decode request", w, r, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	reminder, err := d.Reminders.Acknowledge(ctx, tenant.FromContext(r.Context()), reminderID, req.AcknowledgedBy)
	if err != nil {
		errorStatus("failed to acknowledge reminder", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, reminder)
}
