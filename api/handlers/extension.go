package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/court-compliance-api/api"
	"github.com/linesmerrill/court-compliance-api/apperr"
	"github.com/linesmerrill/court-compliance-api/deadlines"
	"github.com/linesmerrill/court-compliance-api/models"
	"github.com/linesmerrill/court-compliance-api/tenant"
)

// Extension exported for testing purposes
type Extension struct {
	Workflow *deadlines.Workflow
}

// Extension decisions accepted by DecideExtensionHandler
const (
	DecisionApprove = "approve"
	DecisionDeny    = "deny"
)

type extensionDecisionRequest struct {
	Decision  string `json:"decision"`
	DecidedBy string `json:"decidedBy"`
}

// approve reports the decision, rejecting anything but approve or deny
func (req extensionDecisionRequest) approve() (bool, error) {
	switch strings.ToLower(strings.TrimSpace(req.Decision)) {
	case DecisionApprove:
		return true, nil
	case DecisionDeny:
		return false, nil
	}
	return false, apperr.New(apperr.InvalidRequest, "decision must be %q or %q, got %q", DecisionApprove, DecisionDeny, req.Decision)
}

// ExtensionDecisionResponse is the decided extension and the deadline it applies to
type ExtensionDecisionResponse struct {
	Extension *models.Extension `json:"extension"`
	Deadline  *models.Deadline  `json:"deadline"`
}

// RequestExtensionHandler files a pending extension request against a deadline
func (e Extension) RequestExtensionHandler(w http.ResponseWriter, r *http.Request) {
	var req deadlines.ExtensionRequest
	if err := decodeBody(r, &req); err != nil {
		errorStatus("failed to decode request", w, r, err)
		return
	}
	req.DeadlineID = mux.Vars(r)["deadline_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ext, err := e.Workflow.Request(ctx, tenant.FromContext(r.Context()), req)
	if err != nil {
		errorStatus("failed to request extension", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, ext)
}

// ExtensionsByDeadlineIDHandler returns every extension filed against a deadline
func (e Extension) ExtensionsByDeadlineIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := e.Workflow.ListForDeadline(ctx, tenant.FromContext(r.Context()), mux.Vars(r)["deadline_id"])
	if err != nil {
		errorStatus("failed to get extensions", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}

// ExtensionByIDHandler returns an extension by ID
func (e Extension) ExtensionByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ext, err := e.Workflow.Get(ctx, tenant.FromContext(r.Context()), mux.Vars(r)["extension_id"])
	if err != nil {
		errorStatus("failed to get extension by ID", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ext)
}

// DecideExtensionHandler approves or denies a pending extension
func (e Extension) DecideExtensionHandler(w http.ResponseWriter, r *http.Request) {
	extensionID := mux.Vars(r)["extension_id"]

	var req extensionDecisionRequest
	if err := decodeBody(r, &req); err != nil {
		errorStatus("failed to decode request", w, r, err)
		return
	}
	approve, err := req.approve()
	if err != nil {
		errorStatus("invalid extension decision", w, r, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ns := tenant.FromContext(r.Context())
	deadline, err := e.Workflow.Decide(ctx, ns, extensionID, approve, req.DecidedBy)
	if err != nil {
		errorStatus("failed to decide extension", w, r, err)
		return
	}
	ext, err := e.Workflow.Get(ctx, ns, extensionID)
	if err != nil {
		errorStatus("failed to get extension by ID", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ExtensionDecisionResponse{Extension: ext, Deadline: deadline})
}
