package handlers

import (
	"net/http"

	"github.com/linesmerrill/court-compliance-api/api"
	"github.com/linesmerrill/court-compliance-api/compliance"
	"github.com/linesmerrill/court-compliance-api/tenant"
)

// Compliance exported for testing purposes
type Compliance struct {
	Reporter *compliance.Reporter
}

// ReportHandler returns the tenant's compliance rollup
func (c Compliance) ReportHandler(w http.ResponseWriter, r *http.Request) {
	asOf, err := queryDate(r, "asOf")
	if err != nil {
		errorStatus("failed to parse asOf", w, r, err)
		return
	}
	threshold, err := queryInt(r, "threshold", -1)
	if err != nil {
		errorStatus("failed to parse threshold", w, r, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	report, err := c.Reporter.Report(ctx, tenant.FromContext(r.Context()), asOf, threshold)
	if err != nil {
		errorStatus("failed to build compliance report", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}
