// Package api holds the HTTP plumbing shared by the handlers: metrics,
// request ids, timeouts and the health check.
package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/linesmerrill/court-compliance-api/models"
)

// HealthCheckHandler reports that the process is serving
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
