// Package health serves the liveness probe outside the huma API so it never
// shows up in the OpenAPI document.
package health

import (
	"encoding/json"
	"net/http"
)

// Path is where the probe is mounted.
const Path = "/health"

// StatusHealthy is the only status the probe reports.
const StatusHealthy = "healthy"

// Response is the payload for the health endpoint.
type Response struct {
	Status string `json:"status"`
}

// Handler reports that the process is up and serving.
func Handler(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	_ = json.NewEncoder(w).Encode(Response{Status: StatusHealthy})
}
