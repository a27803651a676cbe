package health

import (
	"encoding/json"
	"net/http"
)

// Handler serves the aggregator's report as JSON. Healthy and degraded
// report 200; unhealthy reports 503 so load balancers can rotate the
// process out.
func Handler(a *Aggregator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		report := a.Check(r.Context())

		type checkBody struct {
			Status  string         `json:"status"`
			Message string         `json:"message,omitempty"`
			Details map[string]any `json:"details,omitempty"`
		}
		body := struct {
			Status string               `json:"status"`
			Checks map[string]checkBody `json:"checks"`
		}{
			Status: report.Status.String(),
			Checks: make(map[string]checkBody, len(report.Checks)),
		}
		for name, res := range report.Checks {
			body.Checks[name] = checkBody{
				Status:  res.Status.String(),
				Message: res.Message,
				Details: res.Details,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if report.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(body)
	})
}
