package app

import (
	"net/http"
	"time"
)

// HealthStatus is the body of /v1/healthcheck.
//
// Ready is true once at least one stop has been indexed; until then the
// handler answers 500 so load balancers keep traffic away.
type HealthStatus struct {
	Status      string     `json:"status"`
	Environment string     `json:"environment"`
	Version     string     `json:"version"`
	Feeds       int        `json:"feeds"`
	Stops       int        `json:"stops"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	Ready       bool       `json:"ready"`
}

func (app *Application) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	numStops := app.Index.Len()
	ready := numStops > 0

	status := HealthStatus{
		Status:      "available",
		Environment: app.Config.Env,
		Version:     app.Version,
		Feeds:       len(app.Config.GetFeeds()),
		Stops:       numStops,
		Ready:       ready,
	}
	if updated := app.Index.UpdatedAt(); !updated.IsZero() {
		status.LastUpdated = &updated
	}

	code := http.StatusOK
	if !ready {
		code = http.StatusInternalServerError
	}
	app.writeJSON(w, code, status)
}
