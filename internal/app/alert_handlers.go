package app

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"stopfinder.mybus.org/internal/alerts"
	"stopfinder.mybus.org/internal/geo"
)

func (app *Application) listAlertsHandler(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, http.StatusOK, envelope{"alerts": app.Alerts.List()})
}

func (app *Application) createAlertHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		StopCode     string  `json:"stop_code"`
		RadiusMeters float64 `json:"radius_meters"`
	}
	if err := readJSON(w, r, &input); err != nil {
		app.badRequestResponse(w, err)
		return
	}

	alert, err := app.Alerts.Add(input.StopCode, input.RadiusMeters)
	if err != nil {
		if errors.Is(err, alerts.ErrInvalidAlert) {
			app.badRequestResponse(w, err)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	app.Logger.Info("Proximity alert created", "id", alert.ID, "stop_code", alert.StopCode, "radius_meters", alert.RadiusMeters)
	w.Header().Set("Location", "/v1/alerts/proximity/"+alert.ID)
	app.writeJSON(w, http.StatusCreated, envelope{"alert": alert})
}

func (app *Application) deleteAlertHandler(w http.ResponseWriter, r *http.Request) {
	id := httprouter.ParamsFromContext(r.Context()).ByName("id")
	if err := app.Alerts.Remove(id); err != nil {
		if errors.Is(err, alerts.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) checkAlertsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, fieldErrors := parseFloatParam(q, "lat", nil)
	lon, fieldErrors := parseFloatParam(q, "lon", fieldErrors)
	if len(fieldErrors) > 0 {
		app.validationErrorResponse(w, fieldErrors)
		return
	}

	triggered, err := app.Alerts.Evaluate(lat, lon)
	if err != nil {
		if errors.Is(err, geo.ErrInvalidCoordinates) {
			app.badRequestResponse(w, err)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, envelope{"triggered": triggered})
}
