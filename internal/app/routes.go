package app

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"stopfinder.mybus.org/internal/middleware"
)

// Routes registers every endpoint on an httprouter and wraps it with the
// Sentry and security header middlewares.
//
// ctx bounds the lifetime of the /metrics cache refresher.
func (app *Application) Routes(ctx context.Context) http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)

	router.HandlerFunc(http.MethodGet, "/v1/stops/nearest", app.nearestStopsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/stops/code/:code", app.stopHandler)
	router.HandlerFunc(http.MethodGet, "/v1/stops/viewport", app.viewportHandler)

	router.HandlerFunc(http.MethodGet, "/v1/alerts/proximity", app.listAlertsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/alerts/proximity", app.createAlertHandler)
	router.HandlerFunc(http.MethodGet, "/v1/alerts/proximity/check", app.checkAlertsHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/alerts/proximity/:id", app.deleteAlertHandler)

	router.Handler(http.MethodGet, "/metrics", middleware.NewCachedPromHandler(ctx, prometheus.DefaultGatherer, 10*time.Second))

	handler := middleware.SentryMiddleware(router)
	return middleware.SecurityHeaders(handler)
}
