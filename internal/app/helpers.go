package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/getsentry/sentry-go"
	"stopfinder.mybus.org/internal/report"
)

const maxBodyBytes = 1 << 20

type envelope map[string]interface{}

func (app *Application) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		app.Logger.Error("Failed to encode response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// readJSON decodes a single JSON object from the request body, rejecting
// unknown fields and trailing data.
func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("body must not be empty")
		}
		return fmt.Errorf("body contains badly-formed JSON: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func (app *Application) errorResponse(w http.ResponseWriter, status int, message interface{}) {
	app.writeJSON(w, status, envelope{"error": message})
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.Logger.Error("Request failed", "method", r.Method, "uri", r.URL.RequestURI(), "error", err)
	report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
		Tags: report.Tags("path", r.URL.Path),
		ExtraContext: map[string]interface{}{
			"method": r.Method,
			"query":  r.URL.RawQuery,
		},
		Level: sentry.LevelError,
	})
	app.errorResponse(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

func (app *Application) badRequestResponse(w http.ResponseWriter, err error) {
	app.errorResponse(w, http.StatusBadRequest, err.Error())
}

func (app *Application) validationErrorResponse(w http.ResponseWriter, fieldErrors map[string][]string) {
	app.errorResponse(w, http.StatusBadRequest, fieldErrors)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, http.StatusNotFound, "the requested resource could not be found")
}

func (app *Application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, http.StatusMethodNotAllowed, fmt.Sprintf("the %s method is not supported for this resource", r.Method))
}

func addFieldError(fieldErrors map[string][]string, key, message string) map[string][]string {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}
	fieldErrors[key] = append(fieldErrors[key], message)
	return fieldErrors
}

// parseFloatParam reads a required float query parameter. Problems are
// appended to fieldErrors, which is returned.
func parseFloatParam(q url.Values, key string, fieldErrors map[string][]string) (float64, map[string][]string) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, addFieldError(fieldErrors, key, "must be provided")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, addFieldError(fieldErrors, key, "must be a number")
	}
	return v, fieldErrors
}

// parseIntParam reads an optional integer query parameter.
func parseIntParam(q url.Values, key string, fallback int, fieldErrors map[string][]string) (int, map[string][]string) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return fallback, fieldErrors
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, addFieldError(fieldErrors, key, "must be an integer")
	}
	return v, fieldErrors
}

// parseList splits a comma separated parameter, dropping blanks.
func parseList(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}
