package api

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/leozhansino-design/butternovel-mobile-sub002/errs"
	"github.com/rs/zerolog"
)

// responses above this size are replaced by an error
const maxResponseSize = 10 * 1024 * 1024

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

// WriteJSON writes data with status 200.
func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.writeJSONStatus(w, http.StatusOK, data)
}

func (r Responder) writeJSONStatus(w http.ResponseWriter, status int, data any) {
	// Marshal the data first to check size and handle errors
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if len(jsonData) > maxResponseSize {
		r.logger.Error().
			Int("responseSize", len(jsonData)).
			Int("maxSize", maxResponseSize).
			Msg("response too large")

		jsonData, _ = json.Marshal(ErrorResponse{
			Error:   "Response too large",
			Status:  "error",
			Details: "The requested data exceeds the maximum response size",
		})
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	// For unexpected errors, log and return generic internal error
	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Msg("unexpected error")
		r.writeJSONStatus(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "Internal Server Error",
			Status:  "error",
			Details: "An unexpected error occurred",
		})
		return
	}

	response := ErrorResponse{
		Error:      apiErr.Error(),
		Status:     "error",
		Field:      apiErr.Field,
		Details:    apiErr.Details,
		Missing:    apiErr.Missing,
		Violations: apiErr.Violations,
	}

	// Add full error chain for debugging (especially useful for database errors)
	if apiErr.Cause != nil {
		response.Cause = apiErr.GetFullError()
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Str("error", apiErr.GetFullError()).Int("status", apiErr.StatusCode).Msg("request failed")
	}

	r.writeJSONStatus(w, apiErr.StatusCode, response)
}
