package api

import (
	"errors"
	"net/http"

	repository "github.com/okian/mergington/internal/adapters/repository"
)

// ErrMissingEmail is returned when a roster mutation has no email query parameter.
var ErrMissingEmail = errors.New("Missing required query parameter: email") //nolint:staticcheck // ST1005: surfaced verbatim as the response detail

// Response details for registry failures.
const (
	detailActivityNotFound = "Activity not found"
	detailAlreadySignedUp  = "Student is already signed up for this activity"
	detailActivityFull     = "Activity is full"
	detailNotRegistered    = "Student is not registered for this activity"
)

// errorStatus maps a service error to the status code and detail sent to the client.
// Unrecognised errors become a 500 without leaking their text.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrActivityNotFound):
		return http.StatusNotFound, detailActivityNotFound
	case errors.Is(err, repository.ErrAlreadySignedUp):
		return http.StatusBadRequest, detailAlreadySignedUp
	case errors.Is(err, repository.ErrActivityFull):
		return http.StatusBadRequest, detailActivityFull
	case errors.Is(err, repository.ErrNotRegistered):
		return http.StatusNotFound, detailNotRegistered
	case errors.Is(err, ErrMissingEmail):
		return http.StatusUnprocessableEntity, ErrMissingEmail.Error()
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}
