package handler

import (
	"errors"
	"net/http"

	"github.com/CCA-SociedadeAdvogados/legalhub-backend/model"
)

// statusFor maps the core error taxonomy to HTTP status codes. Unknown
// errors are internal.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidEventKind):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrIllegalTransition):
		return http.StatusConflict
	case errors.Is(err, model.ErrJobAlreadyInFlight):
		return http.StatusConflict
	case errors.Is(err, model.ErrMalformedPayload):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrExtractionFailure):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
