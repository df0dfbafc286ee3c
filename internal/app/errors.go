package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/campscape/registration-engine/api"
	"github.com/campscape/registration-engine/internal/domain"
	appvalidator "github.com/campscape/registration-engine/internal/validator"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

const (
	ErrInternalServer = "The server encountered a problem and could not process your request"
	ErrNotFound       = "The requested resource not found"
)

// errorKindStatus is the transport-level lookup table for typed domain
// failures. Localized message rendering happens entirely in the presentation
// layer, keyed by the kind this table passes through.
var errorKindStatus = map[domain.ErrorKind]int{
	domain.ErrKindSessionNotFound:         http.StatusNotFound,
	domain.ErrKindWaitlistEntryNotFound:   http.StatusNotFound,
	domain.ErrKindInvalidRoleId:           http.StatusUnprocessableEntity,
	domain.ErrKindMissingRoleSelection:    http.StatusUnprocessableEntity,
	domain.ErrKindNoRolesRequired:         http.StatusUnprocessableEntity,
	domain.ErrKindRoleCapacityExceeded:    http.StatusConflict,
	domain.ErrKindSessionCapacityExceeded: http.StatusConflict,
	domain.ErrKindWaitlistInvalidState:    http.StatusConflict,
	domain.ErrKindRoleAssignmentMismatch:  http.StatusInternalServerError,
}

func (app *application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.Error(err.Error(), "method", method, "uri", uri)
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *application) editConflictResponse(w http.ResponseWriter, r *http.Request) {
	message := "Unable to complete the request due to a conflict, please try again"
	app.errorResponse(w, r, http.StatusConflict, message)
}

func (app *application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ValidationErrorResponse{
		Message:   "The request contains invalid fields",
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	for _, fieldErr := range validationErrs {
		resp.ValidationErrors = append(resp.ValidationErrors, api.ValidationError{
			Field: fieldErr.Field(),
			Issue: appvalidator.ValidationMessage(fieldErr),
		})
	}

	writeErr := app.writeJSON(w, http.StatusUnprocessableEntity, resp, nil)
	if writeErr != nil {
		app.logError(r, writeErr)
		w.WriteHeader(500)
	}
}

// resolveDomainError extracts the typed domain failure and its HTTP status.
// Unknown kinds and internal mismatches report false so callers fall back to
// the 500 path.
func resolveDomainError(err error) (*domain.Error, int, bool) {
	var domainErr *domain.Error
	if !errors.As(err, &domainErr) {
		return nil, 0, false
	}

	status, ok := errorKindStatus[domainErr.Kind]
	if !ok || status == http.StatusInternalServerError {
		return nil, 0, false
	}

	return domainErr, status, true
}

// domainErrorResponse translates a typed domain failure into a transport
// response carrying the stable kind plus its structured parameters.
func (app *application) domainErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	domainErr, status, ok := resolveDomainError(err)
	if !ok {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ErrorResponse{
		Message:   http.StatusText(status),
		Kind:      string(domainErr.Kind),
		Params:    domainErr.Params,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	writeErr := app.writeJSON(w, status, resp, nil)
	if writeErr != nil {
		app.logError(r, writeErr)
		w.WriteHeader(500)
	}
}
