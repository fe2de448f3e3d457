package esign

import (
	"errors"
	"net/http"
)

// Domain errors for e-signature workflow operations.
var (
	ErrNotFound          = errors.New("document not found")
	ErrFileRequired      = errors.New("file content required")
	ErrInvalidFile       = errors.New("invalid file: PDF content required")
	ErrFileTooLarge      = errors.New("file exceeds maximum upload size")
	ErrInvalidTags       = errors.New("tag payload must contain a widgets list")
	ErrTagsRequired      = errors.New("tags required before submission")
	ErrSignerRequired    = errors.New("signer information required: at least Role 1 email")
	ErrInvalidTransition = errors.New("operation not allowed in current document status")
	ErrStorage           = errors.New("stored document unreadable")
	ErrSubmission        = errors.New("submission to signing provider failed")
)

// MapHTTPStatus maps workflow domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrFileRequired),
		errors.Is(err, ErrInvalidFile),
		errors.Is(err, ErrInvalidTags),
		errors.Is(err, ErrSignerRequired):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrTagsRequired), errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrSubmission):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
