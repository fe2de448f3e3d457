package opensign

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse indicates the provider answered 2xx but omitted the
// template object identifier.
var ErrMalformedResponse = errors.New("provider response missing objectId")

// APIError carries a provider-supplied failure message and HTTP status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("provider error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("provider error (%d)", e.Status)
}
