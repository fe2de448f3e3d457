package api

import (
	"github.com/quillsign/quill/internal/esign"
)

// Domain holds the domain systems that comprise the API.
type Domain struct {
	Esign esign.System
}

// NewDomain creates the domain systems from the API runtime. The
// recipient-update seam is left unwired: the provider offers no update
// API this service models yet, and the engine logs the gap instead.
func NewDomain(runtime *Runtime) *Domain {
	esignSystem := esign.New(
		esign.NewRegistry(),
		runtime.Storage,
		runtime.Provider,
		nil,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Esign: esignSystem,
	}
}
