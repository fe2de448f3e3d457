// Package api assembles the API module with the workflow domain and route
// registration.
package api

import (
	"net/http"

	"github.com/quillsign/quill/internal/config"
	"github.com/quillsign/quill/internal/infrastructure"
	"github.com/quillsign/quill/pkg/middleware"
	"github.com/quillsign/quill/pkg/module"
)

// NewModule creates the API module with the domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}
