package api

import (
	"net/http"

	"github.com/quillsign/quill/internal/config"
	"github.com/quillsign/quill/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) {
	routes.Register(
		mux,
		domain.Esign.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
	)
}
