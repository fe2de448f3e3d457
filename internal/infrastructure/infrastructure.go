// Package infrastructure provides core service initialization for application
// startup. It assembles the common dependencies (logging, blob storage, the
// signing provider client) that the workflow domain requires.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/quillsign/quill/internal/config"
	"github.com/quillsign/quill/internal/opensign"
	"github.com/quillsign/quill/pkg/lifecycle"
	"github.com/quillsign/quill/pkg/storage"
)

// Infrastructure holds the core systems required by the domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Storage   storage.System
	Provider  opensign.Client
}

// New creates an Infrastructure from the application configuration. It
// initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	provider := opensign.New(&cfg.Provider, logger)

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Storage:   store,
		Provider:  provider,
	}, nil
}

// Start registers infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}
