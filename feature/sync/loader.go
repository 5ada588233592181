package sync

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"inventory-bridge/core/adapter"
	"inventory-bridge/core/database"
	"inventory-bridge/core/payload"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the sync feature. archiver may be nil.
func NewFeature(cfg Config, repo *database.Repository, manager *database.Manager, codec *payload.Codec, players adapter.Provider, archiver Archiver, logger *zap.Logger) *Feature {
	svc := NewService(cfg, repo, codec, players, archiver, logger)
	h := NewHandler(svc, manager, logger)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "sync"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Service exposes the orchestrator for host integrations that deliver join
// and leave events directly.
func (f *Feature) Service() *Service {
	return f.service
}
