package archive

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"inventory-bridge/core/logger"
)

// Handler exposes the archived snapshot history over HTTP.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, logger: log}
}

// RegisterRoutes registers the archive routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/archive")
	group.Get("/players/:uuid", h.HandleList)
	group.Get("/players/:uuid/snapshot", h.HandleFetch)
}

// HandleList returns every archived snapshot object for a player.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid player uuid",
		})
	}

	l := logger.WithRayID(h.logger, c)
	entries, err := h.service.List(c.Context(), id)
	if err != nil {
		l.Error("Archive listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"player":    id.String(),
		"snapshots": entries,
	})
}

// HandleFetch returns one archived payload, selected by its key.
func (h *Handler) HandleFetch(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid player uuid",
		})
	}
	key := c.Query("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing key query parameter",
		})
	}

	l := logger.WithRayID(h.logger, c)
	data, err := h.service.Fetch(c.Context(), key)
	if err != nil {
		l.Error("Archive fetch failed",
			zap.String("player", id.String()),
			zap.String("key", key),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.SendString(data)
}
