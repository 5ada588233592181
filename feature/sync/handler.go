package sync

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"inventory-bridge/core/database"
	"inventory-bridge/core/logger"
)

// Handler exposes the sync service over the HTTP admin surface.
type Handler struct {
	service *Service
	manager *database.Manager
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, manager *database.Manager, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, manager: manager, logger: log}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Get("/status", h.HandleStatus)
	group.Post("/reconnect", h.HandleReconnect)
	group.Post("/scan", h.HandleScan)
	group.Get("/players/:uuid", h.HandlePlayerStatus)
	group.Post("/players/:uuid", h.HandleManualSync)
}

// HandleStatus reports the datastore state and the last connection error.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"server_id":  h.service.cfg.ServerID,
		"datastore":  h.manager.State().String(),
		"last_error": h.manager.LastError(),
	})
}

// HandleReconnect triggers the explicit standby recovery sequence.
func (h *Handler) HandleReconnect(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	if !h.manager.Reconnect() {
		l.Warn("Reconnect attempt failed", zap.String("last_error", h.manager.LastError()))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"datastore":  h.manager.State().String(),
			"last_error": h.manager.LastError(),
		})
	}
	l.Info("Datastore reconnected")
	return c.JSON(fiber.Map{"datastore": h.manager.State().String()})
}

// HandleScan runs the initial-sync pass over the playerdata directory.
func (h *Handler) HandleScan(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	report, err := h.service.ScanPlayerFiles()
	if err != nil {
		l.Error("Player file scan failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(report)
}

// HandlePlayerStatus reports per-player in-progress state and last sync time.
func (h *Handler) HandlePlayerStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid player uuid",
		})
	}

	resp := fiber.Map{
		"player":      id.String(),
		"in_progress": h.service.IsSyncInProgress(id),
	}
	if last, ok := h.service.LastSyncTime(id); ok {
		resp["last_sync"] = last.Format(time.RFC3339)
	}
	return c.JSON(resp)
}

type manualSyncRequest struct {
	Save bool `json:"save"`
}

// HandleManualSync starts an operator-requested save or load for a player.
func (h *Handler) HandleManualSync(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid player uuid",
		})
	}

	var req manualSyncRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	l := logger.WithRayID(h.logger, c)
	switch err := h.service.ManualSync(id, req.Save); {
	case errors.Is(err, ErrPlayerNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrSyncBusy):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		l.Error("Manual sync failed to start", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	l.Info("Manual sync dispatched",
		zap.String("player", id.String()), zap.Bool("save", req.Save))
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"player": id.String(),
		"save":   req.Save,
	})
}
