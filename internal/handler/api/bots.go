package api

import (
	"github.com/labstack/echo/v4"

	"GhostSniper/internal/domain/models"
	xhttp "GhostSniper/pkg/http"
	xlogger "GhostSniper/pkg/logger"
)

type BotManager interface {
	Start(id string, kind models.BotKind, opts models.BotOptions) (bool, error)
	Stop(id string) (bool, error)
	Remove(id string) error
	List() []models.BotSummary
}

// BotsHandler serves /api/bots.
type BotsHandler struct {
	logger   *xlogger.Logger
	registry BotManager
}

func NewBotsHandler(logger *xlogger.Logger, registry BotManager) *BotsHandler {
	return &BotsHandler{logger: logger, registry: registry}
}

func (h *BotsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/bots")
	g.GET("", h.List)
	g.POST("/:id/start", h.Start)
	g.POST("/:id/stop", h.Stop)
	g.DELETE("/:id", h.Remove)
}

func (h *BotsHandler) List(c echo.Context) error {
	bots := h.registry.List()
	return xhttp.ListResponse(c, bots, int64(len(bots)))
}

func (h *BotsHandler) Start(c echo.Context) error {
	req := &models.StartBotRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	started, err := h.registry.Start(req.ID, req.Kind, req.Options)
	if err != nil {
		h.logger.Warn("bot start failed", xlogger.String("bot", req.ID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, botError(err))
	}
	return xhttp.SuccessResponse(c, map[string]any{"id": req.ID, "started": started})
}

func (h *BotsHandler) Stop(c echo.Context) error {
	req := &models.BotIDRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	stopped, err := h.registry.Stop(req.ID)
	if err != nil {
		return xhttp.AppErrorResponse(c, botError(err))
	}
	return xhttp.SuccessResponse(c, map[string]any{"id": req.ID, "stopped": stopped})
}

func (h *BotsHandler) Remove(c echo.Context) error {
	req := &models.BotIDRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.registry.Remove(req.ID); err != nil {
		return xhttp.AppErrorResponse(c, botError(err))
	}
	return xhttp.SuccessResponse(c, map[string]any{"id": req.ID, "removed": true})
}
