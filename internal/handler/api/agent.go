package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"GhostSniper/internal/domain/models"
	"GhostSniper/internal/usecase"
	xhttp "GhostSniper/pkg/http"
	xlogger "GhostSniper/pkg/logger"
	"GhostSniper/pkg/util"
)

type AgentController interface {
	Start() bool
	Stop() bool
	Status() models.AgentStatus
}

type CommandRunner interface {
	Dispatch(ctx context.Context, text, source string) (*models.DispatchResult, error)
	ApplyParams(source string, patch models.ParamsPatch) error
}

type LogTail interface {
	Tail(n int) []models.LogEntry
	Params() models.AgentParams
}

type RateLimiter interface {
	Allow(key string) bool
}

// AgentHandler serves /api/agent.
type AgentHandler struct {
	logger     *xlogger.Logger
	agent      AgentController
	dispatcher CommandRunner
	state      LogTail
	limiter    RateLimiter
}

func NewAgentHandler(logger *xlogger.Logger, agent AgentController, dispatcher CommandRunner, state LogTail, limiter RateLimiter) *AgentHandler {
	return &AgentHandler{logger: logger, agent: agent, dispatcher: dispatcher, state: state, limiter: limiter}
}

func (h *AgentHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/agent")
	g.GET("/status", h.Status)
	g.GET("/logs", h.Logs)
	g.POST("/start", h.Start)
	g.POST("/stop", h.Stop)
	g.POST("/prompt", h.Prompt)
	g.POST("/params", h.Params)
}

func (h *AgentHandler) Status(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.agent.Status())
}

// Logs returns the newest entries of the agent log, ?limit=N (default 50).
func (h *AgentHandler) Logs(c echo.Context) error {
	n := util.ParseIntDefault(c.QueryParam("limit"), 50)
	if n <= 0 {
		n = 50
	}
	entries := h.state.Tail(n)
	return xhttp.ListResponse(c, entries, int64(len(entries)))
}

func (h *AgentHandler) Start(c echo.Context) error {
	changed := h.agent.Start()
	return xhttp.SuccessResponse(c, map[string]any{"ok": true, "changed": changed, "status": h.agent.Status()})
}

func (h *AgentHandler) Stop(c echo.Context) error {
	changed := h.agent.Stop()
	return xhttp.SuccessResponse(c, map[string]any{"ok": true, "changed": changed, "status": h.agent.Status()})
}

func (h *AgentHandler) Prompt(c echo.Context) error {
	req := &models.PromptRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.limiter != nil && !h.limiter.Allow(req.Source+"|"+c.RealIP()) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many prompts, slow down"))
	}

	res, err := h.dispatcher.Dispatch(c.Request().Context(), req.Text, req.Source)
	if err != nil {
		h.logger.Warn("prompt failed", xlogger.String("source", req.Source), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("interpreter unavailable").WithError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AgentHandler) Params(c echo.Context) error {
	patch := &models.ParamsPatch{}
	if verr := xhttp.ReadAndValidateRequest(c, patch); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.dispatcher.ApplyParams("api", *patch); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	return xhttp.SuccessResponse(c, map[string]any{"ok": true, "params": h.state.Params()})
}

// botError maps registry errors to HTTP errors.
func botError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, usecase.ErrBotNotFound):
		return xhttp.NotFoundError(err.Error())
	case errors.Is(err, usecase.ErrBotRunning):
		return xhttp.ConflictError(err.Error())
	case errors.Is(err, usecase.ErrUnknownKind):
		return xhttp.BadRequestError(err.Error())
	default:
		return xhttp.NewAppError("ERR_BOT", "", err.Error(), http.StatusUnprocessableEntity)
	}
}
