package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"GhostSniper/internal/domain/models"
	xhttp "GhostSniper/pkg/http"
	xlogger "GhostSniper/pkg/logger"
)

func init() {
	err := xhttp.RegisterRule("chain", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseChain(fl.Field().String())
		return ok
	}, "%s must be sol or evm (solana, eth, ethereum, base and bsc are accepted)")
	if err != nil {
		panic(err)
	}
}

type TradeExecutor interface {
	Execute(ctx context.Context, source string, intent models.TradeIntent, live bool) models.TradeResult
}

type Quoter interface {
	Quote(ctx context.Context, req models.QuoteRequest) (json.RawMessage, error)
}

// TradesHandler serves direct trades and the Jupiter quote proxy.
type TradesHandler struct {
	logger   *xlogger.Logger
	executor TradeExecutor
	quoter   Quoter
}

func NewTradesHandler(logger *xlogger.Logger, executor TradeExecutor, quoter Quoter) *TradesHandler {
	return &TradesHandler{logger: logger, executor: executor, quoter: quoter}
}

func (h *TradesHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/trades", h.Trade)
	e.GET("/api/quote", h.Quote)
}

// Trade executes on paper unless live is requested and permitted.
func (h *TradesHandler) Trade(c echo.Context) error {
	req := &models.TradeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	chain, ok := models.ParseChain(req.Chain)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("unsupported chain").WithParam("field", "chain"))
	}
	if req.Amount <= 0 && req.Percent <= 0 {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("amount or percent is required").WithParam("field", "amount"))
	}
	intent := models.TradeIntent{
		Side:          req.Side,
		TokenIdentity: req.Token,
		Amount:        req.Amount,
		AmountPct:     req.Percent,
		Chain:         chain,
		Slippage:      req.Slippage,
		PriorityFee:   req.PriorityFee,
	}
	res := h.executor.Execute(c.Request().Context(), "api", intent, req.Live)
	if !res.OK {
		return xhttp.DataResponse(c, http.StatusUnprocessableEntity, res)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *TradesHandler) Quote(c echo.Context) error {
	req := &models.QuoteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	quote, err := h.quoter.Quote(c.Request().Context(), *req)
	if err != nil {
		h.logger.Warn("quote failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("quote failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, quote)
}
