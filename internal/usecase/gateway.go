package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"GhostSniper/internal/domain/models"
	drepo "GhostSniper/internal/domain/repository"
	"GhostSniper/pkg/logger"
)

var (
	ErrNoLiveAdapter = errors.New("no live adapter for chain")
	ErrInvalidIntent = errors.New("invalid trade intent")
)

// TradeGateway executes intents either as simulated paper fills or through a
// per-chain live adapter. Live submissions are never retried.
type TradeGateway struct {
	adapters map[models.Chain]drepo.LiveAdapter
	metrics  drepo.Metrics
	log      *logger.Logger
	price    func() float64
	now      func() time.Time
}

func NewTradeGateway(adapters map[models.Chain]drepo.LiveAdapter, metrics drepo.Metrics, log *logger.Logger) *TradeGateway {
	if log == nil {
		log = logger.Nop()
	}
	if adapters == nil {
		adapters = map[models.Chain]drepo.LiveAdapter{}
	}
	return &TradeGateway{
		adapters: adapters,
		metrics:  metrics,
		log:      log.Named("gateway"),
		price:    func() float64 { return 0.000001 + rand.Float64()*0.01 },
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (g *TradeGateway) Execute(ctx context.Context, in models.TradeIntent) models.TradeResult {
	start := time.Now()
	res := g.execute(ctx, in)
	mode := "live"
	if in.Paper {
		mode = "paper"
	}
	outcome := "ok"
	if !res.OK {
		outcome = "failed"
	}
	if g.metrics != nil {
		g.metrics.RecordTrade(mode, outcome)
		g.metrics.RecordLatency("trade_"+mode, time.Since(start).Seconds())
	}
	return res
}

func (g *TradeGateway) execute(ctx context.Context, in models.TradeIntent) models.TradeResult {
	if err := validateIntent(in); err != nil {
		return models.TradeResult{OK: false, Error: err.Error(), Paper: in.Paper, ExecutedAt: g.now()}
	}
	if in.Paper {
		return g.paperFill(in)
	}

	adapter, ok := g.adapters[in.Chain]
	if !ok || adapter == nil {
		err := fmt.Errorf("%w: %s", ErrNoLiveAdapter, in.Chain)
		return models.TradeResult{OK: false, Error: err.Error(), ExecutedAt: g.now()}
	}
	sub, err := adapter.Submit(ctx, in)
	if err != nil {
		g.log.Warn("live submit failed",
			logger.String("chain", string(in.Chain)),
			logger.String("token", in.TokenIdentity),
			logger.Error(err))
		return models.TradeResult{OK: false, Error: err.Error(), ExecutedAt: g.now()}
	}
	return models.TradeResult{
		OK:          true,
		TxID:        sub.TxID,
		Artifact:    sub.Artifact,
		FilledPrice: sub.Price,
		Router:      sub.Router,
		ExecutedAt:  g.now(),
	}
}

func (g *TradeGateway) paperFill(in models.TradeIntent) models.TradeResult {
	price := in.PriceHint
	if price <= 0 {
		price = g.price()
	}
	return models.TradeResult{
		OK:          true,
		TxID:        "paper-" + uuid.NewString(),
		FilledPrice: price,
		Paper:       true,
		Router:      "paper",
		ExecutedAt:  g.now(),
	}
}

// validateIntent rejects malformed intents. Chain only matters for routing a
// live submission, so paper intents may leave it empty.
func validateIntent(in models.TradeIntent) error {
	switch {
	case in.TokenIdentity == "":
		return fmt.Errorf("%w: token is required", ErrInvalidIntent)
	case in.Side != models.SideBuy && in.Side != models.SideSell:
		return fmt.Errorf("%w: side %q", ErrInvalidIntent, in.Side)
	case !in.Paper && in.Chain != models.ChainSol && in.Chain != models.ChainEVM:
		return fmt.Errorf("%w: chain %q", ErrInvalidIntent, in.Chain)
	case in.Amount <= 0 && in.AmountPct <= 0:
		return fmt.Errorf("%w: amount must be positive", ErrInvalidIntent)
	case in.AmountPct > 100:
		return fmt.Errorf("%w: percent above 100", ErrInvalidIntent)
	}
	return nil
}

// GateLive decides whether an intent that wants live execution may go live.
// It returns the paper flag to use and whether a downgrade happened.
func GateLive(wantsLive bool, params models.AgentParams, ceiling bool) (paper, downgraded bool) {
	if !wantsLive {
		return true, false
	}
	if !params.LiveAllowed(ceiling) {
		return true, true
	}
	return false, false
}
