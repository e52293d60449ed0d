package service

import (
	"context"
	"errors"

	"GhostSniper/internal/domain/models"
)

// ErrUnrecoverable marks a poll failure that retrying cannot fix.
var ErrUnrecoverable = errors.New("unrecoverable feed error")

// Strategy is the capability set a bot is polymorphic over.
type Strategy interface {
	PollOnce(ctx context.Context) ([]models.RawItem, error)
	BuildTradeIntent(sig models.Signal, opts models.BotOptions) models.TradeIntent
}

// StrategyFactory builds a strategy for one bot from its options.
type StrategyFactory func(opts models.BotOptions) (Strategy, error)

// SignalScorer computes a heuristic quality score from signal metrics.
type SignalScorer interface {
	Score(m models.Metrics) int
}

// Normalizer converts a raw feed item into a canonical signal (score left zero).
type Normalizer interface {
	Normalize(item models.RawItem) (models.Signal, error)
}
