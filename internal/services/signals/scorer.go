package signals

import (
	"GhostSniper/internal/domain/models"
	domsvc "GhostSniper/internal/domain/service"
)

// Heuristic thresholds.
const (
	LiquidityFloorUSD  = 5_000
	LiquidityStrongUSD = 20_000
	MinTxns5m          = 30
	MinPriceChange5m   = -15.0
	MaxPriceChange5m   = 150.0
	MinAgeSeconds      = 60
	MaxAgeSeconds      = 180 * 60
)

// Scorer is the fixed additive heuristic. The total is not clipped, so a
// signal meeting every condition scores 9.
type Scorer struct{}

func NewScorer() *Scorer { return &Scorer{} }

func (Scorer) Score(m models.Metrics) int {
	return Score(m)
}

// Score computes the heuristic for m. It is pure and evaluated fresh on every call.
func Score(m models.Metrics) int {
	score := 0
	if m.LiquidityUSD >= LiquidityFloorUSD {
		score += 2
	}
	if m.LiquidityUSD >= LiquidityStrongUSD {
		score += 2
	}
	if m.Buys5m+m.Sells5m >= MinTxns5m {
		score += 2
	}
	if m.Buys5m > m.Sells5m {
		score++
	}
	if m.PriceChange5m >= MinPriceChange5m && m.PriceChange5m <= MaxPriceChange5m {
		score++
	}
	if m.AgeSeconds >= MinAgeSeconds && m.AgeSeconds <= MaxAgeSeconds {
		score++
	}
	return score
}

var _ domsvc.SignalScorer = (*Scorer)(nil)
