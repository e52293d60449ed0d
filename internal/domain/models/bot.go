package models

import "time"

type BotKind string

const (
	BotKindDexScreener BotKind = "dexscreener"
	BotKindPumpFun     BotKind = "pumpfun"
)

type BotState string

const (
	BotIdle     BotState = "idle"
	BotRunning  BotState = "running"
	BotStopping BotState = "stopping"
	BotStopped  BotState = "stopped"
)

type BotOptions struct {
	Chain         string        `json:"chain" yaml:"chain" default:"solana"`
	Pool          string        `json:"pool,omitempty" yaml:"pool"`
	Amount        float64       `json:"amount" yaml:"amount" default:"0.05" validate:"gt=0"`
	Slippage      float64       `json:"slippage" yaml:"slippage" default:"1" validate:"gte=0,lte=50"`
	PriorityFee   float64       `json:"priority_fee" yaml:"priority_fee" validate:"gte=0"`
	PaperMode     *bool         `json:"paper_mode,omitempty" yaml:"paper_mode" default:"true"`
	MinLiquidity  float64       `json:"min_liquidity" yaml:"min_liquidity" validate:"gte=0"`
	MinMarketCap  float64       `json:"min_market_cap" yaml:"min_market_cap" validate:"gte=0"`
	MaxAgeSeconds int64         `json:"max_age_seconds" yaml:"max_age_seconds" validate:"gte=0"`
	Interval      time.Duration `json:"interval" yaml:"interval" default:"15s"`
}

// Paper reports whether the bot trades on paper. Unset means paper.
func (o BotOptions) Paper() bool { return o.PaperMode == nil || *o.PaperMode }

// Accepts applies the bot filters to a signal. Zero thresholds are disabled.
func (o BotOptions) Accepts(s Signal) bool {
	if o.MinLiquidity > 0 && s.Metrics.LiquidityUSD < o.MinLiquidity {
		return false
	}
	if o.MinMarketCap > 0 && s.Metrics.MarketCapUSD < o.MinMarketCap {
		return false
	}
	if o.MaxAgeSeconds > 0 && s.Metrics.AgeSeconds > o.MaxAgeSeconds {
		return false
	}
	if o.Pool != "" && s.Pool != "" && s.Pool != o.Pool {
		return false
	}
	return true
}

type BotSummary struct {
	ID         string     `json:"id"`
	Kind       BotKind    `json:"kind"`
	State      BotState   `json:"state"`
	Options    BotOptions `json:"options"`
	StartedAt  time.Time  `json:"started_at,omitempty"`
	Iterations int64      `json:"iterations"`
	Trades     int64      `json:"trades"`
	LastError  string     `json:"last_error,omitempty"`
}
