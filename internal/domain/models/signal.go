package models

import (
	"encoding/json"
	"time"
)

// Raw payload formats understood by the normalizer.
const (
	FormatDexPair         = "dexscreener.pair"
	FormatPumpFunCoin     = "pumpfun.coin"
	FormatPumpPortalNew   = "pumpportal.newToken"
	FormatPumpPortalTrade = "pumpportal.trade"
	FormatGeneric         = "generic"
)

// RawItem is a feed payload before normalization.
type RawItem struct {
	SourceID   string          `json:"source_id"`
	Format     string          `json:"format"`
	Payload    json.RawMessage `json:"payload"`
	ReceivedAt time.Time       `json:"received_at"`
}

type Metrics struct {
	LiquidityUSD  float64 `json:"liquidity_usd"`
	Volume5m      float64 `json:"volume_5m"`
	PriceChange5m float64 `json:"price_change_5m"` // percent
	Buys5m        int     `json:"buys_5m"`
	Sells5m       int     `json:"sells_5m"`
	AgeSeconds    int64   `json:"age_seconds"`
	MarketCapUSD  float64 `json:"market_cap_usd"`
	PriceUSD      float64 `json:"price_usd"`
}

// Signal is a scored observation about one token from one source.
type Signal struct {
	SourceID      string    `json:"source_id"`
	TokenIdentity string    `json:"token"` // mint, contract address or symbol
	Symbol        string    `json:"symbol,omitempty"`
	Chain         string    `json:"chain,omitempty"`
	Pool          string    `json:"pool,omitempty"`
	Metrics       Metrics   `json:"metrics"`
	Score         int       `json:"score"`
	ObservedAt    time.Time `json:"observed_at"`
}

// Key identifies a signal for deduplication.
func (s Signal) Key() string { return s.SourceID + "|" + s.TokenIdentity }
