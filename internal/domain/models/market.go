package models

import "time"

// MarketSnapshot is the merged result of one market intel fan-out.
// Note: no transport (json/http) concerns beyond tags here.
type MarketSnapshot struct {
	Chain     string            `json:"chain"`
	Timestamp time.Time         `json:"timestamp"`
	Data      map[string]any    `json:"data"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// TrendingCoin is one entry of an aggregator's trending list.
type TrendingCoin struct {
	ID            string  `json:"id"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Score         int     `json:"score"`
	MarketCapRank int     `json:"market_cap_rank"`
	PriceBTC      float64 `json:"price_btc,omitempty"`
}

// PairSummary is a compact DEX pair view used in snapshots.
type PairSummary struct {
	ChainID      string  `json:"chain_id"`
	DexID        string  `json:"dex_id"`
	PairAddress  string  `json:"pair_address"`
	BaseAddress  string  `json:"base_address"`
	BaseSymbol   string  `json:"base_symbol"`
	QuoteSymbol  string  `json:"quote_symbol"`
	PriceUSD     float64 `json:"price_usd"`
	LiquidityUSD float64 `json:"liquidity_usd"`
	Volume24h    float64 `json:"volume_24h"`
	FDV          float64 `json:"fdv"`
	URL          string  `json:"url,omitempty"`
}
