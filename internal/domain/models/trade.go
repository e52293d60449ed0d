package models

import "time"

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Chain names the routing family used by live adapters.
type Chain string

const (
	ChainSol Chain = "sol"
	ChainEVM Chain = "evm"
)

// ParseChain maps user and feed spellings onto a routing chain.
func ParseChain(s string) (Chain, bool) {
	switch s {
	case "sol", "solana", "SOL":
		return ChainSol, true
	case "evm", "eth", "ethereum", "base", "bsc", "EVM":
		return ChainEVM, true
	}
	return "", false
}

type TradeIntent struct {
	Side          Side    `json:"side"`
	TokenIdentity string  `json:"token"`
	Amount        float64 `json:"amount"`               // native units (SOL / ETH) for buys
	AmountPct     float64 `json:"amount_pct,omitempty"` // share of holding for sells
	Chain         Chain   `json:"chain"`
	Paper         bool    `json:"paper"`
	Slippage      float64 `json:"slippage,omitempty"` // percent
	PriorityFee   float64 `json:"priority_fee,omitempty"`
	PriceHint     float64 `json:"price_hint,omitempty"`
	Origin        string  `json:"origin,omitempty"`
}

// TradeResult is the outcome of one Execute call.
type TradeResult struct {
	OK          bool      `json:"ok"`
	TxID        string    `json:"txid,omitempty"`
	Artifact    string    `json:"artifact,omitempty"` // unsigned transaction for the external signer
	FilledPrice float64   `json:"filled_price,omitempty"`
	Error       string    `json:"error,omitempty"`
	Paper       bool      `json:"paper"`
	Router      string    `json:"router,omitempty"`
	ExecutedAt  time.Time `json:"executed_at"`
}

// SubmitResult is what a live adapter hands back to the gateway.
type SubmitResult struct {
	TxID     string
	Artifact string
	Price    float64
	Router   string
}
