package usecase

import (
	"GhostSniper/internal/domain/models"
)

const SystemInstruction = "You are Ghost Sniper, an onchain trading agent. Default to paper mode. " +
	"Only trade live if the operator enabled live trading and the user explicitly approves. " +
	"Be concise. When you want to act, call a tool."

// Catalog is the fixed set of actions offered to the interpreter.
func Catalog() []models.ToolSpec {
	return []models.ToolSpec{
		{
			Name:        models.ActionQueryMarket,
			Description: "Fetch trending tokens and DEX pairs for a chain.",
			Params: []models.ToolParam{
				{Name: "chain", Type: "string", Description: "sol, evm or all", Enum: []string{"sol", "evm", "all"}},
			},
		},
		{
			Name:        models.ActionQueueTrade,
			Description: "Buy a token quickly. For SOL give the mint; for EVM give the token address.",
			Params: []models.ToolParam{
				{Name: "chain", Type: "string", Enum: []string{"sol", "evm"}},
				{Name: "token", Type: "string", Description: "mint address or symbol"},
				{Name: "amount", Type: "number", Description: "amount of SOL or ETH to spend"},
				{Name: "slippage", Type: "number", Description: "percent"},
				{Name: "priority", Type: "number", Description: "priority fee"},
				{Name: "live", Type: "boolean", Description: "request live execution"},
			},
			Required: []string{"chain", "token", "amount"},
		},
		{
			Name:        models.ActionUpdateParams,
			Description: "Change agent parameters such as budget, risk tier or live trading.",
			Params: []models.ToolParam{
				{Name: "budget", Type: "number", Description: "budget in USD"},
				{Name: "riskTier", Type: "string", Enum: []string{"low", "medium", "high"}},
				{Name: "live", Type: "boolean"},
				{Name: "maxConcurrentBots", Type: "integer"},
				{Name: "confirmBeforeLive", Type: "boolean"},
			},
		},
		{
			Name:        models.ActionWatchAddress,
			Description: "Add a wallet address to the watch list.",
			Params: []models.ToolParam{
				{Name: "address", Type: "string"},
			},
			Required: []string{"address"},
		},
		{
			Name:        models.ActionClosePosition,
			Description: "Close or sell a position. For SOL give the mint; for EVM give the token address.",
			Params: []models.ToolParam{
				{Name: "chain", Type: "string", Enum: []string{"sol", "evm"}},
				{Name: "token", Type: "string"},
				{Name: "percent", Type: "number", Description: "share of the holding to sell, 1-100"},
			},
			Required: []string{"chain", "token"},
		},
	}
}

type queryMarketArgs struct {
	Chain string `json:"chain" default:"all"`
}

type queueTradeArgs struct {
	Chain    string  `json:"chain" validate:"required"`
	Token    string  `json:"token" validate:"required"`
	Amount   float64 `json:"amount" validate:"gt=0"`
	Slippage float64 `json:"slippage" default:"1" validate:"gte=0,lte=50"`
	Priority float64 `json:"priority" validate:"gte=0"`
	Live     bool    `json:"live"`
}

type watchAddressArgs struct {
	Address string `json:"address" validate:"required"`
}

type closePositionArgs struct {
	Chain   string  `json:"chain" validate:"required"`
	Token   string  `json:"token" validate:"required"`
	Percent float64 `json:"percent" default:"100" validate:"gt=0,lte=100"`
}
