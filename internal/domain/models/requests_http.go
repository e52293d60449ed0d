package models

// Requests for the agent HTTP endpoints. Defined in domain for consistency and reuse.

type PromptRequest struct {
	Text   string `json:"text" validate:"required,max=2000"`
	Source string `json:"source" default:"web" validate:"max=64"`
}

type StartBotRequest struct {
	ID      string     `param:"id" validate:"required,max=64"`
	Kind    BotKind    `json:"kind" validate:"required,oneof=dexscreener pumpfun"`
	Options BotOptions `json:"options"`
}

type BotIDRequest struct {
	ID string `param:"id" validate:"required,max=64"`
}

type TradeRequest struct {
	Side        Side    `json:"side" default:"buy" validate:"oneof=buy sell"`
	Chain       string  `json:"chain" default:"sol" validate:"chain"`
	Token       string  `json:"token" validate:"required"`
	Amount      float64 `json:"amount" validate:"gte=0"`
	Percent     float64 `json:"percent" validate:"gte=0,lte=100"`
	Slippage    float64 `json:"slippage" default:"1" validate:"gte=0,lte=50"`
	PriorityFee float64 `json:"priority" validate:"gte=0"`
	Live        bool    `json:"live"`
}

type QuoteRequest struct {
	InputMint   string `query:"inputMint" validate:"required"`
	OutputMint  string `query:"outputMint" validate:"required"`
	Amount      string `query:"amount" validate:"required,numeric"`
	SlippageBps int    `query:"slippageBps" default:"50" validate:"gte=0,lte=5000"`
	DirectOnly  bool   `query:"onlyDirectRoutes"`
}
