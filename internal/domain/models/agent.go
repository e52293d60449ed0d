package models

import "time"

type LogLevel string

const (
	LevelUser      LogLevel = "user"
	LevelAssistant LogLevel = "assistant"
	LevelInfo      LogLevel = "info"
	LevelOK        LogLevel = "ok"
	LevelWarn      LogLevel = "warn"
	LevelError     LogLevel = "error"
	LevelDebug     LogLevel = "debug"
)

type LogEntry struct {
	Time    time.Time      `json:"t"`
	Level   LogLevel       `json:"level"`
	Message string         `json:"msg"`
	Source  string         `json:"source,omitempty"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// AgentParams are the operator-tunable knobs shared by every component.
type AgentParams struct {
	BudgetUSD         float64  `json:"budget_usd"`
	RiskTier          string   `json:"risk"`
	LiveEnabled       bool     `json:"live"`
	ConfirmBeforeLive bool     `json:"confirm_before_live"`
	MaxConcurrentBots int      `json:"max_concurrent"`
	WatchedAddresses  []string `json:"watch_wallets"`
}

// LiveAllowed reports whether a trade that wants live execution may go live.
func (p AgentParams) LiveAllowed(ceiling bool) bool {
	return ceiling && !p.ConfirmBeforeLive
}

// Clone returns a copy that does not share the watch list.
func (p AgentParams) Clone() AgentParams {
	c := p
	c.WatchedAddresses = append([]string(nil), p.WatchedAddresses...)
	return c
}

// ParamsPatch carries the fields an update wants to change.
type ParamsPatch struct {
	BudgetUSD         *float64 `json:"budget,omitempty"`
	RiskTier          *string  `json:"riskTier,omitempty" validate:"omitempty,oneof=low medium high"`
	Live              *bool    `json:"live,omitempty"`
	ConfirmBeforeLive *bool    `json:"confirmBeforeLive,omitempty"`
	MaxConcurrentBots *int     `json:"maxConcurrentBots,omitempty" validate:"omitempty,gte=0"`
}

type AgentStatus struct {
	Running bool          `json:"running"`
	Params  AgentParams   `json:"params"`
	LiveEnv bool          `json:"liveEnv"`
	Model   string        `json:"model"`
	Memory  []LogEntry    `json:"mem"`
	Engine  *EngineStatus `json:"engine,omitempty"`
	Bots    []BotSummary  `json:"bots,omitempty"`
}

type EngineStatus struct {
	Connected   bool  `json:"connected"`
	Sessions    int64 `json:"sessions"`
	Signals     int64 `json:"signals"`
	Duplicates  int64 `json:"duplicates"`
	ParseErrors int64 `json:"parse_errors"`
}
