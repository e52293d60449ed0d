package models

// Action names understood by the command dispatcher.
const (
	ActionQueryMarket   = "queryMarket"
	ActionQueueTrade    = "queueTrade"
	ActionUpdateParams  = "updateParams"
	ActionWatchAddress  = "watchAddress"
	ActionClosePosition = "closePosition"
)

// ToolParam describes one argument of a catalog action.
type ToolParam struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"` // string | number | boolean | integer
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// ToolSpec is one callable action offered to the interpreter.
type ToolSpec struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Params      []ToolParam `json:"params"`
	Required    []string    `json:"required,omitempty"`
}

type Prompt struct {
	System  string
	Text    string
	Catalog []ToolSpec
}

type Call struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// Interpretation is either a plain text reply or a list of calls.
type Interpretation struct {
	Text  string `json:"text,omitempty"`
	Calls []Call `json:"calls,omitempty"`
}

type ActionOutcome struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type DispatchResult struct {
	OK      bool            `json:"ok"`
	Text    string          `json:"text,omitempty"`
	Actions []ActionOutcome `json:"actions,omitempty"`
}
