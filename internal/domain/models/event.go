package models

import "time"

type EventType string

const (
	EventLog     EventType = "log"
	EventSignal  EventType = "signal"
	EventTrade   EventType = "trade"
	EventParams  EventType = "params"
	EventWatch   EventType = "watch"
	EventMarkets EventType = "markets"
	EventIntel   EventType = "intel"
	EventBot     EventType = "bot"
)

// Event is the unit fanned out by the broadcast hub. Payload holds one of the
// *Payload types below, chosen by Type.
type Event struct {
	Type    EventType `json:"type"`
	Time    time.Time `json:"ts"`
	Payload any       `json:"payload"`
}

// Envelope is the wire shape pushed to remote observers.
type Envelope struct {
	Topic   string `json:"topic"`
	Payload Event  `json:"payload"`
}

type TradePayload struct {
	Action string      `json:"action"`
	Intent TradeIntent `json:"intent"`
	Result TradeResult `json:"result"`
}

type WatchPayload struct {
	Address string `json:"address"`
	Added   bool   `json:"added"`
}

type MarketsPayload struct {
	Chain  string            `json:"chain"`
	Data   map[string]any    `json:"data"`
	Errors map[string]string `json:"errors,omitempty"`
}

type IntelPayload struct {
	Source string `json:"source"`
	Items  any    `json:"items"`
}

type BotPayload struct {
	ID    string   `json:"id"`
	Kind  BotKind  `json:"kind"`
	State BotState `json:"state"`
	Error string   `json:"error,omitempty"`
}

func NewEvent(t EventType, payload any) Event {
	return Event{Type: t, Time: time.Now().UTC(), Payload: payload}
}
