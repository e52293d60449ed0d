package repository

import (
	"context"

	"GhostSniper/internal/domain/models"
)

// PushFeed is one persistent market-data subscription.
type PushFeed interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan models.RawItem, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// FeedAdapter is a pull-based source polled by bots.
type FeedAdapter interface {
	PollOnce(ctx context.Context) ([]models.RawItem, error)
}

// MarketSource contributes one named section to a market snapshot.
type MarketSource interface {
	Name() string
	Fetch(ctx context.Context, chain string) (any, error)
}

// LiveAdapter submits a non-paper intent for one chain.
type LiveAdapter interface {
	Submit(ctx context.Context, intent models.TradeIntent) (models.SubmitResult, error)
}

// Interpreter turns free text into either a reply or structured calls.
type Interpreter interface {
	Interpret(ctx context.Context, p models.Prompt) (models.Interpretation, error)
	Model() string
}

// EventPublisher forwards hub events to an external bus.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev models.Event) error
	Close() error
}

// Journal is a write-only analytics store for signals and trades.
type Journal interface {
	Init(ctx context.Context) error
	StoreSignal(ctx context.Context, s models.Signal) error
	StoreTrade(ctx context.Context, p models.TradePayload) error
	Health(ctx context.Context) error
	Close() error
}

type Metrics interface {
	RecordSignal(source string, score int)
	RecordDuplicate(source string)
	RecordTrade(mode, result string)
	RecordBotState(id string, state models.BotState)
	RecordSubscribers(n int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
