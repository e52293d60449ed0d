package usecase

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"GhostSniper/internal/domain/models"
)

type mockLiveAdapter struct{ mock.Mock }

func (m *mockLiveAdapter) Submit(ctx context.Context, in models.TradeIntent) (models.SubmitResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(models.SubmitResult), args.Error(1)
}

type mockInterpreter struct{ mock.Mock }

func (m *mockInterpreter) Interpret(ctx context.Context, p models.Prompt) (models.Interpretation, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(models.Interpretation), args.Error(1)
}

func (m *mockInterpreter) Model() string { return "mock" }

// recordingBus keeps every published event.
type recordingBus struct {
	mu     sync.Mutex
	events []models.Event
}

func (b *recordingBus) Publish(ev models.Event) {
	b.mu.Lock()
	b.events = append(b.events, ev)
	b.mu.Unlock()
}

func (b *recordingBus) All() []models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Event(nil), b.events...)
}

func (b *recordingBus) OfType(t models.EventType) []models.Event {
	var out []models.Event
	for _, ev := range b.All() {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func (b *recordingBus) Logs(level models.LogLevel) []models.LogEntry {
	var out []models.LogEntry
	for _, ev := range b.OfType(models.EventLog) {
		if e, ok := ev.Payload.(models.LogEntry); ok && e.Level == level {
			out = append(out, e)
		}
	}
	return out
}
