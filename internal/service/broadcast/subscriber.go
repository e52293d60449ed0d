package broadcast

import (
	"sync"

	"GhostSniper/internal/domain/models"
)

// ChannelSubscriber buffers events for a single consumer goroutine. A full
// buffer fails the send and closes the subscriber, so the consumer sees the
// Events channel close once it drains.
type ChannelSubscriber struct {
	ch     chan models.Event
	mu     sync.Mutex
	closed bool
}

func NewChannelSubscriber(buffer int) *ChannelSubscriber {
	if buffer <= 0 {
		buffer = 64
	}
	return &ChannelSubscriber{ch: make(chan models.Event, buffer)}
}

func (s *ChannelSubscriber) Send(ev models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSubscriberClosed
	}
	select {
	case s.ch <- ev:
		return nil
	default:
		s.closed = true
		close(s.ch)
		return ErrSubscriberFull
	}
}

// Events is closed by Close.
func (s *ChannelSubscriber) Events() <-chan models.Event { return s.ch }

func (s *ChannelSubscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// FuncSubscriber adapts a function. Used for in-process sinks such as the journal.
type FuncSubscriber func(ev models.Event) error

func (f FuncSubscriber) Send(ev models.Event) error { return f(ev) }
