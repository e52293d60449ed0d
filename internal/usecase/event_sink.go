package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"GhostSniper/internal/domain/models"
	drepo "GhostSniper/internal/domain/repository"
	"GhostSniper/pkg/logger"
)

var ErrSinkClosed = errors.New("event sink closed")

// EventSink is a hub subscriber that forwards events to the external bus and
// journals signals and trades. Send never blocks the hub: when the buffer is
// full the event is dropped and counted.
type EventSink struct {
	publisher drepo.EventPublisher
	journal   drepo.Journal
	metrics   drepo.Metrics
	log       *logger.Logger
	timeout   time.Duration

	ch     chan models.Event
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewEventSink accepts nil publisher or journal; the missing leg is skipped.
func NewEventSink(publisher drepo.EventPublisher, journal drepo.Journal, buffer int, metrics drepo.Metrics, log *logger.Logger) *EventSink {
	if buffer <= 0 {
		buffer = 256
	}
	if log == nil {
		log = logger.Nop()
	}
	return &EventSink{
		publisher: publisher,
		journal:   journal,
		metrics:   metricsOrNop(metrics),
		log:       log.Named("event-sink"),
		timeout:   5 * time.Second,
		ch:        make(chan models.Event, buffer),
	}
}

// Enabled reports whether the sink has anywhere to write.
func (s *EventSink) Enabled() bool { return s.publisher != nil || s.journal != nil }

func (s *EventSink) Send(ev models.Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrSinkClosed
	}
	select {
	case s.ch <- ev:
	default:
		s.metrics.RecordError("sink_dropped")
	}
	return nil
}

func (s *EventSink) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for ev := range s.ch {
			s.write(ev)
		}
	}()
}

// Stop drains buffered events and closes the downstream writers.
func (s *EventSink) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()
	s.wg.Wait()

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			s.log.Warn("close publisher", logger.Error(err))
		}
	}
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.log.Warn("close journal", logger.Error(err))
		}
	}
}

func (s *EventSink) write(ev models.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if s.publisher != nil {
		if err := s.publisher.PublishEvent(ctx, ev); err != nil {
			s.metrics.RecordError("sink_publish")
			s.log.Warn("publish event", logger.String("type", string(ev.Type)), logger.Error(err))
		}
	}
	if s.journal == nil {
		return
	}

	var err error
	switch p := ev.Payload.(type) {
	case models.Signal:
		err = s.journal.StoreSignal(ctx, p)
	case models.TradePayload:
		err = s.journal.StoreTrade(ctx, p)
	}
	if err != nil {
		s.metrics.RecordError("sink_journal")
		s.log.Warn("journal event", logger.String("type", string(ev.Type)), logger.Error(err))
	}
}
