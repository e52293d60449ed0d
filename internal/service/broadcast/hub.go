package broadcast

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"GhostSniper/internal/domain/models"
	drepo "GhostSniper/internal/domain/repository"
	"GhostSniper/pkg/logger"
)

var (
	ErrSubscriberClosed = errors.New("subscriber closed")
	ErrSubscriberFull   = errors.New("subscriber buffer full")
)

// Subscriber receives hub events. Send must not block; a non-nil error marks the
// subscriber as gone and the hub drops it.
type Subscriber interface {
	Send(ev models.Event) error
}

type Handle string

type entry struct {
	handle Handle
	sub    Subscriber
}

// Hub fans events out to every registered subscriber.
type Hub struct {
	mu      sync.Mutex
	subs    []entry
	log     *logger.Logger
	metrics drepo.Metrics
}

func NewHub(log *logger.Logger, metrics drepo.Metrics) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{log: log.Named("hub"), metrics: metrics}
}

func (h *Hub) Subscribe(s Subscriber) Handle {
	hd := Handle(uuid.NewString())
	h.mu.Lock()
	h.subs = append(h.subs, entry{handle: hd, sub: s})
	n := len(h.subs)
	h.mu.Unlock()
	h.recordSubscribers(n)
	return hd
}

// Unsubscribe is a no-op for unknown handles.
func (h *Hub) Unsubscribe(hd Handle) {
	h.mu.Lock()
	for i, e := range h.subs {
		if e.handle == hd {
			h.subs = append(h.subs[:i], h.subs[i+1:]...)
			break
		}
	}
	n := len(h.subs)
	h.mu.Unlock()
	h.recordSubscribers(n)
}

// Publish delivers ev to all subscribers in registration order. Holding the
// lock for the whole pass keeps each subscriber's stream in publish order.
func (h *Hub) Publish(ev models.Event) {
	h.mu.Lock()
	kept := h.subs[:0]
	pruned := 0
	for _, e := range h.subs {
		if err := e.sub.Send(ev); err != nil {
			pruned++
			h.log.Debug("subscriber pruned", logger.String("handle", string(e.handle)), logger.Error(err))
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(h.subs); i++ {
		h.subs[i] = entry{}
	}
	h.subs = kept
	n := len(h.subs)
	h.mu.Unlock()

	if pruned > 0 {
		h.recordSubscribers(n)
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) recordSubscribers(n int) {
	if h.metrics != nil {
		h.metrics.RecordSubscribers(n)
	}
}
