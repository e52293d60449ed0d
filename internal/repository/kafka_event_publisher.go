package repository

import (
	"context"

	"GhostSniper/internal/domain/models"
	domrepo "GhostSniper/internal/domain/repository"
	pkgkafka "GhostSniper/pkg/kafka"
)

// KafkaEventPublisher writes hub events to a topic, keyed by event type.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

var _ domrepo.EventPublisher = (*KafkaEventPublisher)(nil)

func NewKafkaEventPublisher(producer *pkgkafka.Producer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) PublishEvent(ctx context.Context, ev models.Event) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.Type), models.Envelope{Topic: "agent", Payload: ev})
}

// Close is a no-op: the producer is shared with the log collector and closed by its owner.
func (p *KafkaEventPublisher) Close() error { return nil }
