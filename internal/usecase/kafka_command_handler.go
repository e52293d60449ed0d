package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"GhostSniper/internal/domain/models"
	drepo "GhostSniper/internal/domain/repository"
	"GhostSniper/pkg/logger"
)

// Prompter runs a natural-language command.
type Prompter interface {
	Dispatch(ctx context.Context, text, source string) (*models.DispatchResult, error)
}

// KafkaCommandHandler feeds commands from a Kafka topic into the dispatcher.
type KafkaCommandHandler struct {
	topic      string
	dispatcher Prompter
	metrics    drepo.Metrics
	log        *logger.Logger
}

func NewKafkaCommandHandler(topic string, dispatcher Prompter, metrics drepo.Metrics, log *logger.Logger) *KafkaCommandHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &KafkaCommandHandler{topic: topic, dispatcher: dispatcher, metrics: metricsOrNop(metrics), log: log.Named("kafka-commands")}
}

func (h *KafkaCommandHandler) Topic() string { return h.topic }

// message schema: {text, source}
func (h *KafkaCommandHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Text   string `json:"text"`
		Source string `json:"source"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("command_unmarshal")
		return fmt.Errorf("decode command: %w", err)
	}
	if strings.TrimSpace(m.Text) == "" {
		h.metrics.RecordError("command_empty")
		return nil
	}
	if m.Source == "" {
		m.Source = "kafka"
	}

	start := time.Now()
	_, err := h.dispatcher.Dispatch(ctx, m.Text, m.Source)
	h.metrics.RecordLatency("kafka_command_seconds", time.Since(start).Seconds())
	if err != nil {
		// Already reported as a log event; commands are never replayed.
		h.metrics.RecordError("command_dispatch")
		h.log.Warn("command failed", logger.String("source", m.Source), logger.Error(err))
	}
	return nil
}
