package kafka

import (
	"testing"
	"time"
)

func TestBackoffWithJitterBounds(t *testing.T) {
	min, max := 10*time.Millisecond, 80*time.Millisecond
	for attempt := 1; attempt <= 10; attempt++ {
		d := backoffWithJitter(min, max, attempt)
		if d <= 0 || d > max {
			t.Fatalf("attempt %d: backoff %v out of range", attempt, d)
		}
	}
}

func TestEncode(t *testing.T) {
	b, err := encode(map[string]string{"text": "hi"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(b) != `{"text":"hi"}` {
		t.Fatalf("unexpected payload %s", b)
	}
	if b, _ := encode("raw"); string(b) != "raw" {
		t.Fatalf("strings must pass through")
	}
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
	if _, err := NewConsumer(nil); err == nil {
		t.Fatalf("expected error without brokers")
	}
}
