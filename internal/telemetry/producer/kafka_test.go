package producer

import (
	"context"
	"testing"

	"taskhub/backend/internal/telemetry"
)

func TestNewKafkaProducer_DisabledWhenUnconfigured(t *testing.T) {
	p, err := NewKafkaProducer(nil, "topic")
	if err != nil || p != nil {
		t.Errorf("no brokers: got (%v, %v), want (nil, nil)", p, err)
	}
	p, err = NewKafkaProducer([]string{"localhost:9092"}, "")
	if err != nil || p != nil {
		t.Errorf("no topic: got (%v, %v), want (nil, nil)", p, err)
	}
}

func TestKafkaProducer_NilSafe(t *testing.T) {
	var p *KafkaProducer
	if err := p.Emit(context.Background(), &telemetry.Event{EventType: "x"}); err != nil {
		t.Errorf("nil producer Emit: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("nil producer Close: %v", err)
	}
}
