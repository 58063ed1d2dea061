package otel

import (
	"context"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"taskhub/backend/internal/telemetry"
)

// captureProcessor stores emitted records for assertion.
type captureProcessor struct {
	records []sdklog.Record
}

func (p *captureProcessor) OnEmit(_ context.Context, rec *sdklog.Record) error {
	p.records = append(p.records, *rec)
	return nil
}

func (p *captureProcessor) Enabled(context.Context, sdklog.EnabledParameters) bool { return true }

func (p *captureProcessor) Shutdown(context.Context) error   { return nil }
func (p *captureProcessor) ForceFlush(context.Context) error { return nil }

func TestNewEventEmitter_NilProvider_ReturnsNoop(t *testing.T) {
	em := NewEventEmitter(nil)
	if em == nil {
		t.Fatal("NewEventEmitter(nil) returned nil")
	}
	if err := em.Emit(context.Background(), nil); err != nil {
		t.Errorf("noop Emit(ctx, nil): %v", err)
	}
	if err := em.Emit(context.Background(), &telemetry.Event{UserID: "u1"}); err != nil {
		t.Errorf("noop Emit(ctx, event): %v", err)
	}
}

func TestEmit_NilEvent_ReturnsNil(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()
	em := NewEventEmitter(provider)
	if err := em.Emit(context.Background(), nil); err != nil {
		t.Errorf("Emit(ctx, nil): %v", err)
	}
}

func TestEmit_AttributeAndBodyMapping(t *testing.T) {
	cap := &captureProcessor{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(cap))
	defer func() { _ = provider.Shutdown(context.Background()) }()
	em := NewEventEmitter(provider)

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	event := &telemetry.Event{
		UserID:    "u1",
		EventType: "login_success",
		Source:    "auth",
		Metadata:  map[string]string{"key": "value"},
		CreatedAt: created,
	}
	if err := em.Emit(context.Background(), event); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(cap.records) != 1 {
		t.Fatalf("records = %d, want 1", len(cap.records))
	}
	rec := cap.records[0]

	if !rec.Timestamp().Equal(created) {
		t.Errorf("timestamp = %v, want %v", rec.Timestamp(), created)
	}
	if string(rec.Body().AsBytes()) != `{"key":"value"}` {
		t.Errorf("body = %q, want metadata JSON", rec.Body().AsBytes())
	}

	attrs := make(map[string]string)
	rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		attrs[kv.Key] = kv.Value.AsString()
		return true
	})
	want := map[string]string{
		"user_id": "u1", "event_type": "login_success", "source": "auth",
	}
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("attr %s = %q, want %q", k, attrs[k], v)
		}
	}
}
