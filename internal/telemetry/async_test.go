package telemetry

import (
	"context"
	"testing"
	"time"
)

type chanEmitter struct {
	got chan *Event
}

func (e *chanEmitter) Emit(_ context.Context, event *Event) error {
	e.got <- event
	return nil
}

func TestEmitAsync(t *testing.T) {
	em := &chanEmitter{got: make(chan *Event, 1)}
	event := NewEvent("u1", "login_success", "auth", nil)

	EmitAsync(em, event)

	select {
	case got := <-em.got:
		if got != event {
			t.Errorf("emitted %+v, want %+v", got, event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("EmitAsync never reached the emitter")
	}
}

func TestEmitAsync_NilSafe(t *testing.T) {
	EmitAsync(nil, NewEvent("u1", "x", "y", nil))
	EmitAsync(&chanEmitter{got: make(chan *Event, 1)}, nil)
}

func TestNewEvent(t *testing.T) {
	before := time.Now().UTC()
	e := NewEvent("u1", "login_success", "auth", map[string]string{"k": "v"})
	if e.UserID != "u1" || e.EventType != "login_success" || e.Source != "auth" {
		t.Errorf("event = %+v", e)
	}
	if e.CreatedAt.Before(before) || e.CreatedAt.After(time.Now().UTC()) {
		t.Errorf("CreatedAt = %v not stamped with now", e.CreatedAt)
	}
}
