package telemetry

import (
	"context"
	"log"
	"time"
)

// emitTimeout bounds a single background emit.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long shutdown waits after the HTTP server
// stops so in-flight background emits can finish. Must be >= emitTimeout.
const ShutdownDrainDuration = emitTimeout

// EmitAsync fires the event on a goroutine and returns immediately. The
// emit runs on a fresh context with emitTimeout, so request cancellation
// never aborts it. Failures are logged, not surfaced. A nil emitter or
// nil event is a no-op.
func EmitAsync(emitter EventEmitter, event *Event) {
	if emitter == nil || event == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := emitter.Emit(ctx, event); err != nil {
			log.Printf("telemetry: async emit failed: %v", err)
		}
	}()
}
