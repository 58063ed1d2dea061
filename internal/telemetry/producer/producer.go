// Package producer publishes telemetry events to a message broker.
package producer

import (
	"context"

	"taskhub/backend/internal/telemetry"
)

// Producer writes telemetry events to a broker. Delivery is best effort;
// callers log failures and move on.
type Producer interface {
	// Emit publishes one event. May block up to its internal write
	// timeout, so handlers should call it off the request path.
	Emit(ctx context.Context, event *telemetry.Event) error
	// Close flushes and releases the underlying writer. Idempotent.
	Close() error
}
