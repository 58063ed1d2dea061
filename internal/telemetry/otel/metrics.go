package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the meter instruments recorded by the identity and access
// code paths. All record methods are nil-receiver safe so callers can pass
// a nil *Metrics when metrics are disabled.
type Metrics struct {
	logins           metric.Int64Counter
	refreshRotations metric.Int64Counter
	refreshReplays   metric.Int64Counter
	policyDenials    metric.Int64Counter
}

// NewMetrics creates the instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error
	m.logins, err = meter.Int64Counter("taskhub_logins_total",
		metric.WithDescription("Login attempts by outcome."))
	if err != nil {
		return nil, fmt.Errorf("create login counter: %w", err)
	}
	m.refreshRotations, err = meter.Int64Counter("taskhub_refresh_rotations_total",
		metric.WithDescription("Successful refresh token rotations."))
	if err != nil {
		return nil, fmt.Errorf("create rotation counter: %w", err)
	}
	m.refreshReplays, err = meter.Int64Counter("taskhub_refresh_replays_total",
		metric.WithDescription("Refresh attempts with an already-rotated or revoked token."))
	if err != nil {
		return nil, fmt.Errorf("create replay counter: %w", err)
	}
	m.policyDenials, err = meter.Int64Counter("taskhub_policy_denials_total",
		metric.WithDescription("Authorization denials by resource."))
	if err != nil {
		return nil, fmt.Errorf("create denial counter: %w", err)
	}
	return m, nil
}

// RecordLogin records one login attempt. outcome is success, bad_credentials,
// or unverified.
func (m *Metrics) RecordLogin(ctx context.Context, outcome string) {
	if m == nil || m.logins == nil {
		return
	}
	m.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordRefreshRotation records one successful rotation.
func (m *Metrics) RecordRefreshRotation(ctx context.Context) {
	if m == nil || m.refreshRotations == nil {
		return
	}
	m.refreshRotations.Add(ctx, 1)
}

// RecordRefreshReplay records a refresh attempt against a rotated or revoked
// token. A spike here is the primary token-theft signal.
func (m *Metrics) RecordRefreshReplay(ctx context.Context) {
	if m == nil || m.refreshReplays == nil {
		return
	}
	m.refreshReplays.Add(ctx, 1)
}

// RecordPolicyDenial records one authorization denial for the given resource
// kind (team, task, membership).
func (m *Metrics) RecordPolicyDenial(ctx context.Context, resource string) {
	if m == nil || m.policyDenials == nil {
		return
	}
	m.policyDenials.Add(ctx, 1, metric.WithAttributes(attribute.String("resource", resource)))
}
