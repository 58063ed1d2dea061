package otel

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMetrics_NilReceiverSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordLogin(ctx, "success")
	m.RecordRefreshRotation(ctx)
	m.RecordRefreshReplay(ctx)
	m.RecordPolicyDenial(ctx, "task")
}

func TestMetrics_RecordCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	m, err := NewMetrics(provider.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	ctx := context.Background()
	m.RecordLogin(ctx, "success")
	m.RecordLogin(ctx, "bad_credentials")
	m.RecordRefreshRotation(ctx)
	m.RecordRefreshReplay(ctx)
	m.RecordPolicyDenial(ctx, "task")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	got := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			sum, ok := metric.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				got[metric.Name] += dp.Value
			}
		}
	}

	want := map[string]int64{
		"taskhub_logins_total":            2,
		"taskhub_refresh_rotations_total": 1,
		"taskhub_refresh_replays_total":   1,
		"taskhub_policy_denials_total":    1,
	}
	for name, value := range want {
		if got[name] != value {
			t.Errorf("%s = %d, want %d", name, got[name], value)
		}
	}
}
