package registry

import (
	"context"
	"errors"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	return sums
}

func TestMetricsSink(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	metrics, err := NewMetrics(provider.Meter("registry-test"))
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	r := New(WithSink(metrics))
	metrics.ObserveActive(r)
	ctx := context.Background()

	mustAdmit(t, r, desc("a", 0, 1))
	mustAdmit(t, r, desc("a", 5, 2))
	mustAdmit(t, r, desc("b", 0, 3))
	_ = r.Withdraw(ctx, 3)
	metrics.RecordRejection(ctx, "static", "MISSING_FIELD")

	sums := collectSums(t, reader)
	want := map[string]int64{
		"inventory.elections":  3,
		"inventory.demotions":  2,
		"inventory.rejections": 1,
		"inventory.active":     1,
	}
	for name, v := range want {
		if sums[name] != v {
			t.Errorf("expected %s = %d, got %d", name, v, sums[name])
		}
	}
}

func TestMetricsSink_ActiveFollowsTeardown(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	metrics, err := NewMetrics(provider.Meter("registry-test"))
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	r := New(WithSink(metrics))
	metrics.ObserveActive(r)

	mustAdmit(t, r, desc("a", 0, 1))
	mustAdmit(t, r, desc("b", 0, 2))
	if got := collectSums(t, reader)["inventory.active"]; got != 2 {
		t.Fatalf("expected 2 active before teardown, got %d", got)
	}

	r.Teardown()
	if got := collectSums(t, reader)["inventory.active"]; got != 0 {
		t.Errorf("expected 0 active after teardown, got %d", got)
	}

	mustAdmit(t, r, desc("c", 0, 3))
	if got := collectSums(t, reader)["inventory.active"]; got != 1 {
		t.Errorf("expected 1 active after reuse, got %d", got)
	}
}

func TestSinks_FanOutJoinsErrors(t *testing.T) {
	first := &recorder{failElected: context.Canceled}
	second := &recorder{}
	sinks := Sinks{first, second, SinkFuncs{}, NopSink{}}

	err := sinks.OnElected(context.Background(), desc("x", 0, 1))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected joined canceled error, got %v", err)
	}
	if len(second.take()) != 1 {
		t.Error("expected the second sink to run after the first failed")
	}
	if err := sinks.OnDemoted(context.Background(), desc("x", 0, 1)); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestComponent(t *testing.T) {
	r, rec := newTestRegistry()
	c := NewComponent(r)
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	mustAdmit(t, r, desc("a", 0, 1))
	mustAdmit(t, r, desc("a", -1, 2))
	rec.take()

	h := c.Health(ctx)
	if h.Details["active"] != 1 || h.Details["candidates"] != 2 || h.Details["names"] != 1 {
		t.Errorf("unexpected health details %v", h.Details)
	}

	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("expected registry to be torn down, got %d candidates", r.Len())
	}
	assertEvents(t, rec.take())
}
