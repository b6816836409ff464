package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("parmap-test")

	if cfg.ServiceName != "parmap-test" {
		t.Errorf("expected ServiceName 'parmap-test', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if !cfg.Insecure {
		t.Error("expected Insecure to be true")
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("parmap-test")

	if cfg.ServiceName != "parmap-test" {
		t.Errorf("expected ServiceName 'parmap-test', got %s", cfg.ServiceName)
	}
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
}

func TestNewMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := NewMetrics(meter)
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	if metrics == nil {
		t.Fatal("expected non-nil metrics")
	}

	ctx := context.Background()
	metrics.RecordOperationStart(ctx)
	metrics.RecordBatch(ctx, "op-1", 8, "ok", 10*time.Millisecond)
	metrics.RecordTransformFailures(ctx, "op-1", 2)
	metrics.RecordOperationEnd(ctx)
}

func TestStartSpan_RecordsAttributes(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer(defaultTracerName).Start(context.Background(), SpanBatch)
	SetSpanAttribute(ctx, AttrBatch, 3)
	SetSpanAttribute(ctx, AttrBatchElements, 8)
	SetSpanError(ctx, fmt.Errorf("boom"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	got := spans[0]
	if got.Name != SpanBatch {
		t.Errorf("expected span name %q, got %q", SpanBatch, got.Name)
	}
	if len(got.Events) == 0 {
		t.Error("expected recorded error event")
	}
	found := false
	for _, attr := range got.Attributes {
		if string(attr.Key) == AttrBatch && attr.Value.AsInt64() == 3 {
			found = true
		}
	}
	if !found {
		t.Error("expected batch.index attribute on span")
	}
}

func TestSetSpanAttribute_NoSpanIsNoop(t *testing.T) {
	// Must not panic without a recording span in context.
	SetSpanAttribute(context.Background(), AttrBatch, 1)
	SetSpanError(context.Background(), fmt.Errorf("ignored"))
}
