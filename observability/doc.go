// Package observability provides OpenTelemetry tracing and metrics
// integration for the mapping engine.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("parmap"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "mapper.chunked_map")
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("parmap"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("parmap"))
//	metrics.RecordBatch(ctx, op, 8, "ok", duration)
package observability
