package mapper

import (
	"context"
	stderrors "errors"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/parmap/errors"
	"github.com/kbukum/parmap/iterator"
	"github.com/kbukum/parmap/logger"
	"github.com/kbukum/parmap/observability"
)

// WithLogging wraps a result-batch iterator with per-batch logging.
// Each pull logs the batch ordinal, element count, and duration.
func WithLogging[O any](it iterator.Iterator[[]O], log *logger.Logger, operationID string, parallelism int) iterator.Iterator[[]O] {
	return &loggingIter[O]{
		inner: it,
		log: log.WithComponent("mapper").WithFields(logger.Fields(
			logger.FieldOperationID, operationID,
			logger.FieldParallelism, parallelism,
		)),
	}
}

type loggingIter[O any] struct {
	inner iterator.Iterator[[]O]
	log   *logger.Logger
	batch int
}

func (it *loggingIter[O]) Next(ctx context.Context) ([]O, bool, error) {
	start := time.Now()
	batch, ok, err := it.inner.Next(ctx)
	duration := time.Since(start)

	switch {
	case err != nil:
		it.log.Error("batch failed", logger.Fields(
			logger.FieldBatch, it.batch,
			logger.FieldError, err.Error(),
			logger.FieldDuration, duration.Milliseconds(),
		))
	case ok:
		it.log.Debug("batch done", logger.Fields(
			logger.FieldBatch, it.batch,
			logger.FieldElements, len(batch),
			logger.FieldDuration, duration.Milliseconds(),
		))
		it.batch++
	default:
		it.log.Debug("source exhausted", logger.Fields(
			logger.FieldBatch, it.batch,
		))
	}
	return batch, ok, err
}

func (it *loggingIter[O]) Close() error { return it.inner.Close() }

// WithTracing wraps a result-batch iterator with OpenTelemetry spans. One
// "mapper.chunked_map" span covers the whole operation, opened on the first
// pull and ended on exhaustion, error, or Close; each pull creates a
// "mapper.batch" child span carrying the batch ordinal and element count.
func WithTracing[O any](it iterator.Iterator[[]O], operationID string) iterator.Iterator[[]O] {
	return &tracingIter[O]{inner: it, operationID: operationID}
}

type tracingIter[O any] struct {
	inner       iterator.Iterator[[]O]
	operationID string
	batch       int

	opCtx   context.Context
	opSpan  trace.Span
	opEnded bool
}

func (it *tracingIter[O]) Next(ctx context.Context) ([]O, bool, error) {
	if it.opSpan == nil && !it.opEnded {
		it.opCtx, it.opSpan = observability.StartSpan(ctx, observability.SpanChunkedMap)
		observability.SetSpanAttribute(it.opCtx, observability.AttrOperationID, it.operationID)
	}
	parent := ctx
	if it.opSpan != nil {
		parent = it.opCtx
	}

	bctx, span := observability.StartSpan(parent, observability.SpanBatch)
	defer span.End()

	observability.SetSpanAttribute(bctx, observability.AttrOperationID, it.operationID)
	observability.SetSpanAttribute(bctx, observability.AttrBatch, it.batch)

	batch, ok, err := it.inner.Next(bctx)
	if err != nil {
		observability.SetSpanError(bctx, err)
		observability.SetSpanAttribute(bctx, observability.AttrStatus, "error")
		it.endOperation(err)
		return batch, ok, err
	}
	if ok {
		observability.SetSpanAttribute(bctx, observability.AttrBatchElements, len(batch))
		observability.SetSpanAttribute(bctx, observability.AttrStatus, "ok")
		it.batch++
	} else {
		it.endOperation(nil)
	}
	return batch, ok, err
}

// endOperation closes the operation span exactly once.
func (it *tracingIter[O]) endOperation(err error) {
	if it.opSpan == nil {
		return
	}
	if err != nil {
		observability.SetSpanError(it.opCtx, err)
		observability.SetSpanAttribute(it.opCtx, observability.AttrStatus, "error")
	} else {
		observability.SetSpanAttribute(it.opCtx, observability.AttrStatus, "ok")
	}
	it.opSpan.End()
	it.opSpan = nil
	it.opEnded = true
}

func (it *tracingIter[O]) Close() error {
	it.endOperation(nil)
	return it.inner.Close()
}

// WithMetrics wraps a result-batch iterator with metric recording.
// Records batch counts, durations, element totals, and transform failures.
func WithMetrics[O any](it iterator.Iterator[[]O], metrics *observability.Metrics, operationID string) iterator.Iterator[[]O] {
	return &metricsIter[O]{inner: it, metrics: metrics, operationID: operationID}
}

type metricsIter[O any] struct {
	inner       iterator.Iterator[[]O]
	metrics     *observability.Metrics
	operationID string
	started     bool
	ended       bool
}

func (it *metricsIter[O]) Next(ctx context.Context) ([]O, bool, error) {
	if !it.started {
		it.metrics.RecordOperationStart(ctx)
		it.started = true
	}

	start := time.Now()
	batch, ok, err := it.inner.Next(ctx)
	duration := time.Since(start)

	switch {
	case err != nil:
		it.metrics.RecordBatch(ctx, it.operationID, 0, "error", duration)
		var be *errors.BatchError
		if stderrors.As(err, &be) {
			it.metrics.RecordTransformFailures(ctx, it.operationID, len(be.Elements))
		}
		it.recordEnd(ctx)
	case ok:
		it.metrics.RecordBatch(ctx, it.operationID, len(batch), "ok", duration)
	default:
		it.recordEnd(ctx)
	}
	return batch, ok, err
}

// recordEnd decrements the active-operation count exactly once; redundant
// pulls after exhaustion must not record a spurious start/end pair.
func (it *metricsIter[O]) recordEnd(ctx context.Context) {
	if it.ended {
		return
	}
	it.metrics.RecordOperationEnd(ctx)
	it.ended = true
}

func (it *metricsIter[O]) Close() error { return it.inner.Close() }
