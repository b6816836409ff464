package mapper

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/parmap/errors"
	"github.com/kbukum/parmap/iterator"
	"github.com/kbukum/parmap/logger"
	"github.com/kbukum/parmap/observability"
	"github.com/kbukum/parmap/pool"
)

// ChunkedMap lazily maps src through fn in parallel, one batch at a time.
//
// The returned iterator yields one ordered result batch per pull: up to
// BatchSize elements are pulled from src, dispatched to a worker pool of
// the resolved parallelism, and reassembled into source order. A final
// partial batch is processed and yielded like any other. The sequence is
// forward-only and not restartable.
//
// The worker pool is scoped to this call: it is created here and torn down
// when the source is exhausted, when Next returns an error, or when the
// caller stops consuming and calls Close. Close must be called if the
// iterator is abandoned before exhaustion.
//
// Configuration errors surface immediately, before any worker starts. A
// transform error surfaces on the batch containing the failing element as
// an *errors.BatchError identifying every failed element and carrying the
// results of the elements that succeeded; batches already yielded stay
// valid. A panicking transform is a pool failure and ends the sequence the
// same way.
func ChunkedMap[I, O any](src iterator.Iterator[I], fn Transform[I, O], opts Options) (iterator.Iterator[[]O], error) {
	resolved, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	operationID := uuid.NewString()

	workers, err := pool.New(resolved.Parallelism, pool.WithLogger(log))
	if err != nil {
		return nil, err
	}

	core := &chunkedIter[I, O]{
		source:    src,
		transform: fn,
		workers:   workers,
		batchSize: resolved.BatchSize,
	}

	var out iterator.Iterator[[]O] = core
	if opts.Logger != nil {
		out = WithLogging(out, opts.Logger, operationID, resolved.Parallelism)
	}
	if opts.Tracing {
		out = WithTracing(out, operationID)
	}
	if opts.Metrics != nil {
		out = WithMetrics(out, opts.Metrics, operationID)
	}
	return out, nil
}

// FlatMap maps src through fn in parallel and returns the fully
// materialized, ordered result. It is ChunkedMap with BatchSize equal to
// the resolved parallelism, with every batch concatenated in production
// order. The source is consumed completely before FlatMap returns.
//
// Failure is all-or-nothing: if any batch fails, FlatMap returns a nil
// result and the batch's error.
func FlatMap[I, O any](ctx context.Context, src iterator.Iterator[I], fn Transform[I, O], parallelism int) ([]O, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanFlatMap)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrParallelism, parallelism)

	batches, err := ChunkedMap(src, fn, Options{Parallelism: parallelism})
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}
	defer batches.Close()

	var out []O
	for {
		batch, ok, err := batches.Next(ctx)
		if err != nil {
			observability.SetSpanError(ctx, err)
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, batch...)
	}
}

// chunkedIter is the engine core: pull a batch, dispatch it, reassemble,
// yield. Strictly single-batch-in-flight.
type chunkedIter[I, O any] struct {
	source    iterator.Iterator[I]
	transform Transform[I, O]
	workers   *pool.Pool
	batchSize int

	nextIndex int64 // global index of the next element to pull
	batch     int   // ordinal of the next batch to yield
	done      bool

	closeOnce sync.Once
	closeErr  error
}

func (it *chunkedIter[I, O]) Next(ctx context.Context) ([]O, bool, error) {
	if it.done {
		return nil, false, nil
	}

	// Pull phase: up to batchSize elements, tagged with their global index.
	inputs := make([]I, 0, it.batchSize)
	firstIndex := it.nextIndex
	for len(inputs) < it.batchSize {
		val, ok, err := it.source.Next(ctx)
		if err != nil {
			it.finish()
			return nil, false, errors.SourceFailed(it.nextIndex, err)
		}
		if !ok {
			break
		}
		inputs = append(inputs, val)
		it.nextIndex++
	}

	// Zero elements pulled: clean end of source.
	if len(inputs) == 0 {
		return nil, false, it.end()
	}

	// Dispatch phase: index-addressed writes, barrier inside Dispatch.
	results := make([]O, len(inputs))
	transformErrs := make([]error, len(inputs))
	tasks := make([]pool.Task, len(inputs))
	for i := range inputs {
		tasks[i] = func() {
			results[i], transformErrs[i] = it.transform(ctx, inputs[i])
		}
	}
	if err := it.workers.Dispatch(ctx, tasks); err != nil {
		it.finish()
		return nil, false, err
	}

	// Reassembly phase: results are already in source order; collect any
	// per-element failures.
	var failures []errors.ElementError
	for i, err := range transformErrs {
		if err != nil {
			failures = append(failures, errors.ElementError{
				Index: firstIndex + int64(i),
				Input: inputs[i],
				Err:   err,
			})
		}
	}

	ordinal := it.batch
	it.batch++

	if len(failures) > 0 {
		var succeeded []errors.ElementResult
		for i, err := range transformErrs {
			if err == nil {
				succeeded = append(succeeded, errors.ElementResult{Position: i, Value: results[i]})
			}
		}
		it.finish()
		return nil, false, errors.TransformFailed(ordinal, failures, succeeded)
	}
	return results, true, nil
}

// end terminates the sequence cleanly and tears the pool down. A pool
// failure discovered during teardown still surfaces to the caller.
func (it *chunkedIter[I, O]) end() error {
	it.finish()
	return it.closeErr
}

// finish marks the iterator done and releases the pool. Runs on every exit
// path: exhaustion, failure, and caller abandonment via Close.
func (it *chunkedIter[I, O]) finish() {
	it.done = true
	it.closeOnce.Do(func() {
		it.closeErr = it.workers.Shutdown()
	})
}

func (it *chunkedIter[I, O]) Close() error {
	it.finish()
	return it.closeErr
}
