// Package mapper implements bounded-memory, order-preserving parallel
// mapping over pull-based sources.
//
// ChunkedMap pulls one batch of elements at a time from a source, runs the
// transform on a fixed-size worker pool, reassembles results into source
// order, and yields them as a lazy sequence of batches. At most one batch
// is in flight, so peak memory is proportional to the batch size, not the
// source size. FlatMap drives ChunkedMap to exhaustion and concatenates
// the batches into one ordered slice.
//
//	double := func(_ context.Context, n int) (int, error) { return n * 2, nil }
//	out, err := mapper.FlatMap(ctx, iterator.Range(0, 1000), double, 8)
//
// Order is always preserved: output[i] is the transform of input[i]
// regardless of which worker finished first. The transform must be safe to
// call concurrently on different elements; the engine assumes invocations
// are independent and gives no ordering guarantees for cross-element side
// effects.
package mapper
