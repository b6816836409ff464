// Package pool provides the fixed-size worker pool the mapping engine
// dispatches batches to.
//
// A pool owns a fixed set of worker goroutines fed from a shared task
// channel. Its lifecycle is Created -> Running -> Draining -> Terminated:
// it accepts one batch at a time via Dispatch (which blocks until every
// task in the batch has completed), stops accepting work once draining,
// and is not reusable after Shutdown.
//
//	p, err := pool.New(8)
//	if err != nil { ... }
//	defer p.Shutdown()
//	err = p.Dispatch(ctx, tasks)
//
// A panicking task is a pool failure: it is recovered, recorded, and fatal
// for the pool. The pool never retries work.
package pool
