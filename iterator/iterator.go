package iterator

import "context"

// Iterator provides pull-based sequential access to a stream of values.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// --- Constructors ---

// FromSlice creates an iterator over a slice of values.
func FromSlice[T any](items []T) Iterator[T] {
	return &sliceIter[T]{items: items}
}

// FromChannel creates an iterator that pulls values from a channel until it
// is closed.
func FromChannel[T any](ch <-chan T) Iterator[T] {
	return &channelIter[T]{ch: ch}
}

// FromFunc creates an iterator from a generator closure. The closure is
// called once per pull and returns (zero, false, nil) when exhausted.
func FromFunc[T any](fn func(ctx context.Context) (T, bool, error)) Iterator[T] {
	return &funcIter[T]{fn: fn}
}

// Range creates an iterator yielding count consecutive ints starting at start.
func Range(start, count int) Iterator[int] {
	return &rangeIter{next: start, remaining: count}
}

// Generate creates a logically unbounded iterator: fn(i) is called with the
// running element index. Bound it with Limit, or consume it through a lazy
// operator that stops pulling.
func Generate[T any](fn func(i int64) T) Iterator[T] {
	var i int64
	return FromFunc(func(_ context.Context) (T, bool, error) {
		val := fn(i)
		i++
		return val, true, nil
	})
}

// Limit wraps an iterator so that at most n values are yielded. Closing the
// limited iterator closes the underlying one.
func Limit[T any](src Iterator[T], n int64) Iterator[T] {
	return &limitIter[T]{source: src, remaining: n}
}

// --- Terminals ---

// Collect pulls all values and returns them as a slice.
func Collect[T any](ctx context.Context, it Iterator[T]) ([]T, error) {
	defer it.Close()
	var out []T
	for {
		val, ok, err := it.Next(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, val)
	}
}

// ForEach pulls all values and calls fn for each.
func ForEach[T any](ctx context.Context, it Iterator[T], fn func(context.Context, T) error) error {
	defer it.Close()
	for {
		val, ok, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(ctx, val); err != nil {
			return err
		}
	}
}

// Drain pulls and discards all values.
func Drain[T any](ctx context.Context, it Iterator[T]) error {
	return ForEach(ctx, it, func(context.Context, T) error { return nil })
}

// --- Iterator implementations ---

type sliceIter[T any] struct {
	items []T
	index int
}

func (it *sliceIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.index >= len(it.items) {
		var zero T
		return zero, false, nil
	}
	val := it.items[it.index]
	it.index++
	return val, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }

type channelIter[T any] struct {
	ch <-chan T
}

func (it *channelIter[T]) Next(ctx context.Context) (T, bool, error) {
	select {
	case val, open := <-it.ch:
		if !open {
			var zero T
			return zero, false, nil
		}
		return val, true, nil
	case <-ctx.Done():
		var zero T
		return zero, false, ctx.Err()
	}
}

func (it *channelIter[T]) Close() error { return nil }

type funcIter[T any] struct {
	fn   func(ctx context.Context) (T, bool, error)
	done bool
}

func (it *funcIter[T]) Next(ctx context.Context) (T, bool, error) {
	if it.done {
		var zero T
		return zero, false, nil
	}
	val, ok, err := it.fn(ctx)
	if err != nil || !ok {
		it.done = true
	}
	return val, ok, err
}

func (it *funcIter[T]) Close() error {
	it.done = true
	return nil
}

type rangeIter struct {
	next      int
	remaining int
}

func (it *rangeIter) Next(_ context.Context) (int, bool, error) {
	if it.remaining <= 0 {
		return 0, false, nil
	}
	val := it.next
	it.next++
	it.remaining--
	return val, true, nil
}

func (it *rangeIter) Close() error { return nil }

type limitIter[T any] struct {
	source    Iterator[T]
	remaining int64
}

func (it *limitIter[T]) Next(ctx context.Context) (T, bool, error) {
	if it.remaining <= 0 {
		var zero T
		return zero, false, nil
	}
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		it.remaining = 0
		return val, ok, err
	}
	it.remaining--
	return val, true, nil
}

func (it *limitIter[T]) Close() error { return it.source.Close() }
