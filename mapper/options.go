package mapper

import (
	"context"
	"runtime"

	"github.com/kbukum/parmap/config"
	"github.com/kbukum/parmap/logger"
	"github.com/kbukum/parmap/observability"
	"github.com/kbukum/parmap/validation"
)

// Transform is a pure element transformation. It must be safe to invoke
// concurrently and independently on different elements; the engine assumes
// no shared mutable state between invocations.
type Transform[I, O any] func(context.Context, I) (O, error)

// Options configures a mapping operation.
type Options struct {
	// Parallelism is the worker pool size. 0 resolves to the number of
	// available execution units; a negative value -k resolves to all but k
	// (never below 1).
	Parallelism int `json:"parallelism"`
	// BatchSize is the number of elements pulled per iteration step.
	// 0 defaults to the resolved parallelism.
	BatchSize int `json:"batch_size"`
	// Logger receives engine lifecycle and per-batch logs. Nil disables
	// logging.
	Logger *logger.Logger
	// Metrics receives per-batch instrument recordings. Nil disables them.
	Metrics *observability.Metrics
	// Tracing wraps each mapping operation and batch in OpenTelemetry spans.
	Tracing bool
}

// FromConfig builds Options from loaded engine defaults.
func FromConfig(cfg config.EngineConfig) Options {
	return Options{
		Parallelism: cfg.Parallelism,
		BatchSize:   cfg.BatchSize,
	}
}

// resolvedOptions is Options after normalization; both values must be
// positive for the pool to start.
type resolvedOptions struct {
	Parallelism int `json:"parallelism" validate:"min=1"`
	BatchSize   int `json:"batch_size" validate:"min=1"`
}

// ResolveParallelism applies the engine's parallelism semantics: positive
// values pass through, 0 means all available execution units, and -k means
// all but k, floored at 1.
func ResolveParallelism(p int) int {
	if p > 0 {
		return p
	}
	units := runtime.NumCPU()
	if p == 0 {
		return units
	}
	if units+p < 1 {
		return 1
	}
	return units + p
}

// normalize resolves Parallelism and BatchSize and validates the result.
// Fails before any worker is started.
func (o Options) normalize() (resolvedOptions, error) {
	resolved := resolvedOptions{
		Parallelism: ResolveParallelism(o.Parallelism),
		BatchSize:   o.BatchSize,
	}
	if resolved.BatchSize == 0 {
		resolved.BatchSize = resolved.Parallelism
	}
	if err := validation.Validate(resolved); err != nil {
		return resolvedOptions{}, err
	}
	return resolved, nil
}
