package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Configuration errors
const (
	// ErrCodeInvalidConfig indicates parallelism or batch size resolved to an
	// unusable value, or an option struct failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Mapping errors
const (
	// ErrCodeSourceFailed indicates the source iterator returned an error
	// while elements were being pulled.
	ErrCodeSourceFailed ErrorCode = "SOURCE_FAILED"
	// ErrCodeTransformFailed indicates the transform returned an error for
	// one or more elements of a batch.
	ErrCodeTransformFailed ErrorCode = "TRANSFORM_FAILED"
)

// Pool errors
const (
	// ErrCodePoolFailure indicates a worker execution context crashed outside
	// of a normal transform-level error (e.g. a panicking transform).
	ErrCodePoolFailure ErrorCode = "POOL_FAILURE"
	// ErrCodePoolTerminated indicates work was submitted to a pool that is
	// draining or already terminated.
	ErrCodePoolTerminated ErrorCode = "POOL_TERMINATED"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeInvalidConfig:   false,
	ErrCodeSourceFailed:    false,
	ErrCodeTransformFailed: false,
	ErrCodePoolFailure:     false,
	ErrCodePoolTerminated:  false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
// The engine never retries on its own; this only advises callers.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
