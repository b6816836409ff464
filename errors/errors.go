package errors

import (
	stderrors "errors"
	"fmt"
)

// MapError is the unified engine error type.
type MapError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried by the caller.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *MapError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *MapError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *MapError) WithCause(cause error) *MapError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *MapError) WithDetail(key string, value any) *MapError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new MapError with automatic retryable detection.
func New(code ErrorCode, message string) *MapError {
	return &MapError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// CodeOf returns the error code carried by err, or "" if err is not an
// engine error.
func CodeOf(err error) ErrorCode {
	var me *MapError
	if stderrors.As(err, &me) {
		return me.Code
	}
	var be *BatchError
	if stderrors.As(err, &be) {
		return be.Code
	}
	return ""
}

// --- Common Error Constructors ---

// InvalidConfig creates a new MapError for an invalid configuration field.
func InvalidConfig(field, reason string) *MapError {
	return &MapError{
		Code: ErrCodeInvalidConfig, Message: fmt.Sprintf("invalid configuration: %s", reason),
		Retryable: false,
		Details:   map[string]any{"field": field},
	}
}

// SourceFailed creates a new MapError for a source iterator failure.
func SourceFailed(index int64, cause error) *MapError {
	return &MapError{
		Code: ErrCodeSourceFailed, Message: fmt.Sprintf("source failed at element %d", index),
		Retryable: false,
		Details:   map[string]any{"index": index},
		Cause:     cause,
	}
}

// PoolFailure creates a new MapError for a crashed worker execution context.
func PoolFailure(cause error) *MapError {
	return &MapError{
		Code: ErrCodePoolFailure, Message: "worker execution context crashed",
		Retryable: false, Cause: cause,
	}
}

// PoolTerminated creates a new MapError for work submitted to a pool that no
// longer accepts batches.
func PoolTerminated(state string) *MapError {
	return &MapError{
		Code: ErrCodePoolTerminated, Message: "pool no longer accepts work",
		Retryable: false,
		Details:   map[string]any{"state": state},
	}
}

// --- Batch-level transform failures ---

// ElementError records a single transform failure inside a batch.
type ElementError struct {
	// Index is the element's zero-based position in the overall source order.
	Index int64 `json:"index"`
	// Input is the source element the transform failed on.
	Input any `json:"input"`
	// Err is the error the transform returned.
	Err error `json:"-"`
}

// Error returns the string representation of the element failure.
func (e ElementError) Error() string {
	return fmt.Sprintf("element %d (input %v): %v", e.Index, e.Input, e.Err)
}

// Unwrap returns the transform's error.
func (e ElementError) Unwrap() error { return e.Err }

// ElementResult carries the transformed value of an element that succeeded
// inside a failed batch.
type ElementResult struct {
	// Position is the element's intra-batch position.
	Position int `json:"position"`
	// Value is the transformed result.
	Value any `json:"value"`
}

// BatchError reports a batch whose transform failed for one or more elements.
// Elements that succeeded before the batch was reported are listed in
// Succeeded with their transformed values, so callers can recover them even
// though the batch as a whole is withheld from the ordered output.
type BatchError struct {
	// Code is ErrCodeTransformFailed.
	Code ErrorCode `json:"code"`
	// Batch is the zero-based ordinal of the failed batch.
	Batch int `json:"batch"`
	// Elements lists every element the transform failed on.
	Elements []ElementError `json:"elements"`
	// Succeeded lists elements that transformed cleanly, by intra-batch
	// position, with their results.
	Succeeded []ElementResult `json:"succeeded,omitempty"`
}

// Error returns the string representation of the batch failure.
func (e *BatchError) Error() string {
	if len(e.Elements) == 1 {
		return fmt.Sprintf("%s: batch %d: %s", e.Code, e.Batch, e.Elements[0].Error())
	}
	return fmt.Sprintf("%s: batch %d: %d elements failed (first: %s)",
		e.Code, e.Batch, len(e.Elements), e.Elements[0].Error())
}

// Unwrap exposes the element errors to errors.Is/As.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Elements))
	for i, el := range e.Elements {
		errs[i] = el
	}
	return errs
}

// TransformFailed creates a BatchError for the given batch ordinal.
// Elements must be ordered by index and non-empty.
func TransformFailed(batch int, elements []ElementError, succeeded []ElementResult) *BatchError {
	return &BatchError{
		Code:      ErrCodeTransformFailed,
		Batch:     batch,
		Elements:  elements,
		Succeeded: succeeded,
	}
}
