// Package errors provides unified error handling for the parmap engine.
// It implements structured error types with machine-readable error codes,
// per-element failure records for batch transforms, and retryable detection.
package errors
