// Package validation provides struct tag validation for engine options
// and configuration, built on the validator library.
//
//	type Options struct {
//	    BatchSize int `json:"batch_size" validate:"min=1"`
//	}
//	err := validation.Validate(opts)
//
// Failures are reported as INVALID_CONFIG engine errors with per-field
// details.
package validation
