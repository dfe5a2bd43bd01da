// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Model client errors.
var (
	// ErrProviderUnavailable indicates no credential is configured for the provider a model routes to.
	ErrProviderUnavailable = errors.New("llm provider unavailable")

	// ErrEmptyResponse indicates the model returned no completion choices.
	ErrEmptyResponse = errors.New("empty response")
)

// Input and data integrity errors.
var (
	// ErrInvalidInput indicates invalid input was provided.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates a file extension the loader cannot read.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrDataIntegrity indicates persisted data is missing required fields.
	ErrDataIntegrity = errors.New("data integrity violation")
)

// Storage errors.
var (
	// ErrArchiveDisabled indicates an archive operation was requested without a configured database.
	ErrArchiveDisabled = errors.New("run archive disabled")

	// ErrNotFound is a generic not found error.
	ErrNotFound = errors.New("not found")
)
