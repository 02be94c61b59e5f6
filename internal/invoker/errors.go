package invoker

import "errors"

// Failure classes for a single attempt. All of them are retried and,
// on exhaustion, masked by the task's default value; callers inspect
// an Outcome's LastError with errors-style substring checks only for
// diagnostics, never for control flow.
var (
	// ErrProviderFailure wraps an error (or recovered panic) from the
	// underlying provider call.
	ErrProviderFailure = errors.New("provider failure")

	// ErrOutputShape marks a raw payload that could not be decoded
	// into structured data.
	ErrOutputShape = errors.New("malformed output payload")

	// ErrSchemaValidation marks a decoded payload that failed the
	// task's output contract.
	ErrSchemaValidation = errors.New("schema validation failed")
)
