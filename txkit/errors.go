package txkit

import "fmt"

// ValidationError indicates a malformed prepare request (e.g. an empty
// instruction sequence or an out-of-range compute budget value).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + e.Reason
}

// ConfigurationError indicates the request could not be resolved into a
// complete transaction, typically because no fee payer or authority was
// available.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// CancelledError indicates the caller's context was cancelled at one of
// the pipeline's checkpoints. It wraps the underlying context error so
// errors.Is(err, context.Canceled) works.
type CancelledError struct {
	Err error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("operation cancelled: %v", e.Err)
}

func (e *CancelledError) Unwrap() error {
	return e.Err
}
