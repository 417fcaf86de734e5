package services

import "fmt"

// Custom errors
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

// ConfigurationError means a required secret or setting is missing. The
// message is safe to show to clients.
type ConfigurationError struct{ Message string }

func (e *ConfigurationError) Error() string { return e.Message }

// UpstreamError is a failed call to the generative-text provider.
// StatusCode is the provider's HTTP status, or 0 when no response arrived.
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Message == "" && e.StatusCode > 0 {
		return fmt.Sprintf("chat provider returned status %d", e.StatusCode)
	}
	return e.Message
}

func (e *UpstreamError) Unwrap() error { return e.Err }
