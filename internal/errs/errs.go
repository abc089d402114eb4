// Package errs defines the typed error taxonomy surfaced to callers.
// Every error carries a stable machine-readable type tag used in the
// HTTP error envelope, plus a human-readable message.
package errs

import (
	"errors"
	"fmt"
)

// Type tags surfaced in the API error envelope. These are part of the
// external contract and must stay stable.
const (
	TypeNotFound         = "NOT_FOUND"
	TypeBusinessNotFound = "BUSINESS_NOT_FOUND"
	TypeProviderDown     = "PROVIDER_UNAVAILABLE"
	TypeLLMDown          = "LLM_UNAVAILABLE"
	TypeLLMQuota         = "LLM_QUOTA_EXCEEDED"
	TypeInvalidInput     = "INVALID_INPUT"
)

// NotFoundError means an identifier could not be resolved: a business by
// a data provider, or a stored report by ID. For the user's own business
// the orchestrator escalates this to BusinessNotFoundError; for
// competitors it is tolerated and the competitor is dropped.
type NotFoundError struct {
	Identifier string
	Provider   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%q could not be found (%s)", e.Identifier, e.Provider)
}

// ProviderUnavailableError means the upstream data source was unreachable
// or timed out after provider-layer retries were exhausted.
type ProviderUnavailableError struct {
	Provider string
	Err      error
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("data provider %s unavailable: %v", e.Provider, e.Err)
}

func (e *ProviderUnavailableError) Unwrap() error { return e.Err }

// LLMUnavailableError means the LLM upstream was unreachable or timed out.
// The orchestrator degrades to a fallback summary rather than failing.
type LLMUnavailableError struct {
	Provider string
	Err      error
}

func (e *LLMUnavailableError) Error() string {
	return fmt.Sprintf("llm provider %s unavailable: %v", e.Provider, e.Err)
}

func (e *LLMUnavailableError) Unwrap() error { return e.Err }

// LLMQuotaExceededError means a rate or budget limit was hit. Not
// retryable for the current request.
type LLMQuotaExceededError struct {
	Provider string
	Err      error
}

func (e *LLMQuotaExceededError) Error() string {
	return fmt.Sprintf("llm provider %s quota exceeded: %v", e.Provider, e.Err)
}

func (e *LLMQuotaExceededError) Unwrap() error { return e.Err }

// InvalidInputError means the request was malformed and was rejected
// before any provider call.
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input for %s: %s", e.Field, e.Message)
}

// BusinessNotFoundError is raised by the orchestrator when the user's own
// business cannot be resolved. The whole comparison aborts.
type BusinessNotFoundError struct {
	Identifier string
}

func (e *BusinessNotFoundError) Error() string {
	return fmt.Sprintf("user business %q could not be found", e.Identifier)
}

// TypeOf maps an error to its stable type tag, or "INTERNAL" when the
// error is outside the taxonomy.
func TypeOf(err error) string {
	switch {
	case IsBusinessNotFound(err):
		return TypeBusinessNotFound
	case IsNotFound(err):
		return TypeNotFound
	case IsProviderUnavailable(err):
		return TypeProviderDown
	case IsLLMUnavailable(err):
		return TypeLLMDown
	case IsLLMQuotaExceeded(err):
		return TypeLLMQuota
	case IsInvalidInput(err):
		return TypeInvalidInput
	default:
		return "INTERNAL"
	}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsProviderUnavailable reports whether err is (or wraps) a ProviderUnavailableError.
func IsProviderUnavailable(err error) bool {
	var target *ProviderUnavailableError
	return errors.As(err, &target)
}

// IsLLMUnavailable reports whether err is (or wraps) an LLMUnavailableError.
func IsLLMUnavailable(err error) bool {
	var target *LLMUnavailableError
	return errors.As(err, &target)
}

// IsLLMQuotaExceeded reports whether err is (or wraps) an LLMQuotaExceededError.
func IsLLMQuotaExceeded(err error) bool {
	var target *LLMQuotaExceededError
	return errors.As(err, &target)
}

// IsInvalidInput reports whether err is (or wraps) an InvalidInputError.
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}

// IsBusinessNotFound reports whether err is (or wraps) a BusinessNotFoundError.
func IsBusinessNotFound(err error) bool {
	var target *BusinessNotFoundError
	return errors.As(err, &target)
}
