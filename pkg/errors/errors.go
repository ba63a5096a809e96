package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable condition code carried alongside an error.
type Code string

const (
	CodeNotConnected       Code = "NOT_CONNECTED"
	CodeMaxRetriesExceeded Code = "MAX_RETRIES_EXCEEDED"
	CodeValidationFailed   Code = "VALIDATION_FAILED"
	CodeProtocolViolation  Code = "PROTOCOL_VIOLATION"
	CodeCoordinatorError   Code = "COORDINATOR_ERROR"
	CodeRateLimited        Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal           Code = "INTERNAL_ERROR"
)

// Condition is a named failure with a code, suitable for surfacing to the
// caller's error handler without losing the underlying cause.
type Condition struct {
	Code    Code
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (c *Condition) Error() string {
	if c.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", c.Code, c.Message, c.Cause)
	}
	return fmt.Sprintf("%s: %s", c.Code, c.Message)
}

// Unwrap returns the underlying error.
func (c *Condition) Unwrap() error {
	return c.Cause
}

// WithContext adds context to the condition.
func (c *Condition) WithContext(key string, value interface{}) *Condition {
	if c.Context == nil {
		c.Context = make(map[string]interface{})
	}
	c.Context[key] = value
	return c
}

// New creates a condition with a code and message.
func New(code Code, message string) *Condition {
	return &Condition{Code: code, Message: message}
}

// Wrap attaches a condition code to an existing error.
func Wrap(err error, code Code, message string) *Condition {
	return &Condition{Code: code, Message: message, Cause: err}
}

// NotConnected reports a send attempted while the client is not open.
func NotConnected(op string) *Condition {
	return New(CodeNotConnected, fmt.Sprintf("cannot %s: not connected", op))
}

// MaxRetriesExceeded reports an exhausted reconnection policy. cause is the
// sentinel callers match with errors.Is.
func MaxRetriesExceeded(cause error, attempts int) *Condition {
	return Wrap(cause, CodeMaxRetriesExceeded, fmt.Sprintf("gave up after %d reconnection attempts", attempts))
}

// Validation wraps a named validation failure.
func Validation(err error) *Condition {
	return Wrap(err, CodeValidationFailed, err.Error())
}

// Coordinator reports an error frame received from the session coordinator.
func Coordinator(message string) *Condition {
	return New(CodeCoordinatorError, message)
}

// CodeOf extracts the condition code from an error chain, or CodeInternal.
func CodeOf(err error) Code {
	var cond *Condition
	if errors.As(err, &cond) {
		return cond.Code
	}
	return CodeInternal
}

// As extracts a Condition from an error chain.
func As(err error) (*Condition, bool) {
	var cond *Condition
	ok := errors.As(err, &cond)
	return cond, ok
}
