package shamy

import (
	"errors"
	"fmt"
)

// ErrorCategory represents the category of an Error
type ErrorCategory string

const (
	ErrorCategoryEncoding      ErrorCategory = "encoding"
	ErrorCategoryConfiguration ErrorCategory = "configuration"
	ErrorCategoryThreshold     ErrorCategory = "threshold"
	ErrorCategoryParticipant   ErrorCategory = "participant"
	ErrorCategoryCryptographic ErrorCategory = "cryptographic"
	ErrorCategorySigning       ErrorCategory = "signing"
	ErrorCategoryInternal      ErrorCategory = "internal"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	ErrorSeverityLow      ErrorSeverity = "low"      // Non-critical, operation can continue
	ErrorSeverityMedium   ErrorSeverity = "medium"   // Important, may affect functionality
	ErrorSeverityHigh     ErrorSeverity = "high"     // Critical, operation should stop
	ErrorSeverityCritical ErrorSeverity = "critical" // System-level failure
)

// Error is the structured error returned by every fallible operation in
// this package. Two errors match under errors.Is when their codes match.
type Error struct {
	Category    ErrorCategory          `json:"category"`
	Severity    ErrorSeverity          `json:"severity"`
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	Cause       error                  `json:"-"` // Original error, not serialized
	Context     map[string]interface{} `json:"context,omitempty"`
	Recoverable bool                   `json:"recoverable"`
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func (e *Error) clone() *Error {
	c := *e
	c.Context = make(map[string]interface{}, len(e.Context)+1)
	for k, v := range e.Context {
		c.Context[k] = v
	}
	return &c
}

// WithContext returns a copy of the error with key set in its context
func (e *Error) WithContext(key string, value interface{}) *Error {
	c := e.clone()
	c.Context[key] = value
	return c
}

// WithCause returns a copy of the error wrapping cause
func (e *Error) WithCause(cause error) *Error {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithDetails returns a copy of the error with details set
func (e *Error) WithDetails(details string) *Error {
	c := e.clone()
	c.Details = details
	return c
}

// IsRecoverable returns whether the error is recoverable
func (e *Error) IsRecoverable() bool {
	return e.Recoverable
}

// NewError creates a new structured error
func NewError(category ErrorCategory, severity ErrorSeverity, code, message string) *Error {
	return &Error{
		Category:    category,
		Severity:    severity,
		Code:        code,
		Message:     message,
		Context:     make(map[string]interface{}),
		Recoverable: severity != ErrorSeverityCritical,
	}
}

// Encoding Errors
var (
	ErrInvalidHexEncoding = NewError(
		ErrorCategoryEncoding, ErrorSeverityLow, "INVALID_HEX_ENCODING",
		"malformed hex text")

	ErrInvalidScalarLength = NewError(
		ErrorCategoryEncoding, ErrorSeverityLow, "INVALID_SCALAR_LENGTH",
		"decoded scalar has the wrong length")

	ErrInvalidScalarEncoding = NewError(
		ErrorCategoryEncoding, ErrorSeverityLow, "INVALID_SCALAR_ENCODING",
		"bytes are not a canonical scalar")

	ErrInvalidPointEncoding = NewError(
		ErrorCategoryEncoding, ErrorSeverityLow, "INVALID_POINT_ENCODING",
		"bytes are not a valid point encoding")
)

// Threshold and participant Errors
var (
	ErrInvalidThresholdParameters = NewError(
		ErrorCategoryThreshold, ErrorSeverityHigh, "INVALID_THRESHOLD_PARAMETERS",
		"threshold parameters must satisfy 2 <= t <= n")

	ErrDegenerateParticipantSet = NewError(
		ErrorCategoryParticipant, ErrorSeverityHigh, "DEGENERATE_PARTICIPANT_SET",
		"participant id set yields a zero Lagrange denominator")

	ErrInsufficientSigners = NewError(
		ErrorCategoryParticipant, ErrorSeverityMedium, "INSUFFICIENT_SIGNERS",
		"insufficient signers for threshold signature")

	ErrDuplicateParticipants = NewError(
		ErrorCategoryParticipant, ErrorSeverityMedium, "DUPLICATE_PARTICIPANTS",
		"duplicate participants detected")

	ErrParticipantNotFound = NewError(
		ErrorCategoryParticipant, ErrorSeverityMedium, "PARTICIPANT_NOT_FOUND",
		"participant not found in signing set")
)

// Configuration Errors
var (
	ErrUnsupportedCurve = NewError(
		ErrorCategoryConfiguration, ErrorSeverityHigh, "UNSUPPORTED_CURVE",
		"cryptographic curve is unsupported")
)

// Signing Errors
var (
	ErrNonceReused = NewError(
		ErrorCategorySigning, ErrorSeverityCritical, "NONCE_REUSED",
		"nonce has already produced a partial signature")

	ErrInvalidState = NewError(
		ErrorCategorySigning, ErrorSeverityHigh, "INVALID_STATE",
		"operation not allowed in the current session state")

	ErrInvalidPartialSignature = NewError(
		ErrorCategorySigning, ErrorSeverityHigh, "INVALID_PARTIAL_SIGNATURE",
		"partial signature does not match the signer's nonce and public share")
)

// Cryptographic Errors
var (
	ErrRandomnessGeneration = NewError(
		ErrorCategoryCryptographic, ErrorSeverityCritical, "RANDOMNESS_GENERATION_FAILED",
		"failed to generate secure randomness")

	ErrScalarZero = NewError(
		ErrorCategoryCryptographic, ErrorSeverityHigh, "SCALAR_ZERO",
		"scalar is zero")
)

// IsErrorCategory checks if an error belongs to a specific category
func IsErrorCategory(err error, category ErrorCategory) bool {
	var e *Error
	return errors.As(err, &e) && e.Category == category
}

// IsRecoverableError checks if an error is recoverable
func IsRecoverableError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.IsRecoverable()
	}
	return true
}
