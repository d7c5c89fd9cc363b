package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for the recoverable failure modes. Every error in
// this system is terminal for the current attempt only; callers may
// always resubmit.
var (
	// ErrDuplicateUser is returned by signup when the email is taken.
	ErrDuplicateUser = errors.New("an account with this email may already exist")

	// ErrConsentNotGiven blocks any analysis before the per-submission
	// consent flag is recorded.
	ErrConsentNotGiven = errors.New("consent to the terms is required before analysis")

	// ErrInvalidCredentials is returned on failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrReportNotFound is returned when no report matches the
	// (userID, date) composite key.
	ErrReportNotFound = errors.New("report not found")

	// ErrUserNotFound is returned by user lookups.
	ErrUserNotFound = errors.New("user not found")

	// ErrSubmissionInFlight rejects a submission while a previous one
	// on the same pipeline has not resolved.
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
)

// ValidationError reports rejected input. Recoverable; the state
// machine does not advance past validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// SchemaViolationError reports a model response that does not match
// the AnalysisResult contract. Surfaced as a typed error, never
// silently defaulted.
type SchemaViolationError struct {
	Detail string
	Raw    string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("analysis response violates output contract: %s", e.Detail)
}

// AnalysisRequestError wraps a transport or provider failure from the
// text-generation capability. The user-visible message is generic; the
// cause stays attached for logs.
type AnalysisRequestError struct {
	Err error
}

func (e *AnalysisRequestError) Error() string {
	return "an unexpected error occurred, please try again"
}

func (e *AnalysisRequestError) Unwrap() error { return e.Err }
