package orchestrator

import (
	"fmt"

	"github.com/snakeguard/snakeguard/internal/domain"
)

// ErrorKind classifies a submission failure by rejection reason, so the API
// layer can pick an HTTP status without re-deriving the reason from the
// underlying error.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindAuthFailure ErrorKind = "auth_failure"
	KindRateLimited ErrorKind = "rate_limited"
	KindCheatDetected ErrorKind = "cheat_detected"
	KindInternal ErrorKind = "internal"
)

// SubmissionError wraps a rejection with the kind the API layer needs plus
// the underlying cause, without leaking replay diagnostics to the client.
type SubmissionError struct {
	Kind ErrorKind
	CheatKind domain.CheatKind
	Reason string
	Err error
}

func (e *SubmissionError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

func validationError(err error) *SubmissionError {
	return &SubmissionError{Kind: KindValidation, Err: err, Reason: err.Error()}
}

func authError(err error) *SubmissionError {
	return &SubmissionError{Kind: KindAuthFailure, Err: err, Reason: err.Error()}
}

func rateLimitedError() *SubmissionError {
	return &SubmissionError{Kind: KindRateLimited, Err: domain.ErrRateLimited, Reason: domain.ErrRateLimited.Error()}
}

func cheatError(kind domain.CheatKind, reason string) *SubmissionError {
	return &SubmissionError{Kind: KindCheatDetected, CheatKind: kind, Reason: reason}
}

func internalError(op string, err error) *SubmissionError {
	return &SubmissionError{Kind: KindInternal, Err: err, Reason: fmt.Sprintf("%s: %v", op, err)}
}
