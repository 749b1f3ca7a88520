package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrMissingFile indicates that an expected input file does not exist.
// Callers treat it as "no rows for this period" rather than a failure.
var ErrMissingFile = errors.New("input file not found")

// LedgerError is a structured rejection returned by the ledger service.
type LedgerError struct {
	StatusCode int
	Message    string
	Errors     []string
}

func (e *LedgerError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("ledger error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ledger error (%d): %s [%s]", e.StatusCode, e.Message, strings.Join(e.Errors, "; "))
}

// AsLedgerError reports whether err carries a *LedgerError and returns it.
func AsLedgerError(err error) (*LedgerError, bool) {
	var lerr *LedgerError
	if errors.As(err, &lerr) {
		return lerr, true
	}
	return nil, false
}

// SubmissionError wraps a ledger rejection of one transaction batch, together
// with the totals that were already committed before the failing batch.
type SubmissionError struct {
	Batch    int
	Inserted int
	Skipped  int
	Err      error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("batch %d rejected after %d inserted, %d skipped: %v", e.Batch, e.Inserted, e.Skipped, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
