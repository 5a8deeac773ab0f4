// Package session implements the workflow session engine: the stack-based
// state machine that guides an agent through possibly-nested workflows one
// step at a time, and the store that persists it.
//
// This file contains error classification and handling.

package session

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Kind categorizes store failures.
type Kind string

const (
	KindNotFound          Kind = "not_found"           // Unknown session id
	KindInvalidTransition Kind = "invalid_transition"  // Back at step 0, break on root, etc.
	KindPersistence       Kind = "persistence_failure" // Transient I/O error on save/load/archive
	KindCorruption        Kind = "corruption"          // On-disk record unparsable or structurally invalid
)

// StoreError wraps store failures with their classification and the session
// they concern. NotFound and InvalidTransition are expected outcomes of
// normal use; Persistence is retried before being surfaced; Corruption is
// never retried and never aborts other sessions.
type StoreError struct {
	Kind      Kind
	SessionID string
	Err       error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: session %s: %v", e.Kind, e.SessionID, e.Err)
	}
	return fmt.Sprintf("%s: session %s", e.Kind, e.SessionID)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func notFoundError(id string) *StoreError {
	return &StoreError{Kind: KindNotFound, SessionID: id, Err: errors.New("no such session")}
}

func invalidTransition(id, msg string) *StoreError {
	return &StoreError{Kind: KindInvalidTransition, SessionID: id, Err: errors.New(msg)}
}

func persistenceError(id string, err error) *StoreError {
	return &StoreError{Kind: KindPersistence, SessionID: id, Err: err}
}

func corruptionError(id string, err error) *StoreError {
	return &StoreError{Kind: KindCorruption, SessionID: id, Err: err}
}

// ErrorKind extracts the classification from an error, or "" if the error
// is not a StoreError.
func ErrorKind(err error) Kind {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// IsNotFound reports whether the error means the session does not exist.
func IsNotFound(err error) bool { return ErrorKind(err) == KindNotFound }

// IsCorruption reports whether the error means the on-disk record is
// unusable.
func IsCorruption(err error) bool { return ErrorKind(err) == KindCorruption }

// RetryClass indicates whether an I/O error should be retried.
type RetryClass string

const (
	RetryClassRetryable    RetryClass = "retryable"
	RetryClassNonRetryable RetryClass = "non_retryable"
)

// classifyIOError classifies a filesystem error for retry purposes.
// Corruption and deterministic failures are never retried.
func classifyIOError(err error) RetryClass {
	if err == nil {
		return RetryClassNonRetryable
	}

	var se *StoreError
	if errors.As(err, &se) && se.Kind != KindPersistence {
		return RetryClassNonRetryable
	}

	// Deterministic failures.
	if os.IsNotExist(err) || os.IsPermission(err) {
		return RetryClassNonRetryable
	}

	errStr := strings.ToLower(err.Error())

	// Transient OS/filesystem conditions.
	if strings.Contains(errStr, "resource temporarily unavailable") ||
		strings.Contains(errStr, "interrupted system call") ||
		strings.Contains(errStr, "input/output error") ||
		strings.Contains(errStr, "too many open files") ||
		strings.Contains(errStr, "file locked") ||
		strings.Contains(errStr, "temporary") ||
		strings.Contains(errStr, "timeout") {
		return RetryClassRetryable
	}

	return RetryClassNonRetryable
}
