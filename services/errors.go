package services

import (
	"errors"
	"fmt"
)

// Workflow error kinds. Everything here is recoverable at the caller: the
// controller maps kinds to HTTP statuses and forwards the message as-is so
// the UI can say which precondition failed.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindInvalidState
	KindPrecondition
	KindConflict
	KindPermission
	KindNotFound
)

// WorkflowError carries the kind plus the current/expected state context
// required by the propagation policy.
type WorkflowError struct {
	Kind     ErrorKind
	Message  string
	Current  string
	Expected string
}

func (e *WorkflowError) Error() string {
	if e.Current != "" || e.Expected != "" {
		return fmt.Sprintf("%s (current: %s, expected: %s)", e.Message, e.Current, e.Expected)
	}
	return e.Message
}

func NewValidationError(format string, args ...interface{}) *WorkflowError {
	return &WorkflowError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewInvalidStateError(message, current, expected string) *WorkflowError {
	return &WorkflowError{Kind: KindInvalidState, Message: message, Current: current, Expected: expected}
}

func NewPreconditionError(format string, args ...interface{}) *WorkflowError {
	return &WorkflowError{Kind: KindPrecondition, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(message string) *WorkflowError {
	return &WorkflowError{Kind: KindConflict, Message: message}
}

func NewPermissionError(format string, args ...interface{}) *WorkflowError {
	return &WorkflowError{Kind: KindPermission, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(entity string, id int) *WorkflowError {
	return &WorkflowError{Kind: KindNotFound, Message: fmt.Sprintf("%s %d not found", entity, id)}
}

// KindOf extracts the error kind, unwrapping as needed. Unknown errors
// report -1 so callers fall through to a 500.
func KindOf(err error) (ErrorKind, bool) {
	var wf *WorkflowError
	if errors.As(err, &wf) {
		return wf.Kind, true
	}
	return -1, false
}
