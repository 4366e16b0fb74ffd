package domain

import (
	"errors"
	"fmt"
)

// Code classifies an error for adapters that translate it to a transport status.
type Code string

const (
	CodeInvalidInput Code = "invalid_input"
	CodeConflict     Code = "conflict"
	CodeNotFound     Code = "not_found"
	CodeInternal     Code = "internal"
)

// Error is a coded sentinel. Wrap it with fmt.Errorf and %w to add detail.
type Error struct {
	code Code
	msg  string
}

func newError(code Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

func (e *Error) Error() string   { return e.msg }
func (e *Error) Code() Code      { return e.code }
func (e *Error) Message() string { return e.msg }

var (
	// ErrAlreadyRunning is returned by Start while a run is running or paused.
	ErrAlreadyRunning = newError(CodeConflict, "a run is already active")
	// ErrInvalidTransition is returned when a command is not valid for the current status.
	ErrInvalidTransition = newError(CodeConflict, "invalid state transition")
	// ErrStructureLocked is returned for structural edits while a run holds the container.
	ErrStructureLocked = newError(CodeConflict, "container is locked by an active run")

	// ErrMissingPrerequisite is returned when the container lacks something the algorithm needs.
	ErrMissingPrerequisite = newError(CodeInvalidInput, "missing prerequisite")
	// ErrInvalidParams is returned when algorithm or command parameters are malformed.
	ErrInvalidParams = newError(CodeInvalidInput, "invalid parameters")
	// ErrFamilyMismatch is returned when an algorithm is started on the wrong container family.
	ErrFamilyMismatch = newError(CodeInvalidInput, "container family does not match algorithm")
	// ErrTooFewAlgorithms is returned by comparisons with fewer than two distinct algorithms.
	ErrTooFewAlgorithms = newError(CodeInvalidInput, "at least two algorithms are required")
	// ErrEmptyContainer is returned by comparisons asked to measure an empty input.
	ErrEmptyContainer = newError(CodeInvalidInput, "container is empty")

	// ErrUnknownAlgorithm is returned for a kind that is not registered.
	ErrUnknownAlgorithm = newError(CodeNotFound, "unknown algorithm")
	// ErrWorkspaceNotFound is returned when a workspace ID cannot be found.
	ErrWorkspaceNotFound = newError(CodeNotFound, "workspace not found")
	// ErrPresetNotFound is returned when a preset name cannot be found in the store.
	ErrPresetNotFound = newError(CodeNotFound, "preset not found")
	// ErrElementNotFound is returned when an edit names an element that does not exist.
	ErrElementNotFound = newError(CodeNotFound, "element not found")
)

// CodeOf extracts the classification of err. Unclassified errors are internal.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.code
	}
	return CodeInternal
}

// Fault describes an unexpected internal failure that ended a run.
type Fault struct {
	Kind    Kind   `json:"kind"`
	Step    int64  `json:"step"`
	Message string `json:"message"`
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s faulted at step %d: %s", f.Kind, f.Step, f.Message)
}
