// Package scmerrors defines the typed error hierarchy used across ScopeMux.
package scmerrors

import (
	"fmt"
	"sync"
	"time"
)

// ErrorCode is the boundary error enum shared by every public operation.
type ErrorCode string

const (
	None            ErrorCode = "none"
	Memory          ErrorCode = "memory"
	TooManyFiles    ErrorCode = "too_many_files"
	IncludeDepth    ErrorCode = "include_depth"
	InvalidPath     ErrorCode = "invalid_path"
	IO              ErrorCode = "io"
	UnknownLanguage ErrorCode = "unknown_language"
	ParseFailed     ErrorCode = "parse_failed"
	// UnresolvedExternal marks an Import/Include reference that never
	// matched a registered symbol, recorded only when
	// Configuration.ResolveExternalSymbols opts into treating that as an
	// error rather than silently accepting it.
	UnresolvedExternal ErrorCode = "unresolved_external"
)

// String returns the lower_snake_case spelling used in log lines.
func (c ErrorCode) String() string {
	if c == "" {
		return string(None)
	}
	return string(c)
}

// EngineError carries boundary-error context for a single failed operation.
type EngineError struct {
	Code       ErrorCode
	Operation  string
	FilePath   string
	Underlying error
	Timestamp  time.Time
}

// New creates an EngineError for op with the given boundary code.
func New(code ErrorCode, op string, err error) *EngineError {
	return &EngineError{
		Code:      code,
		Operation: op,
		Underlying: err,
		Timestamp: time.Now(),
	}
}

// WithFile attaches a file path to the error and returns it for chaining.
func (e *EngineError) WithFile(path string) *EngineError {
	e.FilePath = path
	return e
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("%s: %s failed for %s: %v", e.Code, e.Operation, e.FilePath, e.Underlying)
	}
	return fmt.Sprintf("%s: %s failed: %v", e.Code, e.Operation, e.Underlying)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target is an EngineError with the same Code.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// MultiError aggregates the errors produced by a batch operation such as
// ParseAllFiles, where one file failing must not abort the others.
type MultiError struct {
	Errors []error
}

// NewMulti builds a MultiError, dropping any nil entries.
func NewMulti(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors, first: %v", len(e.Errors), e.Errors[0])
}

func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// LastErrorSlot replaces the teacher's "mutable last-error through a const
// view" pattern (spec.md §9 redesign note) with an explicit accessor type
// that every stateful component (Project, Registry) can embed.
type LastErrorSlot struct {
	mu  sync.Mutex
	err *EngineError
}

// Set records err as the most recent failure. Passing nil clears the slot.
func (s *LastErrorSlot) Set(err *EngineError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// LastError returns the most recently recorded error, if any.
func (s *LastErrorSlot) LastError() (EngineError, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		return EngineError{}, false
	}
	return *s.err, true
}
