// Package apperror defines the error kinds surfaced by the storefront core and
// how each one is reported to the presentation layer.
package apperror

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when an addressed entity does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports bad or missing local input. It is always raised
// before any collaborator call is made.
type ValidationError struct {
	Fields map[string]string
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// InvalidTransitionError reports an order state machine guard violation.
type InvalidTransitionError struct {
	From   string
	Action string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s an order in status %q", e.Action, e.From)
}

// StoreError reports a failed or timed out collaborator call.
type StoreError struct {
	Op      string
	Timeout bool
	Err     error
}

func (e *StoreError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: store timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: store failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// FormatError reports a malformed import payload.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "invalid snapshot format: " + e.Reason
}

// Store wraps a collaborator failure into a StoreError. Errors that already
// carry a kind from this package are returned unchanged so that a failure is
// reported exactly once.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	if Classified(err) {
		return err
	}
	return &StoreError{
		Op:      op,
		Timeout: errors.Is(err, context.DeadlineExceeded),
		Err:     err,
	}
}

// Classified reports whether err already belongs to the taxonomy.
func Classified(err error) bool {
	var (
		ve *ValidationError
		te *InvalidTransitionError
		se *StoreError
		fe *FormatError
	)
	return errors.Is(err, ErrNotFound) ||
		errors.As(err, &ve) ||
		errors.As(err, &te) ||
		errors.As(err, &se) ||
		errors.As(err, &fe)
}
