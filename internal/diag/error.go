package diag

import (
	"errors"
	"fmt"

	"abigen/internal/source"
)

// Error is a fatal diagnostic. Every phase of the compiler stops at the first
// one it produces, so there is never more than one per run.
type Error struct {
	Diagnostic
}

// Errorf builds a fatal error at the given span.
func Errorf(code Code, primary source.Span, format string, args ...any) *Error {
	return &Error{Diagnostic: NewError(code, primary, fmt.Sprintf(format, args...))}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s", e.Code.ID(), e.Message)
}

// Note attaches a secondary location and returns the same error.
func (e *Error) Note(sp source.Span, msg string) *Error {
	e.Diagnostic = e.Diagnostic.WithNote(sp, msg)
	return e
}

// AsError extracts a *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err carries a diagnostic with the given code.
func HasCode(err error, code Code) bool {
	de, ok := AsError(err)
	return ok && de.Code == code
}
