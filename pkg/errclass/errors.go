// Package errclass defines the stable error classes reported by reportstore.
package errclass

import "fmt"

// Error is a stable, machine-readable error class.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any Error with the same Code, so class sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

// WithMessage returns a new Error with the same Code but a specific message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg}
}

// WithMessagef returns a new Error with a formatted message.
func (e *Error) WithMessagef(format string, args ...any) *Error {
	return &Error{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

var (
	// ErrInvalidIdentifier rejects submitter identifiers that could escape the report root.
	ErrInvalidIdentifier = &Error{Code: "E_INVALID_IDENTIFIER"}
	ErrReportDecode      = &Error{Code: "E_REPORT_DECODE"}
	ErrReportInvalid     = &Error{Code: "E_REPORT_INVALID"}
	ErrConfigInvalid     = &Error{Code: "E_CONFIG_INVALID"}
)
