package terminal

import "errors"

// Error codes surfaced to the display surface.
const (
	CodeNotAvailable = "TERMINAL_NOT_AVAILABLE"
	CodeCreate       = "TERMINAL_CREATE_ERROR"
	CodeNotFound     = "TERMINAL_NOT_FOUND"
	CodeInvalidSize  = "TERMINAL_INVALID_SIZE"
)

var (
	ErrNotAvailable     = errors.New("terminal functionality is not available")
	ErrNotFound         = errors.New("terminal not found")
	ErrInvalidDirectory = errors.New("invalid working directory")
	ErrInvalidSize      = errors.New("invalid terminal size")
	ErrShuttingDown     = errors.New("session manager is shutting down")
)

// Error is a failure with a stable code and a human readable message.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the code carried by err, or "" when err is not an *Error.
func CodeOf(err error) string {
	var te *Error
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}
