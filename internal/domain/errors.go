package entity

import (
	"errors"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("not authorized")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
)

// Error is a named failure of one of the four kinds above. errors.Is matches
// the kind; Error() returns only the message.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) error {
	return &Error{Kind: kind, Msg: strings.TrimSpace(msg)}
}

func NotFoundError(msg string) error      { return newError(ErrNotFound, msg) }
func AuthorizationError(msg string) error { return newError(ErrUnauthorized, msg) }
func ValidationError(msg string) error    { return newError(ErrValidation, msg) }
func ConflictError(msg string) error      { return newError(ErrConflict, msg) }
