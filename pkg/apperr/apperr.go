package apperr

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type Kind string

const (
	NotFound   Kind = "NOT_FOUND"
	Forbidden  Kind = "FORBIDDEN"
	BadRequest Kind = "BAD_REQUEST"
	Internal   Kind = "INTERNAL"
)

// Error carries a machine readable kind and a message safe to show to callers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func NotFoundf(format string, args ...any) *Error   { return Newf(NotFound, format, args...) }
func Forbiddenf(format string, args ...any) *Error  { return Newf(Forbidden, format, args...) }
func BadRequestf(format string, args ...any) *Error { return Newf(BadRequest, format, args...) }

// KindOf: record not found ของ gorm = NOT_FOUND, error อื่นที่ไม่ได้จัดประเภท = INTERNAL
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound
	}
	return Internal
}

// Message returns the caller-facing text; internal details are hidden.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "not found"
	}
	return "internal error"
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// FromDB wraps a lookup error: not found keeps the given message, anything else is INTERNAL.
func FromDB(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Wrap(NotFound, notFoundMsg, err)
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return Wrap(Internal, "database error", err)
}
