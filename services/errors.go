package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindUnauthorized ErrorKind = "unauthorized"
	KindPersistence  ErrorKind = "persistence"
)

// Error is returned by every service operation that fails. Field names the
// offending request field for validation errors.
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func ValidationError(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func NotFoundError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func ConflictError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func UnauthorizedError(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// PersistenceError keeps the database message so operators can see what failed.
func PersistenceError(op string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: fmt.Sprintf("%s: %v", op, err), Err: err}
}

// KindOf returns the kind of a service error, treating gorm's not-found as
// KindNotFound and anything else unrecognised as KindPersistence.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return KindNotFound
	}
	return KindPersistence
}

// wrap passes service errors through and turns anything else into a
// persistence error for op.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}
	return PersistenceError(op, err)
}
