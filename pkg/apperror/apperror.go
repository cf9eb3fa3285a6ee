// Package apperror carries the service error taxonomy. Every error
// surfaced to a caller has a stable kind and a human-readable message.
package apperror

import "fmt"

type Kind string

const (
	KindInvalidRequest Kind = "InvalidRequest"
	KindNotFound       Kind = "NotFound"
	KindStorageFailure Kind = "StorageFailure"
	KindUnauthorized   Kind = "Unauthorized"
)

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

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func InvalidRequest(message string) *Error {
	return New(KindInvalidRequest, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

func StorageFailure(message string, err error) *Error {
	return Wrap(KindStorageFailure, message, err)
}
