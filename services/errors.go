package services

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure; the HTTP layer maps it onto a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindExternal:
		return "external"
	}
	return "internal"
}

// Error is the error type every service method returns for expected failures.
// Message is safe to show to API clients.
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

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func validation(msg string) *Error { return newError(KindValidation, msg, nil) }
func forbidden(msg string) *Error  { return newError(KindForbidden, msg, nil) }
func notFound(msg string) *Error   { return newError(KindNotFound, msg, nil) }
func conflict(msg string) *Error   { return newError(KindConflict, msg, nil) }
func internal(msg string, err error) *Error {
	return newError(KindInternal, msg, err)
}

// KindOf returns KindInternal for errors that are not *Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

const (
	msgEventNotFound       = "Evento não encontrado"
	msgUserNotFound        = "Usuário não encontrado"
	msgLocationNotFound    = "Local não encontrado"
	msgParticipantNotFound = "Participante não encontrado"
)
