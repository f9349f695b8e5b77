package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation policy and HTTP mapping.
type Kind string

const (
	// KindValidation marks a file or request rejected up front; the batch it
	// belongs to continues.
	KindValidation Kind = "validation"
	// KindProcessing marks a failed attachment encode/extraction; the item is
	// surfaced as failed, siblings continue.
	KindProcessing Kind = "processing"
	// KindTransport marks a network failure against a remote collaborator;
	// optimistic state is reverted where applicable.
	KindTransport Kind = "transport"
	// KindNotFound marks a missing thread/message on the server.
	KindNotFound Kind = "not-found"
)

type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *AppError {
	return New(KindValidation, message)
}

func Processing(message string, err error) *AppError {
	return Wrap(KindProcessing, message, err)
}

func Transport(message string, err error) *AppError {
	return Wrap(KindTransport, message, err)
}

func NotFound(message string) *AppError {
	return New(KindNotFound, message)
}

// KindOf reports the Kind of err, or empty when err is not an AppError.
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
