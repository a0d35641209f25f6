package services

import (
	"errors"
	"net/http"
)

// ErrorKind classifies domain failures.
type ErrorKind string

const (
	KindValidation          ErrorKind = "validation"
	KindNotFound            ErrorKind = "not_found"
	KindForbidden           ErrorKind = "forbidden"
	KindUnauthenticated     ErrorKind = "unauthenticated"
	KindInvalidReactionKind ErrorKind = "invalid_reaction_kind"
	KindConflict            ErrorKind = "conflict"
)

// DomainError is returned by services for failures the caller can act on.
// Message is safe to show to end users.
type DomainError struct {
	Kind    ErrorKind
	Status  int
	Code    int
	Message string
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// HTTPStatus implements utils.AppError.
func (e *DomainError) HTTPStatus() int { return e.Status }

// AppCode implements utils.AppError.
func (e *DomainError) AppCode() int { return e.Code }

func domainError(kind ErrorKind, status, code int, message string) *DomainError {
	return &DomainError{Kind: kind, Status: status, Code: code, Message: message}
}

func validationError(code int, message string) *DomainError {
	return domainError(KindValidation, http.StatusBadRequest, code, message)
}

func notFoundError(code int, message string) *DomainError {
	return domainError(KindNotFound, http.StatusNotFound, code, message)
}

func forbiddenError(code int, message string) *DomainError {
	return domainError(KindForbidden, http.StatusForbidden, code, message)
}

func unauthenticatedError(code int, message string) *DomainError {
	return domainError(KindUnauthenticated, http.StatusUnauthorized, code, message)
}

func invalidReactionKindError(code int, message string) *DomainError {
	return domainError(KindInvalidReactionKind, http.StatusBadRequest, code, message)
}

func conflictError(code int, message string) *DomainError {
	return domainError(KindConflict, http.StatusConflict, code, message)
}

// IsKind reports whether err is a DomainError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Kind == kind
}
