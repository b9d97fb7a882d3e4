package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates that the caller is not authenticated.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates that the caller may not perform the action on the tenant.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates a concurrent modification lost a race.
var ErrConflict = errors.New("conflict")

// ErrInvalidState indicates a lifecycle transition that is not allowed from the current status.
var ErrInvalidState = errors.New("invalid state transition")

// ErrImmutable indicates an attempted mutation of an entry that is no longer a draft.
var ErrImmutable = errors.New("entry is immutable")

// ErrIntegrity indicates that a ledger post-condition does not hold.
var ErrIntegrity = errors.New("ledger integrity violation")

// ErrInternal indicates an unexpected infrastructure failure.
var ErrInternal = errors.New("internal error")

// AppError wraps infrastructure failures with a status-like code and a message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports 5xx AppErrors as ErrInternal.
func (e *AppError) Is(target error) bool {
	return target == ErrInternal && e.Code >= 500
}

// Kind constants are the stable, user-visible error identifiers.
const (
	KindValidation   = "VALIDATION_ERROR"
	KindNotFound     = "NOT_FOUND"
	KindDuplicate    = "DUPLICATE"
	KindUnauthorized = "UNAUTHORIZED"
	KindForbidden    = "FORBIDDEN"
	KindConflict     = "CONFLICT"
	KindInvalidState = "INVALID_STATE_TRANSITION"
	KindImmutable    = "IMMUTABLE_ENTRY"
	KindIntegrity    = "INTEGRITY_ERROR"
	KindInternal     = "INTERNAL"
)

// Kind classifies err into one of the stable kinds above.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrDuplicate):
		return KindDuplicate
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrImmutable):
		return KindImmutable
	case errors.Is(err, ErrIntegrity):
		return KindIntegrity
	case errors.Is(err, ErrConflict):
		return KindConflict
	default:
		return KindInternal
	}
}
