package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal error")

	ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrUserExists       = fmt.Errorf("%w: user already exists", ErrConflict)
	ErrBadCredentials   = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// internalError keeps both ErrInternal and the storage cause in the chain.
func internalError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInternal, op, err)
}
