package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrDuplicateAccount   = errors.New("user already exists")
	ErrDuplicateName      = errors.New("sweet with this name already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("sweet not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInsufficientStock  = errors.New("insufficient quantity in stock")
)

// ValidationError 入力値の詳細を保持する。errors.Is(err, ErrValidation) が true になる
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return ErrValidation.Error()
	}
	msg := e.Messages[0]
	for _, m := range e.Messages[1:] {
		msg += ", " + m
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(format string, args ...interface{}) error {
	return &ValidationError{Messages: []string{fmt.Sprintf(format, args...)}}
}
