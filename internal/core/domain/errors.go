package domain

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidOrder       = errors.New("invalid order")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrDuplicateOrder     = errors.New("order with this digital signature already placed")
)

// FieldError is a single caller-fixable problem with one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError groups every field problem found in one input.
// It matches ErrValidation, plus Kind when set (e.g. ErrInvalidOrder).
type ValidationError struct {
	Fields []FieldError
	Kind   error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() []error {
	if e.Kind != nil {
		return []error{ErrValidation, e.Kind}
	}
	return []error{ErrValidation}
}

// Has reports whether field has at least one error.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// fieldErrors collects FieldErrors and turns them into a *ValidationError.
type fieldErrors []FieldError

func (fe *fieldErrors) add(field, msg string) {
	*fe = append(*fe, FieldError{Field: field, Message: msg})
}

func (fe fieldErrors) err(kind error) error {
	if len(fe) == 0 {
		return nil
	}
	return &ValidationError{Fields: fe, Kind: kind}
}
