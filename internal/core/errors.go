package core

import (
	"errors"
	"fmt"
)

// Validation errors. These are always surfaced before the first write of any
// operation, so a caller seeing one knows no side effect has happened.
var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidPercent   = errors.New("invalid percent")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidKind      = errors.New("invalid debt kind")
	ErrInvalidTitle     = errors.New("title too long")
	ErrEmptyParty       = errors.New("empty party name")
	ErrOverpay          = errors.New("payment exceeds remaining balance")
	ErrAccountRequired  = errors.New("account is required for a mirrored payment")
	ErrCategoryRequired = errors.New("category is required for an expense mirror")
)

// NotFoundError reports that a row does not exist for the current owner.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// StoreError wraps a failed read or write against the backing store.
// It is surfaced after any in-flight compensation has completed.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsValidation reports whether err belongs to the validation taxonomy.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidPercent) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidKind) ||
		errors.Is(err, ErrInvalidTitle) ||
		errors.Is(err, ErrEmptyParty) ||
		errors.Is(err, ErrOverpay) ||
		errors.Is(err, ErrAccountRequired) ||
		errors.Is(err, ErrCategoryRequired)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
