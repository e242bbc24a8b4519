package core

import "errors"

// Kind classifies an error for callers that must turn it into a user-facing message.
type Kind string

const (
	KindValidation       Kind = "validation_error"
	KindUnique           Kind = "unique_violation"
	KindForeignKey       Kind = "foreign_key_violation"
	KindNotFound         Kind = "not_found"
	KindStoreUnavailable Kind = "store_unavailable"
	KindInternal         Kind = "internal_error"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrUniqueViolation     = errors.New("unique constraint violated")
	ErrForeignKeyViolation = errors.New("referenced record does not exist")
	ErrNotFound            = errors.New("record not found")
	ErrStoreUnavailable    = errors.New("store unavailable")
)

// ValidationError reports a rejected field. Every ValidationError matches ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

var (
	ErrInvalidMonth     = &ValidationError{Field: "month", Reason: "must be between 1 and 12"}
	ErrInvalidYear      = &ValidationError{Field: "year", Reason: "must be between 1 and 9999"}
	ErrInvalidDate      = &ValidationError{Field: "date", Reason: "must be a date in YYYY-MM-DD format"}
	ErrInvalidAmount    = &ValidationError{Field: "amount", Reason: "must be a decimal number"}
	ErrAmountOverflow   = &ValidationError{Field: "amount", Reason: "sum exceeds the supported range"}
	ErrEmptyName        = &ValidationError{Field: "name", Reason: "cannot be empty"}
	ErrEmptyDescription = &ValidationError{Field: "description", Reason: "cannot be empty"}
	ErrMissingUser      = &ValidationError{Field: "user_id", Reason: "is required"}
	ErrMissingCard      = &ValidationError{Field: "card_id", Reason: "is required"}
	ErrMissingCategory  = &ValidationError{Field: "category_id", Reason: "is required"}
)

// KindOf classifies err. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrUniqueViolation):
		return KindUnique
	case errors.Is(err, ErrForeignKeyViolation):
		return KindForeignKey
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrStoreUnavailable):
		return KindStoreUnavailable
	default:
		return KindInternal
	}
}
