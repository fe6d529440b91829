package apperrors

import "errors"

// Kind classifies an error for the boundary layer.
type Kind string

const (
	KindNotFound         Kind = "NOT_FOUND"
	KindDuplicate        Kind = "DUPLICATE_RESOURCE"
	KindInvalidRelation  Kind = "INVALID_RELATION"
	KindCapacityExceeded Kind = "CAPACITY_EXCEEDED"
	KindAuthentication   Kind = "AUTHENTICATION_FAILURE"
	KindValidation       Kind = "VALIDATION_FAILURE"
	KindInternal         Kind = "INTERNAL"
)

// Student errors
var (
	ErrStudentNotFound    = errors.New("student not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Course errors
var (
	ErrCourseNotFound          = errors.New("course not found")
	ErrCourseTitleExists       = errors.New("course title already exists")
	ErrCapacityBelowEnrollment = errors.New("max capacity is lower than current enrollment")
)

// Enrollment errors
var (
	ErrAlreadyEnrolled = errors.New("already enrolled")
	ErrNotEnrolled     = errors.New("not enrolled")
	ErrCourseFull      = errors.New("course full")
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthRequired       = errors.New("authentication required")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrInvalidFormat      = errors.New("invalid token format")
)

// Validation errors
var (
	ErrValidationFailed = errors.New("validation failed")
)

// kindTable is checked in order; the first sentinel found in the chain wins.
var kindTable = []struct {
	err  error
	kind Kind
}{
	{ErrStudentNotFound, KindNotFound},
	{ErrCourseNotFound, KindNotFound},
	{ErrEmailAlreadyExists, KindDuplicate},
	{ErrCourseTitleExists, KindDuplicate},
	{ErrAlreadyEnrolled, KindInvalidRelation},
	{ErrNotEnrolled, KindInvalidRelation},
	{ErrCourseFull, KindCapacityExceeded},
	{ErrInvalidCredentials, KindAuthentication},
	{ErrAuthRequired, KindAuthentication},
	{ErrTokenExpired, KindAuthentication},
	{ErrTokenInvalid, KindAuthentication},
	{ErrInvalidFormat, KindAuthentication},
	{ErrCapacityBelowEnrollment, KindValidation},
	{ErrValidationFailed, KindValidation},
}

// KindOf reports the Kind of err. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, entry := range kindTable {
		if errors.Is(err, entry.err) {
			return entry.kind
		}
	}
	return KindInternal
}

// Is returns whether err matches target or any of errList.
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError attaches a user-facing message to a sentinel error.
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// NewValidationError creates a validation error with a message
func NewValidationError(message string) error {
	return NewCustomError(ErrValidationFailed, message)
}

// PublicMessage returns the message that may be shown to a client.
// Internal errors never expose their text.
func PublicMessage(err error) string {
	if KindOf(err) == KindInternal {
		return "Internal server error"
	}
	var custom *CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	for _, entry := range kindTable {
		if errors.Is(err, entry.err) {
			return entry.err.Error()
		}
	}
	return err.Error()
}
