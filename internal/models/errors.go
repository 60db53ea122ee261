package models

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind classifies an AppError for transport mapping.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindValidation
	KindBadRequest
	KindUnauthorized
	KindForbidden
)

// Error codes surfaced in API error bodies.
const (
	CodeUserNotFound     = "USER_NOT_FOUND"
	CodeProfileNotFound  = "PROFILE_NOT_FOUND"
	CodeNotFound         = "NOT_FOUND"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeBadRequest       = "BAD_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeInternal         = "INTERNAL_ERROR"
)

// Violations maps a field name to every rule it failed, in rule order.
type Violations map[string][]string

// Add records msg against field.
func (v Violations) Add(field, msg string) {
	v[field] = append(v[field], msg)
}

// Empty reports whether no violation was recorded.
func (v Violations) Empty() bool { return len(v) == 0 }

// Fields returns the violated field names in sorted order.
func (v Violations) Fields() []string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// AppError represents a custom application error
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Fields  Violations
	Err     error
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

// Status returns the HTTP status that represents the error kind.
func (e *AppError) Status() int {
	switch e.Kind {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindValidation:
		return fiber.StatusUnprocessableEntity
	case KindBadRequest:
		return fiber.StatusBadRequest
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	code := CodeNotFound
	switch resource {
	case "User":
		code = CodeUserNotFound
	case "Profile":
		code = CodeProfileNotFound
	}
	return &AppError{
		Kind:    KindNotFound,
		Code:    code,
		Message: fmt.Sprintf("The %s with id %v was not found", lowerFirst(resource), id),
	}
}

func NewValidationFailed(v Violations) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Code:    CodeValidationFailed,
		Message: "The given data was invalid.",
		Fields:  v,
	}
}

// NewFieldError is a ValidationFailed carrying a single violation.
func NewFieldError(field, msg string) *AppError {
	v := Violations{}
	v.Add(field, msg)
	return NewValidationFailed(v)
}

func NewBadRequestError(message string) *AppError {
	return &AppError{
		Kind:    KindBadRequest,
		Code:    CodeBadRequest,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Kind:    KindUnauthorized,
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Kind:    KindForbidden,
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// IsKind reports whether err wraps an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// APIError is the JSON error body returned by every endpoint.
type APIError struct {
	Status  string     `json:"status"`
	Code    string     `json:"code"`
	Message string     `json:"message"`
	Errors  Violations `json:"errors,omitempty"`
}

// RespondWithError writes err as an APIError; the status comes from the
// error kind, plain errors become 500s.
func RespondWithError(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewInternalError(err)
	}
	status := appErr.Status()
	return c.Status(status).JSON(APIError{
		Status:  strconv.Itoa(status),
		Code:    appErr.Code,
		Message: appErr.Message,
		Errors:  appErr.Fields,
	})
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
