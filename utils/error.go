package utils

import (
	"errors"
	"fmt"
)

var ErrorRecordNotFound = errors.New("record not found")

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}

// BusinessError is a recoverable business-rule violation. The API layer
// maps Code() to the error envelope; Error() is operator-readable and can
// be surfaced directly.
type BusinessError interface {
	error
	Code() string
}

type InsufficientStockError struct {
	ProductName string
	Required    int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: required %d, available %d",
		e.ProductName, e.Required, e.Available)
}

func (e *InsufficientStockError) Code() string { return "INSUFFICIENT_STOCK" }

type InsufficientPointsError struct {
	Required  int
	Available int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("points not enough: required %d, available %d", e.Required, e.Available)
}

func (e *InsufficientPointsError) Code() string { return "INSUFFICIENT_POINTS" }

type InvalidOperationError struct {
	Message string
}

func (e *InvalidOperationError) Error() string { return e.Message }
func (e *InvalidOperationError) Code() string  { return "INVALID_OPERATION" }

func NewInvalidOperation(message string) error {
	return &InvalidOperationError{Message: message}
}

type ValidationError struct {
	Message string
	Field   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

func (e *ValidationError) Code() string { return "VALIDATION_ERROR" }

func NewValidationError(message string, field string) error {
	return &ValidationError{Message: message, Field: field}
}

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }
func (e *NotFoundError) Code() string  { return "NOT_FOUND" }

func NewNotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

type PermissionDeniedError struct {
	Message string
}

func (e *PermissionDeniedError) Error() string {
	if e.Message == "" {
		return "permission denied"
	}
	return e.Message
}

func (e *PermissionDeniedError) Code() string { return "PERMISSION_DENIED" }
