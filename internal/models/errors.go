package models

import (
	"errors"
	"fmt"
)

// ErrValidation represents a validation error with field and message.
type ErrValidation struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ErrValidation) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Common validation errors for models.
var (
	// ErrNameRequired indicates a required name field is empty.
	ErrNameRequired = errors.New("name is required")

	// ErrExpressionRequired indicates a required expression field is empty.
	ErrExpressionRequired = errors.New("expression is required")

	// ErrBookingFieldRequired indicates a required booking field name is empty.
	ErrBookingFieldRequired = errors.New("booking_field is required")

	// ErrInvalidPlatform indicates a platform value outside the known set.
	ErrInvalidPlatform = errors.New("invalid platform")

	// ErrTemplateIDRequired indicates a required template ID field is zero.
	ErrTemplateIDRequired = errors.New("template_id is required")

	// ErrPropertyIDRequired indicates a required property ID field is zero.
	ErrPropertyIDRequired = errors.New("property_id is required")

	// ErrBookingIDRequired indicates a required booking ID field is zero.
	ErrBookingIDRequired = errors.New("booking_id is required")

	// ErrUploadIDRequired indicates a required upload ID field is zero.
	ErrUploadIDRequired = errors.New("upload_id is required")

	// ErrReservationCodeRequired indicates a required reservation code is empty.
	ErrReservationCodeRequired = errors.New("reservation_code is required")

	// ErrFileNameRequired indicates a required file name field is empty.
	ErrFileNameRequired = errors.New("file_name is required")

	// ErrTemplateNotFound indicates a mapping template was not found.
	ErrTemplateNotFound = errors.New("mapping template not found")

	// ErrPropertyNotFound indicates a property was not found.
	ErrPropertyNotFound = errors.New("property not found")
)
