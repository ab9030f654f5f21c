// Package repository defines data access interfaces for bookpipe entities.
// All database access goes through these interfaces, enabling easy testing
// and database backend switching.
package repository

import (
	"context"

	"github.com/hostfolio/bookpipe/internal/models"
)

// MappingTemplateRepository defines operations for mapping template persistence.
type MappingTemplateRepository interface {
	// Create creates a new mapping template with its rules.
	Create(ctx context.Context, template *models.MappingTemplate) error
	// GetByID retrieves a template by ID with its rules preloaded.
	GetByID(ctx context.Context, id models.ULID) (*models.MappingTemplate, error)
	// GetByName retrieves a template by name with its rules preloaded.
	GetByName(ctx context.Context, name string) (*models.MappingTemplate, error)
	// GetAll retrieves all templates with their rules preloaded.
	GetAll(ctx context.Context) ([]*models.MappingTemplate, error)
	// GetDefault retrieves the global default template, or nil when unset.
	GetDefault(ctx context.Context) (*models.MappingTemplate, error)
	// GetForProperty retrieves the template scoped to a property, or nil
	// when the property has no dedicated template.
	GetForProperty(ctx context.Context, propertyID models.ULID) (*models.MappingTemplate, error)
	// SetDefault marks one template as the global default, clearing the
	// flag on every other global template.
	SetDefault(ctx context.Context, id models.ULID) error
	// Update updates an existing template, replacing its rules.
	Update(ctx context.Context, template *models.MappingTemplate) error
	// Delete deletes a template and its rules by ID.
	Delete(ctx context.Context, id models.ULID) error
	// Count returns the total number of templates.
	Count(ctx context.Context) (int64, error)
}

// PropertyRepository defines operations for property persistence.
type PropertyRepository interface {
	// Create creates a new property.
	Create(ctx context.Context, property *models.Property) error
	// GetByID retrieves a property by ID.
	GetByID(ctx context.Context, id models.ULID) (*models.Property, error)
	// GetByListingName retrieves a property by its platform listing name,
	// matched case-insensitively.
	GetByListingName(ctx context.Context, listingName string) (*models.Property, error)
	// GetAll retrieves all properties.
	GetAll(ctx context.Context) ([]*models.Property, error)
	// GetActive retrieves all active properties.
	GetActive(ctx context.Context) ([]*models.Property, error)
	// Update updates an existing property.
	Update(ctx context.Context, property *models.Property) error
	// Delete deletes a property by ID.
	Delete(ctx context.Context, id models.ULID) error
}

// BookingRepository defines operations for booking persistence.
type BookingRepository interface {
	// Create creates a new booking.
	Create(ctx context.Context, booking *models.Booking) error
	// CreateBatch creates multiple bookings in a single batch.
	CreateBatch(ctx context.Context, bookings []*models.Booking) error
	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id models.ULID) (*models.Booking, error)
	// GetByReservationCode retrieves bookings matching a reservation code.
	GetByReservationCode(ctx context.Context, code string) ([]*models.Booking, error)
	// GetByUploadID retrieves all bookings committed from an upload.
	GetByUploadID(ctx context.Context, uploadID models.ULID) ([]*models.Booking, error)
	// GetByPropertyID retrieves bookings for a property with pagination.
	GetByPropertyID(ctx context.Context, propertyID models.ULID, offset, limit int) ([]*models.Booking, int64, error)
	// Update updates an existing booking.
	Update(ctx context.Context, booking *models.Booking) error
	// Delete deletes a booking by ID.
	Delete(ctx context.Context, id models.ULID) error
	// Count returns the total number of bookings.
	Count(ctx context.Context) (int64, error)
}

// BookingAuditRepository defines operations for booking audit persistence.
type BookingAuditRepository interface {
	// Create creates a new audit record.
	Create(ctx context.Context, audit *models.BookingAudit) error
	// CreateBatch creates multiple audit records in a single batch.
	CreateBatch(ctx context.Context, audits []*models.BookingAudit) error
	// GetByBookingID retrieves all audit records for a booking.
	GetByBookingID(ctx context.Context, bookingID models.ULID) ([]*models.BookingAudit, error)
}

// UploadRecordRepository defines operations for upload record persistence.
type UploadRecordRepository interface {
	// Create creates a new upload record.
	Create(ctx context.Context, record *models.UploadRecord) error
	// GetByID retrieves an upload record by ID.
	GetByID(ctx context.Context, id models.ULID) (*models.UploadRecord, error)
	// GetAll retrieves all upload records, newest first.
	GetAll(ctx context.Context) ([]*models.UploadRecord, error)
	// UpdateStatus updates an upload's status, booking count, and error detail.
	UpdateStatus(ctx context.Context, id models.ULID, status models.UploadStatus, bookingCount int, errDetail string) error
	// Delete deletes an upload record by ID.
	Delete(ctx context.Context, id models.ULID) error
}
