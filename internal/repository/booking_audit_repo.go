package repository

import (
	"context"
	"fmt"

	"github.com/hostfolio/bookpipe/internal/models"
	"gorm.io/gorm"
)

// bookingAuditRepository implements BookingAuditRepository using GORM.
type bookingAuditRepository struct {
	db *gorm.DB
}

// NewBookingAuditRepository creates a new BookingAuditRepository.
func NewBookingAuditRepository(db *gorm.DB) BookingAuditRepository {
	return &bookingAuditRepository{db: db}
}

// Create creates a new audit record.
func (r *bookingAuditRepository) Create(ctx context.Context, audit *models.BookingAudit) error {
	if err := audit.Validate(); err != nil {
		return fmt.Errorf("validating audit: %w", err)
	}
	return r.db.WithContext(ctx).Create(audit).Error
}

// CreateBatch creates multiple audit records in a single batch.
func (r *bookingAuditRepository) CreateBatch(ctx context.Context, audits []*models.BookingAudit) error {
	if len(audits) == 0 {
		return nil
	}
	for _, audit := range audits {
		if err := audit.Validate(); err != nil {
			return fmt.Errorf("validating audit for field %s: %w", audit.FieldName, err)
		}
	}
	return r.db.WithContext(ctx).CreateInBatches(audits, createBatchSize).Error
}

// GetByBookingID retrieves all audit records for a booking.
func (r *bookingAuditRepository) GetByBookingID(ctx context.Context, bookingID models.ULID) ([]*models.BookingAudit, error) {
	var audits []*models.BookingAudit
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&audits).Error; err != nil {
		return nil, err
	}
	return audits, nil
}

// Ensure bookingAuditRepository implements BookingAuditRepository.
var _ BookingAuditRepository = (*bookingAuditRepository)(nil)
