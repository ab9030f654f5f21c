package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/hostfolio/bookpipe/internal/models"
	"gorm.io/gorm"
)

// createBatchSize limits rows per INSERT for batch creation.
const createBatchSize = 100

// bookingRepository implements BookingRepository using GORM.
type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new BookingRepository.
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

// Create creates a new booking.
func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if err := booking.Validate(); err != nil {
		return fmt.Errorf("validating booking: %w", err)
	}
	return r.db.WithContext(ctx).Create(booking).Error
}

// CreateBatch creates multiple bookings in a single batch.
func (r *bookingRepository) CreateBatch(ctx context.Context, bookings []*models.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	for _, booking := range bookings {
		if err := booking.Validate(); err != nil {
			return fmt.Errorf("validating booking %s: %w", booking.ReservationCode, err)
		}
	}
	return r.db.WithContext(ctx).CreateInBatches(bookings, createBatchSize).Error
}

// GetByID retrieves a booking by ID.
func (r *bookingRepository) GetByID(ctx context.Context, id models.ULID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// GetByReservationCode retrieves bookings matching a reservation code.
// Codes are matched case-insensitively; duplicates are possible when a
// file carried the same code on multiple rows.
func (r *bookingRepository) GetByReservationCode(ctx context.Context, code string) ([]*models.Booking, error) {
	var bookings []*models.Booking
	if err := r.db.WithContext(ctx).
		Where("LOWER(reservation_code) = ?", strings.ToLower(strings.TrimSpace(code))).
		Order("created_at ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// GetByUploadID retrieves all bookings committed from an upload.
func (r *bookingRepository) GetByUploadID(ctx context.Context, uploadID models.ULID) ([]*models.Booking, error) {
	var bookings []*models.Booking
	if err := r.db.WithContext(ctx).
		Where("upload_id = ?", uploadID).
		Order("created_at ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// GetByPropertyID retrieves bookings for a property with pagination.
func (r *bookingRepository) GetByPropertyID(ctx context.Context, propertyID models.ULID, offset, limit int) ([]*models.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("property_id = ?", propertyID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bookings []*models.Booking
	query := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("check_in_date ASC, created_at ASC").
		Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&bookings).Error; err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// Update updates an existing booking.
func (r *bookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	if err := booking.Validate(); err != nil {
		return fmt.Errorf("validating booking: %w", err)
	}
	return r.db.WithContext(ctx).Save(booking).Error
}

// Delete deletes a booking by ID.
func (r *bookingRepository) Delete(ctx context.Context, id models.ULID) error {
	return r.db.WithContext(ctx).Delete(&models.Booking{}, "id = ?", id).Error
}

// Count returns the total number of bookings.
func (r *bookingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Booking{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure bookingRepository implements BookingRepository.
var _ BookingRepository = (*bookingRepository)(nil)
