package repository

import (
	"context"
	"fmt"

	"github.com/hostfolio/bookpipe/internal/models"
	"gorm.io/gorm"
)

// uploadRecordRepository implements UploadRecordRepository using GORM.
type uploadRecordRepository struct {
	db *gorm.DB
}

// NewUploadRecordRepository creates a new UploadRecordRepository.
func NewUploadRecordRepository(db *gorm.DB) UploadRecordRepository {
	return &uploadRecordRepository{db: db}
}

// Create creates a new upload record.
func (r *uploadRecordRepository) Create(ctx context.Context, record *models.UploadRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validating upload record: %w", err)
	}
	return r.db.WithContext(ctx).Create(record).Error
}

// GetByID retrieves an upload record by ID.
func (r *uploadRecordRepository) GetByID(ctx context.Context, id models.ULID) (*models.UploadRecord, error) {
	var record models.UploadRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// GetAll retrieves all upload records, newest first.
func (r *uploadRecordRepository) GetAll(ctx context.Context) ([]*models.UploadRecord, error) {
	var records []*models.UploadRecord
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateStatus updates an upload's status, booking count, and error detail.
func (r *uploadRecordRepository) UpdateStatus(ctx context.Context, id models.ULID, status models.UploadStatus, bookingCount int, errDetail string) error {
	return r.db.WithContext(ctx).
		Model(&models.UploadRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"booking_count": bookingCount,
			"error":         errDetail,
		}).Error
}

// Delete deletes an upload record by ID.
func (r *uploadRecordRepository) Delete(ctx context.Context, id models.ULID) error {
	return r.db.WithContext(ctx).Delete(&models.UploadRecord{}, "id = ?", id).Error
}

// Ensure uploadRecordRepository implements UploadRecordRepository.
var _ UploadRecordRepository = (*uploadRecordRepository)(nil)
