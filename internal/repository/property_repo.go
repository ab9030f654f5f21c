package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/hostfolio/bookpipe/internal/models"
	"gorm.io/gorm"
)

// propertyRepository implements PropertyRepository using GORM.
type propertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository creates a new PropertyRepository.
func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

// Create creates a new property.
func (r *propertyRepository) Create(ctx context.Context, property *models.Property) error {
	if err := property.Validate(); err != nil {
		return fmt.Errorf("validating property: %w", err)
	}
	return r.db.WithContext(ctx).Create(property).Error
}

// GetByID retrieves a property by ID.
func (r *propertyRepository) GetByID(ctx context.Context, id models.ULID) (*models.Property, error) {
	var property models.Property
	if err := r.db.WithContext(ctx).First(&property, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &property, nil
}

// GetByListingName retrieves a property by its platform listing name.
func (r *propertyRepository) GetByListingName(ctx context.Context, listingName string) (*models.Property, error) {
	var property models.Property
	if err := r.db.WithContext(ctx).
		Where("LOWER(listing_name) = ?", strings.ToLower(strings.TrimSpace(listingName))).
		First(&property).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &property, nil
}

// GetAll retrieves all properties.
func (r *propertyRepository) GetAll(ctx context.Context) ([]*models.Property, error) {
	var properties []*models.Property
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// GetActive retrieves all active properties.
func (r *propertyRepository) GetActive(ctx context.Context) ([]*models.Property, error) {
	var properties []*models.Property
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// Update updates an existing property.
func (r *propertyRepository) Update(ctx context.Context, property *models.Property) error {
	if err := property.Validate(); err != nil {
		return fmt.Errorf("validating property: %w", err)
	}
	return r.db.WithContext(ctx).Save(property).Error
}

// Delete deletes a property by ID.
func (r *propertyRepository) Delete(ctx context.Context, id models.ULID) error {
	return r.db.WithContext(ctx).Delete(&models.Property{}, "id = ?", id).Error
}

// Ensure propertyRepository implements PropertyRepository.
var _ PropertyRepository = (*propertyRepository)(nil)
