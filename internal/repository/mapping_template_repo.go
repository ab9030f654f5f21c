// Package repository provides data access implementations.
package repository

import (
	"context"
	"fmt"

	"github.com/hostfolio/bookpipe/internal/models"
	"gorm.io/gorm"
)

// mappingTemplateRepository implements MappingTemplateRepository using GORM.
type mappingTemplateRepository struct {
	db *gorm.DB
}

// NewMappingTemplateRepository creates a new MappingTemplateRepository.
func NewMappingTemplateRepository(db *gorm.DB) MappingTemplateRepository {
	return &mappingTemplateRepository{db: db}
}

// Create creates a new mapping template with its rules.
func (r *mappingTemplateRepository) Create(ctx context.Context, template *models.MappingTemplate) error {
	if err := template.Validate(); err != nil {
		return fmt.Errorf("validating template: %w", err)
	}
	return r.db.WithContext(ctx).Create(template).Error
}

// GetByID retrieves a template by ID with its rules preloaded.
func (r *mappingTemplateRepository) GetByID(ctx context.Context, id models.ULID) (*models.MappingTemplate, error) {
	var template models.MappingTemplate
	if err := r.db.WithContext(ctx).
		Preload("Rules", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&template, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// GetByName retrieves a template by name with its rules preloaded.
func (r *mappingTemplateRepository) GetByName(ctx context.Context, name string) (*models.MappingTemplate, error) {
	var template models.MappingTemplate
	if err := r.db.WithContext(ctx).
		Preload("Rules", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&template, "name = ?", name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// GetAll retrieves all templates with their rules preloaded.
func (r *mappingTemplateRepository) GetAll(ctx context.Context) ([]*models.MappingTemplate, error) {
	var templates []*models.MappingTemplate
	if err := r.db.WithContext(ctx).
		Preload("Rules", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at ASC").
		Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// GetDefault retrieves the global default template, or nil when unset.
func (r *mappingTemplateRepository) GetDefault(ctx context.Context) (*models.MappingTemplate, error) {
	var template models.MappingTemplate
	if err := r.db.WithContext(ctx).
		Preload("Rules", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("is_default = ? AND property_id IS NULL", true).
		First(&template).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// GetForProperty retrieves the template scoped to a property.
func (r *mappingTemplateRepository) GetForProperty(ctx context.Context, propertyID models.ULID) (*models.MappingTemplate, error) {
	var template models.MappingTemplate
	if err := r.db.WithContext(ctx).
		Preload("Rules", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("property_id = ?", propertyID).
		Order("is_default DESC, created_at ASC").
		First(&template).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// SetDefault marks one template as the global default. The flag is
// cleared on all other global templates in the same transaction.
func (r *mappingTemplateRepository) SetDefault(ctx context.Context, id models.ULID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var template models.MappingTemplate
		if err := tx.First(&template, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return models.ErrTemplateNotFound
			}
			return err
		}
		if err := tx.Model(&models.MappingTemplate{}).
			Where("property_id IS NULL AND id != ?", id).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&template).Update("is_default", true).Error
	})
}

// Update updates an existing template, replacing its rules.
func (r *mappingTemplateRepository) Update(ctx context.Context, template *models.MappingTemplate) error {
	if err := template.Validate(); err != nil {
		return fmt.Errorf("validating template: %w", err)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Replace rules wholesale: reusing soft-deleted rule rows by
		// primary key would leave them invisible.
		if err := tx.Unscoped().Where("template_id = ?", template.ID).
			Delete(&models.MappingTemplateRule{}).Error; err != nil {
			return err
		}
		rules := template.Rules
		template.Rules = nil
		if err := tx.Omit("Rules").Save(template).Error; err != nil {
			template.Rules = rules
			return err
		}
		for i := range rules {
			rules[i].ID = models.ULID{}
			rules[i].TemplateID = template.ID
			if err := tx.Create(&rules[i]).Error; err != nil {
				template.Rules = rules
				return err
			}
		}
		template.Rules = rules
		return nil
	})
}

// Delete deletes a template and its rules by ID.
func (r *mappingTemplateRepository) Delete(ctx context.Context, id models.ULID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).
			Delete(&models.MappingTemplateRule{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.MappingTemplate{}, "id = ?", id).Error
	})
}

// Count returns the total number of templates.
func (r *mappingTemplateRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.MappingTemplate{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure mappingTemplateRepository implements MappingTemplateRepository.
var _ MappingTemplateRepository = (*mappingTemplateRepository)(nil)
