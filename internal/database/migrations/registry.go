package migrations

import (
	"github.com/hostfolio/bookpipe/internal/engine"
	"github.com/hostfolio/bookpipe/internal/models"
	"gorm.io/gorm"
)

// AllMigrations returns all registered migrations in order.
// - 001: Schema creation using GORM AutoMigrate
// - 002: Seed the default global mapping template
func AllMigrations() []Migration {
	return []Migration{
		migration001Schema(),
		migration002DefaultTemplate(),
	}
}

// migration001Schema creates all database tables using GORM AutoMigrate.
func migration001Schema() Migration {
	return Migration{
		Version:     "001",
		Description: "Create all database tables",
		Up: func(tx *gorm.DB) error {
			// AutoMigrate all models in dependency order
			return tx.AutoMigrate(
				&models.Property{},
				&models.MappingTemplate{},
				&models.MappingTemplateRule{},
				&models.UploadRecord{},
				&models.Booking{},
				&models.BookingAudit{},
			)
		},
		Down: func(tx *gorm.DB) error {
			// Drop tables in reverse dependency order
			tables := []string{
				"booking_audits",
				"bookings",
				"upload_records",
				"mapping_template_rules",
				"mapping_templates",
				"properties",
			}
			for _, table := range tables {
				if tx.Migrator().HasTable(table) {
					if err := tx.Migrator().DropTable(table); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
}

// migration002DefaultTemplate seeds a global default template covering
// the required booking fields against common Airbnb export headers.
func migration002DefaultTemplate() Migration {
	return Migration{
		Version:     "002",
		Description: "Seed default global mapping template",
		Up: func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.MappingTemplate{}).
				Where("is_default = ? AND property_id IS NULL", true).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return nil
			}

			template := models.MappingTemplate{
				Name:        "Standard Export",
				Description: "Default mapping for common export headers. Adjust expressions to match your files.",
				IsDefault:   true,
			}
			if err := tx.Create(&template).Error; err != nil {
				return err
			}

			seed := []struct {
				field string
				expr  string
			}{
				{engine.FieldReservationCode, "Confirmation Code"},
				{engine.FieldGuestName, "Guest Name"},
				{engine.FieldCheckInDate, "Check-in Date"},
				{engine.FieldNumNights, "Nights"},
				{engine.FieldPlatform, "Source"},
				{engine.FieldListingName, "Listing"},
			}
			for i, s := range seed {
				rule := models.MappingTemplateRule{
					TemplateID:       template.ID,
					BookingField:     s.field,
					SourceExpression: s.expr,
					Platform:         string(engine.PlatformAll),
					Position:         i,
				}
				if err := tx.Create(&rule).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Down: func(tx *gorm.DB) error {
			return tx.Where("name = ? AND is_default = ?", "Standard Export", true).
				Delete(&models.MappingTemplate{}).Error
		},
	}
}
