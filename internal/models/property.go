package models

// Property is a managed rental unit. Listing names observed in export
// files are resolved to properties before bookings are committed.
type Property struct {
	BaseModel

	// Name is the operator-facing property name.
	Name string `gorm:"size:255;not null" json:"name"`

	// ListingName is the name platforms use for this property in their
	// export files. Matching is case-insensitive.
	ListingName string `gorm:"size:255;index" json:"listing_name,omitempty"`

	// Address is the property's street address.
	Address string `gorm:"size:512" json:"address,omitempty"`

	// Currency is the ISO 4217 code bookings for this property settle in.
	Currency string `gorm:"size:3;default:CAD" json:"currency"`

	// IsActive determines whether the property accepts new bookings.
	IsActive bool `gorm:"default:true" json:"is_active"`
}

// TableName returns the table name for the Property model.
func (Property) TableName() string {
	return "properties"
}

// Validate checks if the property configuration is valid.
func (p *Property) Validate() error {
	if p.Name == "" {
		return ErrValidation{Field: "name", Message: "name is required"}
	}
	if len(p.Currency) != 3 {
		return ErrValidation{Field: "currency", Message: "currency must be a 3-letter ISO code"}
	}
	return nil
}
