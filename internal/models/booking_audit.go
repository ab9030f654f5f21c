package models

// BookingAudit records one manual correction applied to a derived
// value before commit. Audits are written after their bookings so they
// can reference the created booking IDs.
type BookingAudit struct {
	BaseModel

	// BookingID is the committed booking the correction belongs to.
	BookingID ULID `gorm:"type:varchar(26);not null;index" json:"booking_id"`

	// FieldName is the corrected financial field.
	FieldName string `gorm:"size:64;not null" json:"field_name"`

	// OriginalValue is the value the mapping rules derived.
	OriginalValue string `gorm:"size:255" json:"original_value"`

	// NewValue is the manually entered replacement.
	NewValue string `gorm:"size:255;not null" json:"new_value"`

	// Reason is the operator's note on why the value was changed.
	Reason string `gorm:"size:1024" json:"reason,omitempty"`
}

// TableName returns the table name for the BookingAudit model.
func (BookingAudit) TableName() string {
	return "booking_audits"
}

// Validate checks if the audit record is valid.
func (a *BookingAudit) Validate() error {
	if a.BookingID.IsZero() {
		return ErrValidation{Field: "booking_id", Message: "booking_id is required"}
	}
	if a.FieldName == "" {
		return ErrValidation{Field: "field_name", Message: "field_name is required"}
	}
	return nil
}
