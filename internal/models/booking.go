package models

// Booking is a committed reservation derived from one export-file row.
// Financial amounts are stored as decimal values in the property's
// currency; the reservation code is the natural key used to correlate
// audit records back to their booking after commit.
type Booking struct {
	BaseModel

	// PropertyID is the property this booking belongs to.
	PropertyID ULID `gorm:"type:varchar(26);not null;index" json:"property_id"`

	// UploadID links the booking to the upload it was imported from.
	UploadID ULID `gorm:"type:varchar(26);not null;index" json:"upload_id"`

	// ReservationCode is the platform's reservation identifier.
	ReservationCode string `gorm:"size:64;not null;index" json:"reservation_code"`

	// GuestName is the primary guest on the reservation.
	GuestName string `gorm:"size:255" json:"guest_name,omitempty"`

	// Platform is the classified source platform for the row.
	Platform string `gorm:"size:32;not null;index" json:"platform"`

	// CheckInDate is the arrival date exactly as it appeared in the
	// file. Stored as text so platform-specific formats survive intact.
	CheckInDate string `gorm:"size:32" json:"check_in_date,omitempty"`

	// NumNights is the length of stay.
	NumNights int `json:"num_nights,omitempty"`

	// Financial fields, derived or manually corrected before commit.
	NightlyRate    float64 `json:"nightly_rate"`
	CleaningFee    float64 `json:"cleaning_fee"`
	TotalPayout    float64 `json:"total_payout"`
	NetEarnings    float64 `json:"net_earnings"`
	SalesTax       float64 `json:"sales_tax"`
	MgmtFee        float64 `json:"mgmt_fee"`
	ExtraGuestFees float64 `json:"extra_guest_fees"`
	LodgingTax     float64 `json:"lodging_tax"`
	QST            float64 `gorm:"column:qst" json:"qst"`
	GST            float64 `gorm:"column:gst" json:"gst"`
	ChannelFee     float64 `json:"channel_fee"`
	StripeFee      float64 `json:"stripe_fee"`
	BedLinenFee    float64 `json:"bed_linen_fee"`
}

// TableName returns the table name for the Booking model.
func (Booking) TableName() string {
	return "bookings"
}

// Validate checks if the booking is valid for commit.
func (b *Booking) Validate() error {
	if b.PropertyID.IsZero() {
		return ErrValidation{Field: "property_id", Message: "property_id is required"}
	}
	if b.ReservationCode == "" {
		return ErrValidation{Field: "reservation_code", Message: "reservation_code is required"}
	}
	if b.Platform == "" {
		return ErrValidation{Field: "platform", Message: "platform is required"}
	}
	return nil
}
