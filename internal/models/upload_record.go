package models

// UploadStatus tracks an upload through the commit sequence.
type UploadStatus string

const (
	// UploadStatusPending is set when the upload record is created,
	// before any bookings are written.
	UploadStatusPending UploadStatus = "pending"

	// UploadStatusCommitted is set once bookings and audits are stored.
	UploadStatusCommitted UploadStatus = "committed"

	// UploadStatusFailed is set when booking creation fails after the
	// upload record was written.
	UploadStatusFailed UploadStatus = "failed"
)

// UploadRecord captures one processed export file. It is the first
// record written during commit so every booking can point back to the
// file it came from.
type UploadRecord struct {
	BaseModel

	// FileName is the original name of the uploaded file.
	FileName string `gorm:"size:512;not null" json:"file_name"`

	// RowCount is the number of data rows in the file.
	RowCount int `json:"row_count"`

	// BookingCount is the number of bookings committed from the file.
	BookingCount int `json:"booking_count"`

	// Status is the upload's position in the commit sequence.
	Status UploadStatus `gorm:"size:20;not null;default:pending;index" json:"status"`

	// Error holds the failure detail when Status is failed.
	Error string `gorm:"type:text" json:"error,omitempty"`
}

// TableName returns the table name for the UploadRecord model.
func (UploadRecord) TableName() string {
	return "upload_records"
}

// Validate checks if the upload record is valid.
func (u *UploadRecord) Validate() error {
	if u.FileName == "" {
		return ErrValidation{Field: "file_name", Message: "file_name is required"}
	}
	switch u.Status {
	case UploadStatusPending, UploadStatusCommitted, UploadStatusFailed:
		return nil
	default:
		return ErrValidation{Field: "status", Message: "unknown status: " + string(u.Status)}
	}
}
