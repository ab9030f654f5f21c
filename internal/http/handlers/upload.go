package handlers

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/hostfolio/bookpipe/internal/models"
	"github.com/hostfolio/bookpipe/internal/repository"
)

// UploadHandler handles upload history API endpoints.
type UploadHandler struct {
	uploads  repository.UploadRecordRepository
	bookings repository.BookingRepository
}

// NewUploadHandler creates a new upload history handler.
func NewUploadHandler(uploads repository.UploadRecordRepository, bookings repository.BookingRepository) *UploadHandler {
	return &UploadHandler{uploads: uploads, bookings: bookings}
}

// Register registers the upload history routes with the API.
func (h *UploadHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listUploads",
		Method:      "GET",
		Path:        "/api/v1/uploads",
		Summary:     "List uploads",
		Description: "Returns all upload records, newest first",
		Tags:        []string{"Uploads"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "getUpload",
		Method:      "GET",
		Path:        "/api/v1/uploads/{id}",
		Summary:     "Get upload",
		Description: "Returns an upload record by ID",
		Tags:        []string{"Uploads"},
	}, h.GetByID)

	huma.Register(api, huma.Operation{
		OperationID: "listUploadBookings",
		Method:      "GET",
		Path:        "/api/v1/uploads/{id}/bookings",
		Summary:     "List upload bookings",
		Description: "Returns the bookings committed from an upload",
		Tags:        []string{"Uploads"},
	}, h.ListBookings)
}

// UploadResponse represents an upload record in API responses.
type UploadResponse struct {
	ID           string `json:"id" doc:"Upload ID (ULID)"`
	FileName     string `json:"file_name" doc:"Uploaded file name"`
	RowCount     int    `json:"row_count" doc:"Data rows in the file"`
	BookingCount int    `json:"booking_count" doc:"Bookings committed from the file"`
	Status       string `json:"status" doc:"Upload status (pending, committed, failed)"`
	Error        string `json:"error,omitempty" doc:"Failure detail when status is failed"`
	CreatedAt    string `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt    string `json:"updated_at" doc:"Last update timestamp"`
}

// UploadFromModel converts a models.UploadRecord to UploadResponse.
func UploadFromModel(u *models.UploadRecord) UploadResponse {
	return UploadResponse{
		ID:           u.ID.String(),
		FileName:     u.FileName,
		RowCount:     u.RowCount,
		BookingCount: u.BookingCount,
		Status:       string(u.Status),
		Error:        u.Error,
		CreatedAt:    u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:    u.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ListUploadsInput is the input for listing uploads.
type ListUploadsInput struct{}

// ListUploadsOutput is the output for listing uploads.
type ListUploadsOutput struct {
	Body struct {
		Uploads []UploadResponse `json:"uploads"`
		Count   int              `json:"count"`
	}
}

// List returns all upload records.
func (h *UploadHandler) List(ctx context.Context, input *ListUploadsInput) (*ListUploadsOutput, error) {
	uploads, err := h.uploads.GetAll(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list uploads", err)
	}

	resp := &ListUploadsOutput{}
	resp.Body.Uploads = make([]UploadResponse, 0, len(uploads))
	for _, u := range uploads {
		resp.Body.Uploads = append(resp.Body.Uploads, UploadFromModel(u))
	}
	resp.Body.Count = len(uploads)

	return resp, nil
}

// GetUploadInput is the input for getting an upload record.
type GetUploadInput struct {
	ID string `path:"id" doc:"Upload ID (ULID)"`
}

// GetUploadOutput is the output for getting an upload record.
type GetUploadOutput struct {
	Body UploadResponse
}

// GetByID returns an upload record by ID.
func (h *UploadHandler) GetByID(ctx context.Context, input *GetUploadInput) (*GetUploadOutput, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid ID format", err)
	}

	upload, err := h.uploads.GetByID(ctx, id)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to get upload", err)
	}
	if upload == nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("upload %s not found", input.ID))
	}

	return &GetUploadOutput{
		Body: UploadFromModel(upload),
	}, nil
}

// ListUploadBookingsInput is the input for listing an upload's bookings.
type ListUploadBookingsInput struct {
	ID string `path:"id" doc:"Upload ID (ULID)"`
}

// ListUploadBookingsOutput is the output for listing an upload's bookings.
type ListUploadBookingsOutput struct {
	Body struct {
		Bookings []BookingResponse `json:"bookings"`
		Count    int               `json:"count"`
	}
}

// ListBookings returns the bookings committed from an upload.
func (h *UploadHandler) ListBookings(ctx context.Context, input *ListUploadBookingsInput) (*ListUploadBookingsOutput, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid ID format", err)
	}

	upload, err := h.uploads.GetByID(ctx, id)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to get upload", err)
	}
	if upload == nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("upload %s not found", input.ID))
	}

	bookings, err := h.bookings.GetByUploadID(ctx, id)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list upload bookings", err)
	}

	resp := &ListUploadBookingsOutput{}
	resp.Body.Bookings = make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp.Body.Bookings = append(resp.Body.Bookings, BookingFromModel(b))
	}
	resp.Body.Count = len(bookings)

	return resp, nil
}
