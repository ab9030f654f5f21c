package handlers

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/hostfolio/bookpipe/internal/models"
	"github.com/hostfolio/bookpipe/internal/repository"
)

// BookingHandler handles booking API endpoints.
type BookingHandler struct {
	bookings repository.BookingRepository
	audits   repository.BookingAuditRepository
}

// NewBookingHandler creates a new booking handler.
func NewBookingHandler(bookings repository.BookingRepository, audits repository.BookingAuditRepository) *BookingHandler {
	return &BookingHandler{bookings: bookings, audits: audits}
}

// Register registers the booking routes with the API.
func (h *BookingHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getBooking",
		Method:      "GET",
		Path:        "/api/v1/bookings/{id}",
		Summary:     "Get booking",
		Description: "Returns a booking by ID",
		Tags:        []string{"Bookings"},
	}, h.GetByID)

	huma.Register(api, huma.Operation{
		OperationID: "listPropertyBookings",
		Method:      "GET",
		Path:        "/api/v1/properties/{id}/bookings",
		Summary:     "List property bookings",
		Description: "Returns the bookings for a property, newest first, with pagination",
		Tags:        []string{"Bookings"},
	}, h.ListByProperty)

	huma.Register(api, huma.Operation{
		OperationID: "getBookingAudits",
		Method:      "GET",
		Path:        "/api/v1/bookings/{id}/audits",
		Summary:     "List booking audits",
		Description: "Returns the manual-edit audit trail for a booking",
		Tags:        []string{"Bookings"},
	}, h.ListAudits)
}

// BookingResponse represents a booking in API responses.
type BookingResponse struct {
	ID              string  `json:"id" doc:"Booking ID (ULID)"`
	PropertyID      string  `json:"property_id" doc:"Property the booking belongs to"`
	UploadID        string  `json:"upload_id" doc:"Upload the booking was imported from"`
	ReservationCode string  `json:"reservation_code" doc:"Platform reservation code"`
	GuestName       string  `json:"guest_name,omitempty" doc:"Primary guest"`
	Platform        string  `json:"platform" doc:"Source platform"`
	CheckInDate     string  `json:"check_in_date,omitempty" doc:"Arrival date as it appeared in the file"`
	NumNights       int     `json:"num_nights,omitempty" doc:"Length of stay"`
	NightlyRate     float64 `json:"nightly_rate"`
	CleaningFee     float64 `json:"cleaning_fee"`
	TotalPayout     float64 `json:"total_payout"`
	NetEarnings     float64 `json:"net_earnings"`
	SalesTax        float64 `json:"sales_tax"`
	MgmtFee         float64 `json:"mgmt_fee"`
	ExtraGuestFees  float64 `json:"extra_guest_fees"`
	LodgingTax      float64 `json:"lodging_tax"`
	QST             float64 `json:"qst"`
	GST             float64 `json:"gst"`
	ChannelFee      float64 `json:"channel_fee"`
	StripeFee       float64 `json:"stripe_fee"`
	BedLinenFee     float64 `json:"bed_linen_fee"`
	CreatedAt       string  `json:"created_at" doc:"Creation timestamp"`
}

// BookingFromModel converts a models.Booking to BookingResponse.
func BookingFromModel(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID.String(),
		PropertyID:      b.PropertyID.String(),
		UploadID:        b.UploadID.String(),
		ReservationCode: b.ReservationCode,
		GuestName:       b.GuestName,
		Platform:        b.Platform,
		CheckInDate:     b.CheckInDate,
		NumNights:       b.NumNights,
		NightlyRate:     b.NightlyRate,
		CleaningFee:     b.CleaningFee,
		TotalPayout:     b.TotalPayout,
		NetEarnings:     b.NetEarnings,
		SalesTax:        b.SalesTax,
		MgmtFee:         b.MgmtFee,
		ExtraGuestFees:  b.ExtraGuestFees,
		LodgingTax:      b.LodgingTax,
		QST:             b.QST,
		GST:             b.GST,
		ChannelFee:      b.ChannelFee,
		StripeFee:       b.StripeFee,
		BedLinenFee:     b.BedLinenFee,
		CreatedAt:       b.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// GetBookingInput is the input for getting a booking.
type GetBookingInput struct {
	ID string `path:"id" doc:"Booking ID (ULID)"`
}

// GetBookingOutput is the output for getting a booking.
type GetBookingOutput struct {
	Body BookingResponse
}

// GetByID returns a booking by ID.
func (h *BookingHandler) GetByID(ctx context.Context, input *GetBookingInput) (*GetBookingOutput, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid ID format", err)
	}

	booking, err := h.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to get booking", err)
	}
	if booking == nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("booking %s not found", input.ID))
	}

	return &GetBookingOutput{
		Body: BookingFromModel(booking),
	}, nil
}

// ListPropertyBookingsInput is the input for listing a property's bookings.
type ListPropertyBookingsInput struct {
	ID     string `path:"id" doc:"Property ID (ULID)"`
	Offset int    `query:"offset" doc:"Rows to skip" minimum:"0" required:"false"`
	Limit  int    `query:"limit" doc:"Maximum rows to return (default 50)" minimum:"1" maximum:"500" required:"false"`
}

// ListPropertyBookingsOutput is the output for listing a property's bookings.
type ListPropertyBookingsOutput struct {
	Body struct {
		Bookings []BookingResponse `json:"bookings"`
		Total    int64             `json:"total"`
		Offset   int               `json:"offset"`
		Limit    int               `json:"limit"`
	}
}

// ListByProperty returns the bookings for a property with pagination.
func (h *BookingHandler) ListByProperty(ctx context.Context, input *ListPropertyBookingsInput) (*ListPropertyBookingsOutput, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid ID format", err)
	}

	limit := input.Limit
	if limit == 0 {
		limit = 50
	}

	bookings, total, err := h.bookings.GetByPropertyID(ctx, id, input.Offset, limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list property bookings", err)
	}

	resp := &ListPropertyBookingsOutput{}
	resp.Body.Bookings = make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp.Body.Bookings = append(resp.Body.Bookings, BookingFromModel(b))
	}
	resp.Body.Total = total
	resp.Body.Offset = input.Offset
	resp.Body.Limit = limit

	return resp, nil
}

// BookingAuditResponse represents a booking audit record in API responses.
type BookingAuditResponse struct {
	ID            string `json:"id" doc:"Audit ID (ULID)"`
	BookingID     string `json:"booking_id" doc:"Booking the edit applies to"`
	FieldName     string `json:"field_name" doc:"Edited financial field"`
	OriginalValue string `json:"original_value" doc:"Value before the first edit"`
	NewValue      string `json:"new_value" doc:"Committed value"`
	Reason        string `json:"reason,omitempty" doc:"Operator-supplied reason"`
	CreatedAt     string `json:"created_at" doc:"Creation timestamp"`
}

// ListBookingAuditsInput is the input for listing a booking's audits.
type ListBookingAuditsInput struct {
	ID string `path:"id" doc:"Booking ID (ULID)"`
}

// ListBookingAuditsOutput is the output for listing a booking's audits.
type ListBookingAuditsOutput struct {
	Body struct {
		Audits []BookingAuditResponse `json:"audits"`
		Count  int                    `json:"count"`
	}
}

// ListAudits returns the manual-edit audit trail for a booking.
func (h *BookingHandler) ListAudits(ctx context.Context, input *ListBookingAuditsInput) (*ListBookingAuditsOutput, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid ID format", err)
	}

	booking, err := h.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to get booking", err)
	}
	if booking == nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("booking %s not found", input.ID))
	}

	audits, err := h.audits.GetByBookingID(ctx, id)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list booking audits", err)
	}

	resp := &ListBookingAuditsOutput{}
	resp.Body.Audits = make([]BookingAuditResponse, 0, len(audits))
	for _, a := range audits {
		resp.Body.Audits = append(resp.Body.Audits, BookingAuditResponse{
			ID:            a.ID.String(),
			BookingID:     a.BookingID.String(),
			FieldName:     a.FieldName,
			OriginalValue: a.OriginalValue,
			NewValue:      a.NewValue,
			Reason:        a.Reason,
			CreatedAt:     a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	resp.Body.Count = len(audits)

	return resp, nil
}
