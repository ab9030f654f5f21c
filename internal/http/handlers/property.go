package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/hostfolio/bookpipe/internal/models"
	"github.com/hostfolio/bookpipe/internal/repository"
)

// PropertyHandler handles property API endpoints.
type PropertyHandler struct {
	repo repository.PropertyRepository
}

// NewPropertyHandler creates a new property handler.
func NewPropertyHandler(repo repository.PropertyRepository) *PropertyHandler {
	return &PropertyHandler{repo: repo}
}

// Register registers the property routes with the API.
func (h *PropertyHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listProperties",
		Method:      "GET",
		Path:        "/api/v1/properties",
		Summary:     "List properties",
		Description: "Returns all properties, optionally filtered to active ones",
		Tags:        []string{"Properties"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "getProperty",
		Method:      "GET",
		Path:        "/api/v1/properties/{id}",
		Summary:     "Get property",
		Description: "Returns a property by ID",
		Tags:        []string{"Properties"},
	}, h.GetByID)

	huma.Register(api, huma.Operation{
		OperationID: "createProperty",
		Method:      "POST",
		Path:        "/api/v1/properties",
		Summary:     "Create property",
		Description: "Creates a new property",
		Tags:        []string{"Properties"},
	}, h.Create)

	huma.Register(api, huma.Operation{
		OperationID: "updateProperty",
		Method:      "PUT",
		Path:        "/api/v1/properties/{id}",
		Summary:     "Update property",
		Description: "Updates an existing property",
		Tags:        []string{"Properties"},
	}, h.Update)

	huma.Register(api, huma.Operation{
		OperationID: "deleteProperty",
		Method:      "DELETE",
		Path:        "/api/v1/properties/{id}",
		Summary:     "Delete property",
		Description: "Deletes a property",
		Tags:        []string{"Properties"},
	}, h.Delete)
}

// PropertyResponse represents a property in API responses.
type PropertyResponse struct {
	ID          string `json:"id" doc:"Property ID (ULID)"`
	Name        string `json:"name" doc:"Property name"`
	ListingName string `json:"listing_name,omitempty" doc:"Listing name as it appears in export files"`
	Address     string `json:"address,omitempty" doc:"Street address"`
	Currency    string `json:"currency" doc:"ISO 4217 currency code"`
	IsActive    bool   `json:"is_active" doc:"Whether the property is active"`
	CreatedAt   string `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt   string `json:"updated_at" doc:"Last update timestamp"`
}

// PropertyFromModel converts a models.Property to PropertyResponse.
func PropertyFromModel(p *models.Property) PropertyResponse {
	return PropertyResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		ListingName: p.ListingName,
		Address:     p.Address,
		Currency:    p.Currency,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ListPropertiesInput is the input for listing properties.
type ListPropertiesInput struct {
	Active string `query:"active" doc:"Filter to active properties (true or false)" required:"false" enum:"true,false,"`
}

// ListPropertiesOutput is the output for listing properties.
type ListPropertiesOutput struct {
	Body struct {
		Properties []PropertyResponse `json:"properties"`
		Count      int                `json:"count"`
	}
}

// List returns all properties.
func (h *PropertyHandler) List(ctx context.Context, input *ListPropertiesInput) (*ListPropertiesOutput, error) {
	var properties []*models.Property
	var err error

	if input.Active == "true" {
		properties, err = h.repo.GetActive(ctx)
	} else {
		properties, err = h.repo.GetAll(ctx)
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list properties", err)
	}

	resp := &ListPropertiesOutput{}
	resp.Body.Properties = make([]PropertyResponse, 0, len(properties))
	for _, p := range properties {
		resp.Body.Properties = append(resp.Body.Properties, PropertyFromModel(p))
	}
	resp.Body.Count = len(properties)

	return resp, nil
}

// GetPropertyInput is the input for getting a property.
type GetPropertyInput struct {
	ID string `path:"id" doc:"Property ID (ULID)"`
}

// GetPropertyOutput is the output for getting a property.
type GetPropertyOutput struct {
	Body PropertyResponse
}

// GetByID returns a property by ID.
func (h *PropertyHandler) GetByID(ctx context.Context, input *GetPropertyInput) (*GetPropertyOutput, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid ID format", err)
	}

	property, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to get property", err)
	}
	if property == nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("property %s not found", input.ID))
	}

	return &GetPropertyOutput{
		Body: PropertyFromModel(property),
	}, nil
}

// CreatePropertyRequest is the request body for creating a property.
type CreatePropertyRequest struct {
	Name        string `json:"name" doc:"Property name" minLength:"1" maxLength:"255"`
	ListingName string `json:"listing_name,omitempty" doc:"Listing name as it appears in export files" maxLength:"255"`
	Address     string `json:"address,omitempty" doc:"Street address" maxLength:"1024"`
	Currency    string `json:"currency,omitempty" doc:"ISO 4217 currency code (default: CAD)" maxLength:"3"`
	IsActive    *bool  `json:"is_active,omitempty" doc:"Whether the property is active (default: true)"`
}

// CreatePropertyInput is the input for creating a property.
type CreatePropertyInput struct {
	Body CreatePropertyRequest
}

// CreatePropertyOutput is the output for creating a property.
type CreatePropertyOutput struct {
	Body PropertyResponse
}

// Create creates a new property.
func (h *PropertyHandler) Create(ctx context.Context, input *CreatePropertyInput) (*CreatePropertyOutput, error) {
	property := &models.Property{
		Name:        input.Body.Name,
		ListingName: input.Body.ListingName,
		Address:     input.Body.Address,
		Currency:    input.Body.Currency,
		IsActive:    true,
	}
	if property.Currency == "" {
		property.Currency = "CAD"
	}
	if input.Body.IsActive != nil {
		property.IsActive = *input.Body.IsActive
	}

	if err := h.repo.Create(ctx, property); err != nil {
		var verr models.ErrValidation
		if errors.As(err, &verr) {
			return nil, huma.Error422UnprocessableEntity(verr.Error())
		}
		return nil, huma.Error500InternalServerError("failed to create property", err)
	}

	return &CreatePropertyOutput{
		Body: PropertyFromModel(property),
	}, nil
}

// UpdatePropertyRequest is the request body for updating a property.
type UpdatePropertyRequest struct {
	Name        *string `json:"name,omitempty" doc:"Property name" maxLength:"255"`
	ListingName *string `json:"listing_name,omitempty" doc:"Listing name as it appears in export files" maxLength:"255"`
	Address     *string `json:"address,omitempty" doc:"Street address" maxLength:"1024"`
	Currency    *string `json:"currency,omitempty" doc:"ISO 4217 currency code" maxLength:"3"`
	IsActive    *bool   `json:"is_active,omitempty" doc:"Whether the property is active"`
}

// UpdatePropertyInput is the input for updating a property.
type UpdatePropertyInput struct {
	ID   string `path:"id" doc:"Property ID (ULID)"`
	Body UpdatePropertyRequest
}

// UpdatePropertyOutput is the output for updating a property.
type UpdatePropertyOutput struct {
	Body PropertyResponse
}

// Update updates an existing property.
func (h *PropertyHandler) Update(ctx context.Context, input *UpdatePropertyInput) (*UpdatePropertyOutput, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid ID format", err)
	}

	property, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to get property", err)
	}
	if property == nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("property %s not found", input.ID))
	}

	if input.Body.Name != nil {
		property.Name = *input.Body.Name
	}
	if input.Body.ListingName != nil {
		property.ListingName = *input.Body.ListingName
	}
	if input.Body.Address != nil {
		property.Address = *input.Body.Address
	}
	if input.Body.Currency != nil {
		property.Currency = *input.Body.Currency
	}
	if input.Body.IsActive != nil {
		property.IsActive = *input.Body.IsActive
	}

	if err := h.repo.Update(ctx, property); err != nil {
		var verr models.ErrValidation
		if errors.As(err, &verr) {
			return nil, huma.Error422UnprocessableEntity(verr.Error())
		}
		return nil, huma.Error500InternalServerError("failed to update property", err)
	}

	return &UpdatePropertyOutput{
		Body: PropertyFromModel(property),
	}, nil
}

// DeletePropertyInput is the input for deleting a property.
type DeletePropertyInput struct {
	ID string `path:"id" doc:"Property ID (ULID)"`
}

// DeletePropertyOutput is the output for deleting a property.
type DeletePropertyOutput struct {
	Body struct {
		Message string `json:"message"`
	}
}

// Delete deletes a property.
func (h *PropertyHandler) Delete(ctx context.Context, input *DeletePropertyInput) (*DeletePropertyOutput, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid ID format", err)
	}

	property, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to get property", err)
	}
	if property == nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("property %s not found", input.ID))
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		return nil, huma.Error500InternalServerError("failed to delete property", err)
	}

	resp := &DeletePropertyOutput{}
	resp.Body.Message = fmt.Sprintf("property %s deleted", input.ID)
	return resp, nil
}
