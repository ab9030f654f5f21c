package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/hostfolio/bookpipe/internal/engine"
	"github.com/hostfolio/bookpipe/internal/models"
	"github.com/hostfolio/bookpipe/internal/repository"
)

// MappingTemplateHandler handles mapping template API endpoints.
type MappingTemplateHandler struct {
	repo repository.MappingTemplateRepository
}

// NewMappingTemplateHandler creates a new mapping template handler.
func NewMappingTemplateHandler(repo repository.MappingTemplateRepository) *MappingTemplateHandler {
	return &MappingTemplateHandler{repo: repo}
}

// Register registers the mapping template routes with the API.
func (h *MappingTemplateHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listMappingTemplates",
		Method:      "GET",
		Path:        "/api/v1/mapping-templates",
		Summary:     "List mapping templates",
		Description: "Returns all mapping templates with their rules",
		Tags:        []string{"MappingTemplates"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "getMappingTemplate",
		Method:      "GET",
		Path:        "/api/v1/mapping-templates/{id}",
		Summary:     "Get mapping template",
		Description: "Returns a mapping template by ID",
		Tags:        []string{"MappingTemplates"},
	}, h.GetByID)

	huma.Register(api, huma.Operation{
		OperationID: "createMappingTemplate",
		Method:      "POST",
		Path:        "/api/v1/mapping-templates",
		Summary:     "Create mapping template",
		Description: "Creates a new mapping template with its rules",
		Tags:        []string{"MappingTemplates"},
	}, h.Create)

	huma.Register(api, huma.Operation{
		OperationID: "updateMappingTemplate",
		Method:      "PUT",
		Path:        "/api/v1/mapping-templates/{id}",
		Summary:     "Update mapping template",
		Description: "Replaces a mapping template and its rules",
		Tags:        []string{"MappingTemplates"},
	}, h.Update)

	huma.Register(api, huma.Operation{
		OperationID: "deleteMappingTemplate",
		Method:      "DELETE",
		Path:        "/api/v1/mapping-templates/{id}",
		Summary:     "Delete mapping template",
		Description: "Deletes a mapping template and its rules",
		Tags:        []string{"MappingTemplates"},
	}, h.Delete)

	huma.Register(api, huma.Operation{
		OperationID: "setDefaultMappingTemplate",
		Method:      "POST",
		Path:        "/api/v1/mapping-templates/{id}/set-default",
		Summary:     "Set default mapping template",
		Description: "Marks a template as the global default, clearing any previous default",
		Tags:        []string{"MappingTemplates"},
	}, h.SetDefault)

	huma.Register(api, huma.Operation{
		OperationID: "listBookingFields",
		Method:      "GET",
		Path:        "/api/v1/mapping-templates/booking-fields",
		Summary:     "List booking fields",
		Description: "Returns the booking fields rules can target, with required and financial flags",
		Tags:        []string{"MappingTemplates"},
	}, h.ListBookingFields)
}

// MappingRuleResponse represents a template rule in API responses.
type MappingRuleResponse struct {
	ID               string `json:"id" doc:"Rule ID (ULID)"`
	BookingField     string `json:"booking_field" doc:"Target booking field"`
	SourceExpression string `json:"source_expression" doc:"Column name or arithmetic formula"`
	Platform         string `json:"platform" doc:"Platform the rule applies to (all for base rules)"`
	IsOverride       bool   `json:"is_override" doc:"Whether the rule overrides a base rule for its platform"`
	Position         int    `json:"position" doc:"Rule ordering within the template"`
}

// MappingTemplateResponse represents a mapping template in API responses.
type MappingTemplateResponse struct {
	ID          string                `json:"id" doc:"Template ID (ULID)"`
	Name        string                `json:"name" doc:"Template name"`
	Description string                `json:"description,omitempty" doc:"Template description"`
	PropertyID  *string               `json:"property_id,omitempty" doc:"Property the template is scoped to (omitted for global templates)"`
	IsDefault   bool                  `json:"is_default" doc:"Whether this is the global default template"`
	Rules       []MappingRuleResponse `json:"rules"`
	CreatedAt   string                `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt   string                `json:"updated_at" doc:"Last update timestamp"`
}

// MappingTemplateFromModel converts a models.MappingTemplate to MappingTemplateResponse.
func MappingTemplateFromModel(t *models.MappingTemplate) MappingTemplateResponse {
	resp := MappingTemplateResponse{
		ID:          t.ID.String(),
		Name:        t.Name,
		Description: t.Description,
		IsDefault:   t.IsDefault,
		Rules:       make([]MappingRuleResponse, 0, len(t.Rules)),
		CreatedAt:   t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   t.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if t.PropertyID != nil {
		s := t.PropertyID.String()
		resp.PropertyID = &s
	}
	for _, r := range t.Rules {
		resp.Rules = append(resp.Rules, MappingRuleResponse{
			ID:               r.ID.String(),
			BookingField:     r.BookingField,
			SourceExpression: r.SourceExpression,
			Platform:         r.Platform,
			IsOverride:       r.IsOverride,
			Position:         r.Position,
		})
	}
	return resp
}

// ListMappingTemplatesInput is the input for listing mapping templates.
type ListMappingTemplatesInput struct{}

// ListMappingTemplatesOutput is the output for listing mapping templates.
type ListMappingTemplatesOutput struct {
	Body struct {
		Templates []MappingTemplateResponse `json:"templates"`
		Count     int                       `json:"count"`
	}
}

// List returns all mapping templates.
func (h *MappingTemplateHandler) List(ctx context.Context, input *ListMappingTemplatesInput) (*ListMappingTemplatesOutput, error) {
	templates, err := h.repo.GetAll(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list mapping templates", err)
	}

	resp := &ListMappingTemplatesOutput{}
	resp.Body.Templates = make([]MappingTemplateResponse, 0, len(templates))
	for _, t := range templates {
		resp.Body.Templates = append(resp.Body.Templates, MappingTemplateFromModel(t))
	}
	resp.Body.Count = len(templates)

	return resp, nil
}

// GetMappingTemplateInput is the input for getting a mapping template.
type GetMappingTemplateInput struct {
	ID string `path:"id" doc:"Template ID (ULID)"`
}

// GetMappingTemplateOutput is the output for getting a mapping template.
type GetMappingTemplateOutput struct {
	Body MappingTemplateResponse
}

// GetByID returns a mapping template by ID.
func (h *MappingTemplateHandler) GetByID(ctx context.Context, input *GetMappingTemplateInput) (*GetMappingTemplateOutput, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid ID format", err)
	}

	template, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to get mapping template", err)
	}
	if template == nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("mapping template %s not found", input.ID))
	}

	return &GetMappingTemplateOutput{
		Body: MappingTemplateFromModel(template),
	}, nil
}

// MappingRuleRequest is the request body for a template rule.
type MappingRuleRequest struct {
	BookingField     string `json:"booking_field" doc:"Target booking field" minLength:"1"`
	SourceExpression string `json:"source_expression" doc:"Column name or arithmetic formula" minLength:"1"`
	Platform         string `json:"platform,omitempty" doc:"Platform the rule applies to (default: all)"`
	IsOverride       bool   `json:"is_override,omitempty" doc:"Whether the rule overrides a base rule for its platform"`
}

// CreateMappingTemplateRequest is the request body for creating a mapping template.
type CreateMappingTemplateRequest struct {
	Name        string               `json:"name" doc:"Template name" minLength:"1" maxLength:"255"`
	Description string               `json:"description,omitempty" doc:"Template description" maxLength:"1024"`
	PropertyID  *string              `json:"property_id,omitempty" doc:"Property to scope the template to (omit for global)"`
	IsDefault   bool                 `json:"is_default,omitempty" doc:"Whether this is the global default template"`
	Rules       []MappingRuleRequest `json:"rules" doc:"Mapping rules" minItems:"1"`
}

// CreateMappingTemplateInput is the input for creating a mapping template.
type CreateMappingTemplateInput struct {
	Body CreateMappingTemplateRequest
}

// CreateMappingTemplateOutput is the output for creating a mapping template.
type CreateMappingTemplateOutput struct {
	Body MappingTemplateResponse
}

// Create creates a new mapping template.
func (h *MappingTemplateHandler) Create(ctx context.Context, input *CreateMappingTemplateInput) (*CreateMappingTemplateOutput, error) {
	template, err := templateFromRequest(input.Body.Name, input.Body.Description, input.Body.PropertyID, input.Body.IsDefault, input.Body.Rules)
	if err != nil {
		return nil, err
	}

	if err := h.repo.Create(ctx, template); err != nil {
		var verr models.ErrValidation
		if errors.As(err, &verr) {
			return nil, huma.Error422UnprocessableEntity(verr.Error())
		}
		return nil, huma.Error500InternalServerError("failed to create mapping template", err)
	}

	return &CreateMappingTemplateOutput{
		Body: MappingTemplateFromModel(template),
	}, nil
}

// UpdateMappingTemplateInput is the input for updating a mapping template.
type UpdateMappingTemplateInput struct {
	ID   string `path:"id" doc:"Template ID (ULID)"`
	Body CreateMappingTemplateRequest
}

// UpdateMappingTemplateOutput is the output for updating a mapping template.
type UpdateMappingTemplateOutput struct {
	Body MappingTemplateResponse
}

// Update replaces a mapping template and its rules.
func (h *MappingTemplateHandler) Update(ctx context.Context, input *UpdateMappingTemplateInput) (*UpdateMappingTemplateOutput, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid ID format", err)
	}

	existing, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to get mapping template", err)
	}
	if existing == nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("mapping template %s not found", input.ID))
	}

	template, err := templateFromRequest(input.Body.Name, input.Body.Description, input.Body.PropertyID, input.Body.IsDefault, input.Body.Rules)
	if err != nil {
		return nil, err
	}
	template.ID = id
	template.CreatedAt = existing.CreatedAt

	if err := h.repo.Update(ctx, template); err != nil {
		var verr models.ErrValidation
		if errors.As(err, &verr) {
			return nil, huma.Error422UnprocessableEntity(verr.Error())
		}
		return nil, huma.Error500InternalServerError("failed to update mapping template", err)
	}

	updated, err := h.repo.GetByID(ctx, id)
	if err != nil || updated == nil {
		return nil, huma.Error500InternalServerError("failed to reload mapping template", err)
	}

	return &UpdateMappingTemplateOutput{
		Body: MappingTemplateFromModel(updated),
	}, nil
}

// DeleteMappingTemplateInput is the input for deleting a mapping template.
type DeleteMappingTemplateInput struct {
	ID string `path:"id" doc:"Template ID (ULID)"`
}

// DeleteMappingTemplateOutput is the output for deleting a mapping template.
type DeleteMappingTemplateOutput struct {
	Body struct {
		Message string `json:"message"`
	}
}

// Delete deletes a mapping template.
func (h *MappingTemplateHandler) Delete(ctx context.Context, input *DeleteMappingTemplateInput) (*DeleteMappingTemplateOutput, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid ID format", err)
	}

	template, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to get mapping template", err)
	}
	if template == nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("mapping template %s not found", input.ID))
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		return nil, huma.Error500InternalServerError("failed to delete mapping template", err)
	}

	resp := &DeleteMappingTemplateOutput{}
	resp.Body.Message = fmt.Sprintf("mapping template %s deleted", input.ID)
	return resp, nil
}

// SetDefaultMappingTemplateInput is the input for setting the default template.
type SetDefaultMappingTemplateInput struct {
	ID string `path:"id" doc:"Template ID (ULID)"`
}

// SetDefaultMappingTemplateOutput is the output for setting the default template.
type SetDefaultMappingTemplateOutput struct {
	Body MappingTemplateResponse
}

// SetDefault marks a template as the global default.
func (h *MappingTemplateHandler) SetDefault(ctx context.Context, input *SetDefaultMappingTemplateInput) (*SetDefaultMappingTemplateOutput, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid ID format", err)
	}

	if err := h.repo.SetDefault(ctx, id); err != nil {
		if errors.Is(err, models.ErrTemplateNotFound) {
			return nil, huma.Error404NotFound(fmt.Sprintf("mapping template %s not found", input.ID))
		}
		return nil, huma.Error500InternalServerError("failed to set default mapping template", err)
	}

	template, err := h.repo.GetByID(ctx, id)
	if err != nil || template == nil {
		return nil, huma.Error500InternalServerError("failed to reload mapping template", err)
	}

	return &SetDefaultMappingTemplateOutput{
		Body: MappingTemplateFromModel(template),
	}, nil
}

// BookingFieldResponse describes one booking field rules can target.
type BookingFieldResponse struct {
	Name      string `json:"name"`
	Required  bool   `json:"required"`
	Financial bool   `json:"financial"`
}

// ListBookingFieldsInput is the input for listing booking fields.
type ListBookingFieldsInput struct{}

// ListBookingFieldsOutput is the output for listing booking fields.
type ListBookingFieldsOutput struct {
	Body struct {
		Fields []BookingFieldResponse `json:"fields"`
	}
}

// ListBookingFields returns the booking fields rules can target.
func (h *MappingTemplateHandler) ListBookingFields(ctx context.Context, input *ListBookingFieldsInput) (*ListBookingFieldsOutput, error) {
	resp := &ListBookingFieldsOutput{}
	for _, f := range engine.RequiredFields {
		resp.Body.Fields = append(resp.Body.Fields, BookingFieldResponse{
			Name:     f,
			Required: true,
		})
	}
	for _, f := range engine.FinancialFields {
		resp.Body.Fields = append(resp.Body.Fields, BookingFieldResponse{
			Name:      f,
			Financial: true,
		})
	}
	return resp, nil
}

// templateFromRequest builds a template model from request fields.
func templateFromRequest(name, description string, propertyID *string, isDefault bool, rules []MappingRuleRequest) (*models.MappingTemplate, error) {
	template := &models.MappingTemplate{
		Name:        name,
		Description: description,
		IsDefault:   isDefault,
	}

	if propertyID != nil && *propertyID != "" {
		id, err := models.ParseULID(*propertyID)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid property_id format", err)
		}
		template.PropertyID = &id
	}

	template.Rules = make([]models.MappingTemplateRule, 0, len(rules))
	for i, r := range rules {
		platform := r.Platform
		if platform == "" {
			platform = string(engine.PlatformAll)
		}
		template.Rules = append(template.Rules, models.MappingTemplateRule{
			BookingField:     r.BookingField,
			SourceExpression: r.SourceExpression,
			Platform:         platform,
			IsOverride:       r.IsOverride,
			Position:         i,
		})
	}

	return template, nil
}
