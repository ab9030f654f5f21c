package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/hostfolio/bookpipe/internal/engine"
	"github.com/hostfolio/bookpipe/internal/importer"
	"github.com/hostfolio/bookpipe/internal/models"
	"github.com/hostfolio/bookpipe/internal/sheet"
)

// ImportHandler handles import session API endpoints.
type ImportHandler struct {
	service        *importer.Service
	maxUploadBytes int64
}

// NewImportHandler creates a new import session handler.
func NewImportHandler(service *importer.Service, maxUploadBytes int64) *ImportHandler {
	return &ImportHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// Register registers the import session routes with the API.
func (h *ImportHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:      "createImportSession",
		Method:           "POST",
		Path:             "/api/v1/imports",
		Summary:          "Upload export file",
		Description:      "Uploads a platform export file and opens an import session",
		Tags:             []string{"Imports"},
		RequestBody:      &huma.RequestBody{Content: map[string]*huma.MediaType{"multipart/form-data": {}}},
		SkipValidateBody: true,
	}, h.CreateSession)

	huma.Register(api, huma.Operation{
		OperationID: "getImportSession",
		Method:      "GET",
		Path:        "/api/v1/imports/{id}",
		Summary:     "Get import session",
		Description: "Returns the current state of an import session",
		Tags:        []string{"Imports"},
	}, h.GetSession)

	huma.Register(api, huma.Operation{
		OperationID: "previewImportSession",
		Method:      "POST",
		Path:        "/api/v1/imports/{id}/preview",
		Summary:     "Preview import",
		Description: "Runs the derivation pipeline and returns booking drafts grouped by listing",
		Tags:        []string{"Imports"},
	}, h.Preview)

	huma.Register(api, huma.Operation{
		OperationID: "setImportPropertyMapping",
		Method:      "PUT",
		Path:        "/api/v1/imports/{id}/mappings",
		Summary:     "Set property mapping",
		Description: "Maps a listing name in the file to an existing or new property",
		Tags:        []string{"Imports"},
	}, h.SetPropertyMapping)

	huma.Register(api, huma.Operation{
		OperationID: "applyImportEdit",
		Method:      "POST",
		Path:        "/api/v1/imports/{id}/edits",
		Summary:     "Apply manual edit",
		Description: "Overlays a manual correction onto one financial field of one draft",
		Tags:        []string{"Imports"},
	}, h.ApplyEdit)

	huma.Register(api, huma.Operation{
		OperationID: "commitImportSession",
		Method:      "POST",
		Path:        "/api/v1/imports/{id}/commit",
		Summary:     "Commit import",
		Description: "Persists the previewed bookings, then correlates manual edits into audit records",
		Tags:        []string{"Imports"},
	}, h.Commit)
}

// ImportSessionResponse represents an import session in API responses.
type ImportSessionResponse struct {
	ID         string                    `json:"id" doc:"Session ID"`
	FileName   string                    `json:"file_name" doc:"Uploaded file name"`
	Status     string                    `json:"status" doc:"Session status (uploaded, previewed, committed)"`
	TemplateID string                    `json:"template_id,omitempty" doc:"Mapping template used for the preview"`
	Result     *engine.DerivationResult  `json:"result,omitempty" doc:"Derivation result from the last preview"`
	Mappings   []*engine.PropertyMapping `json:"mappings,omitempty" doc:"Listing to property mappings"`
	Edits      []engine.FieldEdit        `json:"edits,omitempty" doc:"Manual edits applied to the preview"`
	Warnings   []string                  `json:"warnings,omitempty" doc:"Non-blocking warnings from the last preview"`
	CreatedAt  string                    `json:"created_at" doc:"Session creation timestamp"`
	UpdatedAt  string                    `json:"updated_at" doc:"Last activity timestamp"`
}

// ImportSessionFromModel converts an importer.Session to ImportSessionResponse.
func ImportSessionFromModel(s *importer.Session) ImportSessionResponse {
	return ImportSessionResponse{
		ID:         s.ID,
		FileName:   s.FileName,
		Status:     string(s.Status),
		TemplateID: s.TemplateID,
		Result:     s.Result,
		Mappings:   s.Mappings,
		Edits:      s.Edits,
		Warnings:   s.Warnings,
		CreatedAt:  s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:  s.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// CreateImportSessionInput is the multipart input for uploading an export file.
type CreateImportSessionInput struct {
	RawBody multipart.Form
}

// CreateImportSessionOutput is the output for creating an import session.
type CreateImportSessionOutput struct {
	Body ImportSessionResponse
}

// CreateSession accepts an export file upload and opens a session.
func (h *ImportHandler) CreateSession(ctx context.Context, input *CreateImportSessionInput) (*CreateImportSessionOutput, error) {
	files := input.RawBody.File["file"]
	if len(files) == 0 {
		return nil, huma.Error400BadRequest("no file provided")
	}

	fileHeader := files[0]
	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		return nil, huma.NewError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds the %d byte upload limit", h.maxUploadBytes))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, huma.Error400BadRequest("failed to open uploaded file")
	}
	defer file.Close()

	session, err := h.service.CreateSession(ctx, fileHeader.Filename, file)
	if err != nil {
		if errors.Is(err, sheet.ErrEmptyFile) || errors.Is(err, sheet.ErrNoColumns) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return nil, huma.Error400BadRequest("failed to parse export file", err)
	}

	return &CreateImportSessionOutput{
		Body: ImportSessionFromModel(session),
	}, nil
}

// GetImportSessionInput is the input for getting an import session.
type GetImportSessionInput struct {
	ID string `path:"id" doc:"Session ID"`
}

// GetImportSessionOutput is the output for getting an import session.
type GetImportSessionOutput struct {
	Body ImportSessionResponse
}

// GetSession returns an import session by ID.
func (h *ImportHandler) GetSession(ctx context.Context, input *GetImportSessionInput) (*GetImportSessionOutput, error) {
	session, err := h.service.GetSession(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("import session %s not found", input.ID))
	}

	return &GetImportSessionOutput{
		Body: ImportSessionFromModel(session),
	}, nil
}

// PreviewImportSessionRequest is the request body for previewing an import.
type PreviewImportSessionRequest struct {
	TemplateID string `json:"template_id,omitempty" doc:"Mapping template to use (omit for the global default)"`
}

// PreviewImportSessionInput is the input for previewing an import.
type PreviewImportSessionInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body PreviewImportSessionRequest
}

// PreviewImportSessionOutput is the output for previewing an import.
type PreviewImportSessionOutput struct {
	Body ImportSessionResponse
}

// Preview runs the derivation pipeline over the uploaded file.
func (h *ImportHandler) Preview(ctx context.Context, input *PreviewImportSessionInput) (*PreviewImportSessionOutput, error) {
	session, err := h.service.Preview(ctx, input.ID, input.Body.TemplateID)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrSessionNotFound):
			return nil, huma.Error404NotFound(fmt.Sprintf("import session %s not found", input.ID))
		case errors.Is(err, models.ErrTemplateNotFound):
			return nil, huma.Error404NotFound("mapping template not found")
		case errors.Is(err, importer.ErrSessionCommitted):
			return nil, huma.Error409Conflict(err.Error())
		default:
			return nil, huma.Error422UnprocessableEntity("preview failed", err)
		}
	}

	return &PreviewImportSessionOutput{
		Body: ImportSessionFromModel(session),
	}, nil
}

// SetPropertyMappingRequest is the request body for mapping a listing.
type SetPropertyMappingRequest struct {
	ListingName string `json:"listing_name" doc:"Listing name from the export file" minLength:"1"`
	PropertyID  string `json:"property_id,omitempty" doc:"Existing property to map the listing to"`
	IsNew       bool   `json:"is_new,omitempty" doc:"Create a new property for this listing at commit"`
}

// SetPropertyMappingInput is the input for mapping a listing.
type SetPropertyMappingInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body SetPropertyMappingRequest
}

// SetPropertyMappingOutput is the output for mapping a listing.
type SetPropertyMappingOutput struct {
	Body ImportSessionResponse
}

// SetPropertyMapping maps a listing name to a property.
func (h *ImportHandler) SetPropertyMapping(ctx context.Context, input *SetPropertyMappingInput) (*SetPropertyMappingOutput, error) {
	session, err := h.service.SetPropertyMapping(ctx, input.ID, input.Body.ListingName, input.Body.PropertyID, input.Body.IsNew)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrSessionNotFound):
			return nil, huma.Error404NotFound(fmt.Sprintf("import session %s not found", input.ID))
		case errors.Is(err, importer.ErrSessionNotPreviewed):
			return nil, huma.Error409Conflict(err.Error())
		case errors.Is(err, models.ErrPropertyNotFound):
			return nil, huma.Error404NotFound("property not found")
		default:
			return nil, huma.Error422UnprocessableEntity("failed to set property mapping", err)
		}
	}

	return &SetPropertyMappingOutput{
		Body: ImportSessionFromModel(session),
	}, nil
}

// ApplyImportEditRequest is the request body for a manual edit.
type ApplyImportEditRequest struct {
	RowIndex  int    `json:"row_index" doc:"Zero-based source row index of the draft"`
	FieldName string `json:"field_name" doc:"Financial field to edit" minLength:"1"`
	NewValue  string `json:"new_value" doc:"Replacement value"`
	Reason    string `json:"reason,omitempty" doc:"Optional reason recorded in the audit trail"`
}

// ApplyImportEditInput is the input for a manual edit.
type ApplyImportEditInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body ApplyImportEditRequest
}

// ApplyImportEditOutput is the output for a manual edit.
type ApplyImportEditOutput struct {
	Body ImportSessionResponse
}

// ApplyEdit overlays a manual correction onto a previewed draft.
func (h *ImportHandler) ApplyEdit(ctx context.Context, input *ApplyImportEditInput) (*ApplyImportEditOutput, error) {
	edit := engine.FieldEdit{
		RowIndex:  input.Body.RowIndex,
		FieldName: input.Body.FieldName,
		NewValue:  input.Body.NewValue,
		Reason:    input.Body.Reason,
	}

	session, err := h.service.ApplyEdit(ctx, input.ID, edit)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrSessionNotFound):
			return nil, huma.Error404NotFound(fmt.Sprintf("import session %s not found", input.ID))
		case errors.Is(err, importer.ErrSessionNotPreviewed):
			return nil, huma.Error409Conflict(err.Error())
		case errors.Is(err, engine.ErrEditNotAllowed), errors.Is(err, engine.ErrEditRowOutOfRange):
			return nil, huma.Error422UnprocessableEntity(err.Error())
		default:
			return nil, huma.Error500InternalServerError("failed to apply edit", err)
		}
	}

	return &ApplyImportEditOutput{
		Body: ImportSessionFromModel(session),
	}, nil
}

// CommitImportSessionInput is the input for committing an import.
type CommitImportSessionInput struct {
	ID string `path:"id" doc:"Session ID"`
}

// CommitImportSessionOutput is the output for committing an import.
type CommitImportSessionOutput struct {
	Body importer.CommitResult
}

// Commit persists the previewed bookings and audit records.
func (h *ImportHandler) Commit(ctx context.Context, input *CommitImportSessionInput) (*CommitImportSessionOutput, error) {
	result, err := h.service.Commit(ctx, input.ID)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrSessionNotFound):
			return nil, huma.Error404NotFound(fmt.Sprintf("import session %s not found", input.ID))
		case errors.Is(err, importer.ErrSessionNotPreviewed), errors.Is(err, importer.ErrSessionCommitted):
			return nil, huma.Error409Conflict(err.Error())
		case errors.Is(err, importer.ErrMappingsIncomplete):
			return nil, huma.Error422UnprocessableEntity(err.Error())
		default:
			return nil, huma.Error500InternalServerError("commit failed", err)
		}
	}

	return &CommitImportSessionOutput{Body: *result}, nil
}
