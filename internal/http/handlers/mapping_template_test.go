package handlers

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hostfolio/bookpipe/internal/engine"
	"github.com/hostfolio/bookpipe/internal/models"
	"github.com/hostfolio/bookpipe/internal/repository"
)

func setupTemplateHandler(t *testing.T) *MappingTemplateHandler {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.MappingTemplate{}, &models.MappingTemplateRule{}))

	return NewMappingTemplateHandler(repository.NewMappingTemplateRepository(db))
}

func createTemplateRequest() CreateMappingTemplateRequest {
	return CreateMappingTemplateRequest{
		Name: "Standard Export",
		Rules: []MappingRuleRequest{
			{BookingField: engine.FieldReservationCode, SourceExpression: "Confirmation Code"},
			{BookingField: "nightly_rate", SourceExpression: "Rate"},
			{BookingField: "nightly_rate", SourceExpression: "Rate*0.97", Platform: "airbnb", IsOverride: true},
		},
	}
}

func TestMappingTemplateHandler_CreateAndGet(t *testing.T) {
	handler := setupTemplateHandler(t)
	ctx := context.Background()

	created, err := handler.Create(ctx, &CreateMappingTemplateInput{Body: createTemplateRequest()})
	require.NoError(t, err)
	require.NotEmpty(t, created.Body.ID)
	assert.Equal(t, "Standard Export", created.Body.Name)
	require.Len(t, created.Body.Rules, 3)

	// Unspecified platform defaults to all
	assert.Equal(t, "all", created.Body.Rules[0].Platform)
	assert.Equal(t, "airbnb", created.Body.Rules[2].Platform)
	assert.True(t, created.Body.Rules[2].IsOverride)

	got, err := handler.GetByID(ctx, &GetMappingTemplateInput{ID: created.Body.ID})
	require.NoError(t, err)
	assert.Equal(t, created.Body.ID, got.Body.ID)
	assert.Len(t, got.Body.Rules, 3)
}

func TestMappingTemplateHandler_GetByID_NotFound(t *testing.T) {
	handler := setupTemplateHandler(t)

	_, err := handler.GetByID(context.Background(), &GetMappingTemplateInput{ID: models.NewULID().String()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMappingTemplateHandler_GetByID_InvalidID(t *testing.T) {
	handler := setupTemplateHandler(t)

	_, err := handler.GetByID(context.Background(), &GetMappingTemplateInput{ID: "not-a-ulid"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ID format")
}

func TestMappingTemplateHandler_Create_RejectsBaseOverride(t *testing.T) {
	handler := setupTemplateHandler(t)

	req := createTemplateRequest()
	req.Rules = append(req.Rules, MappingRuleRequest{
		BookingField:     "cleaning_fee",
		SourceExpression: "Cleaning Fee",
		IsOverride:       true, // override on the all platform is invalid
	})

	_, err := handler.Create(context.Background(), &CreateMappingTemplateInput{Body: req})
	require.Error(t, err)
}

func TestMappingTemplateHandler_Update_ReplacesRules(t *testing.T) {
	handler := setupTemplateHandler(t)
	ctx := context.Background()

	created, err := handler.Create(ctx, &CreateMappingTemplateInput{Body: createTemplateRequest()})
	require.NoError(t, err)

	updateReq := CreateMappingTemplateRequest{
		Name: "Renamed",
		Rules: []MappingRuleRequest{
			{BookingField: engine.FieldReservationCode, SourceExpression: "Code"},
		},
	}

	updated, err := handler.Update(ctx, &UpdateMappingTemplateInput{ID: created.Body.ID, Body: updateReq})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Body.Name)
	require.Len(t, updated.Body.Rules, 1)
	assert.Equal(t, "Code", updated.Body.Rules[0].SourceExpression)
}

func TestMappingTemplateHandler_SetDefault(t *testing.T) {
	handler := setupTemplateHandler(t)
	ctx := context.Background()

	first, err := handler.Create(ctx, &CreateMappingTemplateInput{Body: createTemplateRequest()})
	require.NoError(t, err)

	secondReq := createTemplateRequest()
	secondReq.Name = "Alternate"
	second, err := handler.Create(ctx, &CreateMappingTemplateInput{Body: secondReq})
	require.NoError(t, err)

	_, err = handler.SetDefault(ctx, &SetDefaultMappingTemplateInput{ID: first.Body.ID})
	require.NoError(t, err)

	out, err := handler.SetDefault(ctx, &SetDefaultMappingTemplateInput{ID: second.Body.ID})
	require.NoError(t, err)
	assert.True(t, out.Body.IsDefault)

	// Previous default is cleared
	reloaded, err := handler.GetByID(ctx, &GetMappingTemplateInput{ID: first.Body.ID})
	require.NoError(t, err)
	assert.False(t, reloaded.Body.IsDefault)
}

func TestMappingTemplateHandler_Delete(t *testing.T) {
	handler := setupTemplateHandler(t)
	ctx := context.Background()

	created, err := handler.Create(ctx, &CreateMappingTemplateInput{Body: createTemplateRequest()})
	require.NoError(t, err)

	_, err = handler.Delete(ctx, &DeleteMappingTemplateInput{ID: created.Body.ID})
	require.NoError(t, err)

	_, err = handler.GetByID(ctx, &GetMappingTemplateInput{ID: created.Body.ID})
	require.Error(t, err)
}

func TestMappingTemplateHandler_ListBookingFields(t *testing.T) {
	handler := setupTemplateHandler(t)

	out, err := handler.ListBookingFields(context.Background(), &ListBookingFieldsInput{})
	require.NoError(t, err)

	names := make(map[string]BookingFieldResponse, len(out.Body.Fields))
	for _, f := range out.Body.Fields {
		names[f.Name] = f
	}

	assert.True(t, names[engine.FieldReservationCode].Required)
	assert.True(t, names["cleaning_fee"].Financial)
	assert.False(t, names["cleaning_fee"].Required)
}
