package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/hostfolio/bookpipe/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTemplateTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.MappingTemplate{}, &models.MappingTemplateRule{}, &models.Property{})
	require.NoError(t, err)

	return db
}

func sampleTemplate(name string) *models.MappingTemplate {
	return &models.MappingTemplate{
		Name: name,
		Rules: []models.MappingTemplateRule{
			{BookingField: "reservation_code", SourceExpression: "Confirmation Code", Platform: "all", Position: 0},
			{BookingField: "nightly_rate", SourceExpression: "Rate", Platform: "all", Position: 1},
			{BookingField: "nightly_rate", SourceExpression: "Rate*0.97", Platform: "airbnb", IsOverride: true, Position: 2},
		},
	}
}

func TestMappingTemplateRepo_Create(t *testing.T) {
	db := setupTemplateTestDB(t)
	repo := NewMappingTemplateRepository(db)
	ctx := context.Background()

	template := sampleTemplate("Airbnb Standard")
	err := repo.Create(ctx, template)
	require.NoError(t, err)
	assert.False(t, template.ID.IsZero())

	t.Run("invalid template rejected", func(t *testing.T) {
		err := repo.Create(ctx, &models.MappingTemplate{})
		require.Error(t, err)
		var valErr models.ErrValidation
		assert.ErrorAs(t, err, &valErr)
	})
}

func TestMappingTemplateRepo_GetByID(t *testing.T) {
	db := setupTemplateTestDB(t)
	repo := NewMappingTemplateRepository(db)
	ctx := context.Background()

	template := sampleTemplate("Find Me")
	require.NoError(t, repo.Create(ctx, template))

	t.Run("found with rules in position order", func(t *testing.T) {
		found, err := repo.GetByID(ctx, template.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Find Me", found.Name)
		require.Len(t, found.Rules, 3)
		assert.Equal(t, "reservation_code", found.Rules[0].BookingField)
		assert.Equal(t, "Rate*0.97", found.Rules[2].SourceExpression)
	})

	t.Run("not found", func(t *testing.T) {
		found, err := repo.GetByID(ctx, models.NewULID())
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestMappingTemplateRepo_GetDefault(t *testing.T) {
	db := setupTemplateTestDB(t)
	repo := NewMappingTemplateRepository(db)
	ctx := context.Background()

	t.Run("no default", func(t *testing.T) {
		found, err := repo.GetDefault(ctx)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	first := sampleTemplate("First")
	first.IsDefault = true
	require.NoError(t, repo.Create(ctx, first))
	second := sampleTemplate("Second")
	require.NoError(t, repo.Create(ctx, second))

	found, err := repo.GetDefault(ctx)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "First", found.Name)
}

func TestMappingTemplateRepo_SetDefault(t *testing.T) {
	db := setupTemplateTestDB(t)
	repo := NewMappingTemplateRepository(db)
	ctx := context.Background()

	first := sampleTemplate("First")
	first.IsDefault = true
	require.NoError(t, repo.Create(ctx, first))
	second := sampleTemplate("Second")
	require.NoError(t, repo.Create(ctx, second))

	require.NoError(t, repo.SetDefault(ctx, second.ID))

	found, err := repo.GetDefault(ctx)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Second", found.Name)

	// Previous default is cleared.
	previous, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, previous.IsDefault)

	t.Run("unknown id", func(t *testing.T) {
		err := repo.SetDefault(ctx, models.NewULID())
		assert.ErrorIs(t, err, models.ErrTemplateNotFound)
	})
}

func TestMappingTemplateRepo_GetForProperty(t *testing.T) {
	db := setupTemplateTestDB(t)
	repo := NewMappingTemplateRepository(db)
	ctx := context.Background()

	propertyID := models.NewULID()
	scoped := sampleTemplate("Lake House Rules")
	scoped.PropertyID = &propertyID
	require.NoError(t, repo.Create(ctx, scoped))
	require.NoError(t, repo.Create(ctx, sampleTemplate("Global")))

	found, err := repo.GetForProperty(ctx, propertyID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Lake House Rules", found.Name)

	missing, err := repo.GetForProperty(ctx, models.NewULID())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMappingTemplateRepo_Update(t *testing.T) {
	db := setupTemplateTestDB(t)
	repo := NewMappingTemplateRepository(db)
	ctx := context.Background()

	template := sampleTemplate("Evolving")
	require.NoError(t, repo.Create(ctx, template))

	template.Rules = []models.MappingTemplateRule{
		{BookingField: "reservation_code", SourceExpression: "Code", Platform: "all", Position: 0},
	}
	require.NoError(t, repo.Update(ctx, template))

	found, err := repo.GetByID(ctx, template.ID)
	require.NoError(t, err)
	require.Len(t, found.Rules, 1)
	assert.Equal(t, "Code", found.Rules[0].SourceExpression)
}

func TestMappingTemplateRepo_Delete(t *testing.T) {
	db := setupTemplateTestDB(t)
	repo := NewMappingTemplateRepository(db)
	ctx := context.Background()

	template := sampleTemplate("Doomed")
	require.NoError(t, repo.Create(ctx, template))
	require.NoError(t, repo.Delete(ctx, template.ID))

	found, err := repo.GetByID(ctx, template.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	var ruleCount int64
	require.NoError(t, db.Model(&models.MappingTemplateRule{}).Count(&ruleCount).Error)
	assert.Zero(t, ruleCount)
}
