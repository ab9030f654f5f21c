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

func setupBookingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Booking{}, &models.BookingAudit{}, &models.UploadRecord{})
	require.NoError(t, err)

	return db
}

func sampleBooking(code string) *models.Booking {
	return &models.Booking{
		PropertyID:      models.NewULID(),
		UploadID:        models.NewULID(),
		ReservationCode: code,
		GuestName:       "Jane Mercer",
		Platform:        "airbnb",
		CheckInDate:     "2024-03-15",
		NumNights:       3,
		NightlyRate:     97,
		CleaningFee:     85,
		TotalPayout:     376,
	}
}

func TestBookingRepo_CreateBatch(t *testing.T) {
	db := setupBookingTestDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	uploadID := models.NewULID()
	bookings := []*models.Booking{
		sampleBooking("HMABC123"),
		sampleBooking("HMDEF456"),
		sampleBooking("VB-9911"),
	}
	for _, b := range bookings {
		b.UploadID = uploadID
	}

	require.NoError(t, repo.CreateBatch(ctx, bookings))
	for _, b := range bookings {
		assert.False(t, b.ID.IsZero())
	}

	byUpload, err := repo.GetByUploadID(ctx, uploadID)
	require.NoError(t, err)
	assert.Len(t, byUpload, 3)

	t.Run("empty batch is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.CreateBatch(ctx, nil))
	})

	t.Run("invalid booking rejects whole batch", func(t *testing.T) {
		err := repo.CreateBatch(ctx, []*models.Booking{{Platform: "airbnb"}})
		require.Error(t, err)
	})
}

func TestBookingRepo_GetByReservationCode(t *testing.T) {
	db := setupBookingTestDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleBooking("HMABC123")))
	require.NoError(t, repo.Create(ctx, sampleBooking("HMABC123")))

	t.Run("case-insensitive match", func(t *testing.T) {
		found, err := repo.GetByReservationCode(ctx, " hmabc123 ")
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("no match", func(t *testing.T) {
		found, err := repo.GetByReservationCode(ctx, "NOPE")
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestBookingRepo_GetByPropertyID(t *testing.T) {
	db := setupBookingTestDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	propertyID := models.NewULID()
	for _, code := range []string{"A1", "A2", "A3"} {
		b := sampleBooking(code)
		b.PropertyID = propertyID
		require.NoError(t, repo.Create(ctx, b))
	}
	require.NoError(t, repo.Create(ctx, sampleBooking("OTHER")))

	bookings, total, err := repo.GetByPropertyID(ctx, propertyID, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, bookings, 2)
}

func TestBookingAuditRepo_CreateBatchAndGet(t *testing.T) {
	db := setupBookingTestDB(t)
	repo := NewBookingAuditRepository(db)
	ctx := context.Background()

	bookingID := models.NewULID()
	audits := []*models.BookingAudit{
		{BookingID: bookingID, FieldName: "cleaning_fee", OriginalValue: "85", NewValue: "95", Reason: "pet cleaning"},
		{BookingID: bookingID, FieldName: "total_payout", OriginalValue: "376", NewValue: "386"},
	}
	require.NoError(t, repo.CreateBatch(ctx, audits))

	found, err := repo.GetByBookingID(ctx, bookingID)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "cleaning_fee", found[0].FieldName)
	assert.Equal(t, "95", found[0].NewValue)

	missing, err := repo.GetByBookingID(ctx, models.NewULID())
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestUploadRecordRepo_Lifecycle(t *testing.T) {
	db := setupBookingTestDB(t)
	repo := NewUploadRecordRepository(db)
	ctx := context.Background()

	record := &models.UploadRecord{
		FileName: "airbnb-march.csv",
		RowCount: 8,
		Status:   models.UploadStatusPending,
	}
	require.NoError(t, repo.Create(ctx, record))
	assert.False(t, record.ID.IsZero())

	require.NoError(t, repo.UpdateStatus(ctx, record.ID, models.UploadStatusCommitted, 8, ""))

	found, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, models.UploadStatusCommitted, found.Status)
	assert.Equal(t, 8, found.BookingCount)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Delete(ctx, record.ID))
	gone, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
