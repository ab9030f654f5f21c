package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hostfolio/bookpipe/internal/engine"
	"github.com/hostfolio/bookpipe/internal/models"
	"github.com/hostfolio/bookpipe/internal/repository"
	"github.com/hostfolio/bookpipe/internal/sheet"
)

// Service drives import sessions: upload, preview, listing resolution,
// manual edits, and the commit sequence.
type Service struct {
	deriver    *engine.Deriver
	templates  repository.MappingTemplateRepository
	properties repository.PropertyRepository
	bookings   repository.BookingRepository
	audits     repository.BookingAuditRepository
	uploads    repository.UploadRecordRepository
	store      *sessionStore
	logger     *slog.Logger
}

// NewService creates an import service.
func NewService(
	templates repository.MappingTemplateRepository,
	properties repository.PropertyRepository,
	bookings repository.BookingRepository,
	audits repository.BookingAuditRepository,
	uploads repository.UploadRecordRepository,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		deriver:    engine.NewDeriver(logger),
		templates:  templates,
		properties: properties,
		bookings:   bookings,
		audits:     audits,
		uploads:    uploads,
		store:      newSessionStore(),
		logger:     logger,
	}
}

// CreateSession parses an uploaded file and opens a new import session.
func (s *Service) CreateSession(ctx context.Context, fileName string, r io.Reader) (*Session, error) {
	catalog, err := sheet.ReadCatalog(r)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", fileName, err)
	}

	now := time.Now()
	session := &Session{
		ID:        uuid.NewString(),
		FileName:  fileName,
		Status:    SessionStatusUploaded,
		Catalog:   catalog,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.store.put(session)

	s.logger.InfoContext(ctx, "import session created",
		slog.String("session_id", session.ID),
		slog.String("file", fileName),
		slog.Int("rows", len(catalog.Rows)),
		slog.Int("columns", len(catalog.Columns)),
	)
	return session, nil
}

// GetSession returns a session by ID.
func (s *Service) GetSession(id string) (*Session, error) {
	session, ok := s.store.get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Preview derives booking drafts for a session. templateID selects a
// stored template; when empty the global default is used. Rows whose
// listing resolves to a property with a dedicated template are derived
// with that template instead.
//
// Re-running preview rebuilds drafts from scratch and discards any
// edits applied to the previous preview.
func (s *Service) Preview(ctx context.Context, sessionID, templateID string) (*Session, error) {
	session, ok := s.store.get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.Status == SessionStatusCommitted {
		return nil, ErrSessionCommitted
	}

	template, err := s.resolveTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	base := template.RuleSet()
	selector := s.propertySelector(ctx, base)

	result, err := s.deriver.Derive(session.Catalog, base, selector)
	if err != nil {
		return nil, fmt.Errorf("deriving drafts: %w", err)
	}

	session.TemplateID = template.ID.String()
	session.Result = result
	session.Mappings = engine.BuildPropertyMappings(result.Drafts)
	session.Edits = nil
	session.Warnings = nil
	session.Status = SessionStatusPreviewed
	session.UpdatedAt = time.Now()

	// Pre-fill mappings for listings already linked to a property.
	for _, mapping := range session.Mappings {
		property, err := s.properties.GetByListingName(ctx, mapping.ListingName)
		if err != nil {
			return nil, fmt.Errorf("resolving listing %q: %w", mapping.ListingName, err)
		}
		if property != nil {
			mapping.PropertyID = property.ID.String()
		}
	}

	if dupes := engine.DuplicateReservationCodes(s.sentPayloads(session)); len(dupes) > 0 {
		warning := "duplicate reservation codes in file: " + strings.Join(dupes, ", ")
		session.Warnings = append(session.Warnings, warning)
		s.logger.WarnContext(ctx, "duplicate reservation codes detected",
			slog.String("session_id", session.ID),
			slog.Any("codes", dupes),
		)
	}

	return session, nil
}

// resolveTemplate loads the requested template, or the global default
// when no ID is given.
func (s *Service) resolveTemplate(ctx context.Context, templateID string) (*models.MappingTemplate, error) {
	if templateID != "" {
		id, err := models.ParseULID(templateID)
		if err != nil {
			return nil, fmt.Errorf("invalid template id: %w", err)
		}
		template, err := s.templates.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading template: %w", err)
		}
		if template == nil {
			return nil, models.ErrTemplateNotFound
		}
		return template, nil
	}

	template, err := s.templates.GetDefault(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading default template: %w", err)
	}
	if template == nil {
		return nil, models.ErrTemplateNotFound
	}
	return template, nil
}

// propertySelector returns the per-listing rule set chooser: a listing
// whose property carries a dedicated template is derived with it; all
// other rows fall back to the base set.
func (s *Service) propertySelector(ctx context.Context, base engine.RuleSet) engine.RuleSetSelector {
	cache := make(map[string]engine.RuleSet)
	return func(listingName string) engine.RuleSet {
		key := strings.ToLower(strings.TrimSpace(listingName))
		if key == "" {
			return nil
		}
		if rules, ok := cache[key]; ok {
			return rules
		}

		var rules engine.RuleSet
		property, err := s.properties.GetByListingName(ctx, listingName)
		if err != nil {
			s.logger.WarnContext(ctx, "listing lookup failed; using base rules",
				slog.String("listing", listingName),
				slog.String("error", err.Error()),
			)
		} else if property != nil {
			template, err := s.templates.GetForProperty(ctx, property.ID)
			if err != nil {
				s.logger.WarnContext(ctx, "property template lookup failed; using base rules",
					slog.String("listing", listingName),
					slog.String("error", err.Error()),
				)
			} else if template != nil {
				candidate := template.RuleSet()
				// A property template missing required fields cannot
				// drive a commit; fall back rather than failing rows.
				if len(candidate.MissingRequiredFields()) == 0 && candidate.Validate() == nil {
					rules = candidate
				}
			}
		}

		cache[key] = rules
		return rules
	}
}

// SetPropertyMapping assigns a listing to an existing property or marks
// it for creation at commit.
func (s *Service) SetPropertyMapping(ctx context.Context, sessionID, listingName, propertyID string, isNew bool) (*Session, error) {
	session, ok := s.store.get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.Status == SessionStatusCommitted {
		return nil, ErrSessionCommitted
	}
	if session.Result == nil {
		return nil, ErrSessionNotPreviewed
	}

	mapping := session.mapping(listingName)
	if mapping == nil {
		return nil, fmt.Errorf("unknown listing: %s", listingName)
	}

	if propertyID != "" {
		id, err := models.ParseULID(propertyID)
		if err != nil {
			return nil, fmt.Errorf("invalid property id: %w", err)
		}
		property, err := s.properties.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading property: %w", err)
		}
		if property == nil {
			return nil, models.ErrPropertyNotFound
		}
	}

	mapping.PropertyID = propertyID
	mapping.IsNewProperty = isNew && propertyID == ""
	session.UpdatedAt = time.Now()
	return session, nil
}

// ApplyEdit overlays a manual financial correction onto a draft cell.
func (s *Service) ApplyEdit(ctx context.Context, sessionID string, edit engine.FieldEdit) (*Session, error) {
	session, ok := s.store.get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.Status == SessionStatusCommitted {
		return nil, ErrSessionCommitted
	}
	if session.Result == nil {
		return nil, ErrSessionNotPreviewed
	}

	applied, err := engine.ApplyEdit(session.Result.Drafts, edit)
	if err != nil {
		return nil, err
	}
	session.recordEdit(applied)
	session.UpdatedAt = time.Now()

	s.logger.InfoContext(ctx, "draft edited",
		slog.String("session_id", session.ID),
		slog.Int("row", applied.RowIndex),
		slog.String("field", applied.FieldName),
	)
	return session, nil
}

// CommitResult reports the outcome of a commit.
type CommitResult struct {
	UploadID       string             `json:"upload_id"`
	BookingCount   int                `json:"booking_count"`
	AuditCount     int                `json:"audit_count"`
	UnmatchedEdits []engine.FieldEdit `json:"unmatched_edits,omitempty"`
	Warnings       []string           `json:"warnings,omitempty"`
}

// Commit persists a previewed session in three sequential steps: the
// upload record, then the bookings, then the audit records for manual
// edits. A booking failure marks the upload failed and keeps the
// session so the operator can retry; an audit failure never rolls back
// committed bookings.
func (s *Service) Commit(ctx context.Context, sessionID string) (*CommitResult, error) {
	session, ok := s.store.get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.Status == SessionStatusCommitted {
		return nil, ErrSessionCommitted
	}
	if session.Result == nil {
		return nil, ErrSessionNotPreviewed
	}
	if !engine.PropertyMappingsValid(session.Mappings) {
		return nil, ErrMappingsIncomplete
	}

	// Step 1: record the upload.
	upload := &models.UploadRecord{
		FileName: session.FileName,
		RowCount: len(session.Catalog.Rows),
		Status:   models.UploadStatusPending,
	}
	if err := s.uploads.Create(ctx, upload); err != nil {
		return nil, fmt.Errorf("creating upload record: %w", err)
	}

	propertyIDs, err := s.resolveProperties(ctx, session)
	if err != nil {
		s.markUploadFailed(ctx, upload.ID, err)
		return nil, err
	}

	// Step 2: persist the bookings.
	bookings := make([]*models.Booking, 0, len(session.Result.Drafts))
	for _, draft := range session.Result.Drafts {
		bookings = append(bookings, buildBooking(draft, propertyIDs[strings.ToLower(draft.ListingName)], upload.ID))
	}
	if err := s.bookings.CreateBatch(ctx, bookings); err != nil {
		s.markUploadFailed(ctx, upload.ID, err)
		return nil, fmt.Errorf("creating bookings: %w", err)
	}

	// Step 3: correlate edits to created bookings and store audits.
	payloads := s.sentPayloads(session)
	created := make([]engine.CommittedRecord, 0, len(bookings))
	for _, booking := range bookings {
		created = append(created, engine.CommittedRecord{
			BookingID:       booking.ID.String(),
			ReservationCode: booking.ReservationCode,
		})
	}
	correlation := engine.CorrelateEdits(session.Edits, payloads, created, s.logger)

	result := &CommitResult{
		UploadID:       upload.ID.String(),
		BookingCount:   len(bookings),
		UnmatchedEdits: correlation.Unmatched,
		Warnings:       session.Warnings,
	}

	audits := make([]*models.BookingAudit, 0, len(correlation.Applied))
	for _, edit := range correlation.Applied {
		bookingID, err := models.ParseULID(edit.BookingID)
		if err != nil {
			continue
		}
		audits = append(audits, &models.BookingAudit{
			BookingID:     bookingID,
			FieldName:     edit.FieldName,
			OriginalValue: edit.OriginalValue,
			NewValue:      edit.NewValue,
			Reason:        edit.Reason,
		})
	}
	if err := s.audits.CreateBatch(ctx, audits); err != nil {
		// Bookings are already committed; surface the loss, don't fail.
		s.logger.ErrorContext(ctx, "storing edit audits failed",
			slog.String("upload_id", upload.ID.String()),
			slog.String("error", err.Error()),
		)
		result.Warnings = append(result.Warnings, "edit audit records could not be stored: "+err.Error())
	} else {
		result.AuditCount = len(audits)
	}

	if err := s.uploads.UpdateStatus(ctx, upload.ID, models.UploadStatusCommitted, len(bookings), ""); err != nil {
		s.logger.WarnContext(ctx, "updating upload status failed",
			slog.String("upload_id", upload.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	session.Status = SessionStatusCommitted
	s.store.delete(session.ID)

	s.logger.InfoContext(ctx, "import committed",
		slog.String("session_id", sessionID),
		slog.String("upload_id", result.UploadID),
		slog.Int("bookings", result.BookingCount),
		slog.Int("audits", result.AuditCount),
		slog.Int("unmatched_edits", len(result.UnmatchedEdits)),
	)
	return result, nil
}

// resolveProperties creates any listings marked new and returns the
// property ID for each mapped listing, keyed by lower-cased name.
func (s *Service) resolveProperties(ctx context.Context, session *Session) (map[string]models.ULID, error) {
	ids := make(map[string]models.ULID, len(session.Mappings))
	for _, mapping := range session.Mappings {
		key := strings.ToLower(mapping.ListingName)
		if mapping.IsNewProperty {
			property := &models.Property{
				Name:        mapping.ListingName,
				ListingName: mapping.ListingName,
				Currency:    "CAD",
				IsActive:    true,
			}
			if err := s.properties.Create(ctx, property); err != nil {
				return nil, fmt.Errorf("creating property %q: %w", mapping.ListingName, err)
			}
			ids[key] = property.ID
			continue
		}
		id, err := models.ParseULID(mapping.PropertyID)
		if err != nil {
			return nil, fmt.Errorf("listing %q: invalid property id: %w", mapping.ListingName, err)
		}
		ids[key] = id
	}
	return ids, nil
}

func (s *Service) markUploadFailed(ctx context.Context, uploadID models.ULID, cause error) {
	if err := s.uploads.UpdateStatus(ctx, uploadID, models.UploadStatusFailed, 0, cause.Error()); err != nil {
		s.logger.WarnContext(ctx, "marking upload failed",
			slog.String("upload_id", uploadID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// sentPayloads extracts the row-to-reservation-code pairs for the
// session's drafts.
func (s *Service) sentPayloads(session *Session) []engine.SentPayload {
	payloads := make([]engine.SentPayload, 0, len(session.Result.Drafts))
	for _, draft := range session.Result.Drafts {
		payloads = append(payloads, engine.SentPayload{
			RowIndex:        draft.RowIndex,
			ReservationCode: draftText(draft, engine.FieldReservationCode),
		})
	}
	return payloads
}

// PurgeStale removes sessions idle longer than maxAge. Returns the
// number of sessions removed.
func (s *Service) PurgeStale(maxAge time.Duration) int {
	purged := s.store.purgeOlderThan(time.Now().Add(-maxAge))
	if purged > 0 {
		s.logger.Info("purged stale import sessions",
			slog.Int("purged", purged),
			slog.Int("remaining", s.store.count()),
		)
	}
	return purged
}

// buildBooking maps a derived draft onto the booking model.
func buildBooking(draft *engine.BookingDraft, propertyID models.ULID, uploadID models.ULID) *models.Booking {
	return &models.Booking{
		PropertyID:      propertyID,
		UploadID:        uploadID,
		ReservationCode: draftText(draft, engine.FieldReservationCode),
		GuestName:       draftText(draft, engine.FieldGuestName),
		Platform:        string(draft.Platform),
		CheckInDate:     draftText(draft, engine.FieldCheckInDate),
		NumNights:       int(draftNumber(draft, engine.FieldNumNights)),
		NightlyRate:     draftNumber(draft, "nightly_rate"),
		CleaningFee:     draftNumber(draft, "cleaning_fee"),
		TotalPayout:     draftNumber(draft, "total_payout"),
		NetEarnings:     draftNumber(draft, "net_earnings"),
		SalesTax:        draftNumber(draft, "sales_tax"),
		MgmtFee:         draftNumber(draft, "mgmt_fee"),
		ExtraGuestFees:  draftNumber(draft, "extra_guest_fees"),
		LodgingTax:      draftNumber(draft, "lodging_tax"),
		QST:             draftNumber(draft, "qst"),
		GST:             draftNumber(draft, "gst"),
		ChannelFee:      draftNumber(draft, "channel_fee"),
		StripeFee:       draftNumber(draft, "stripe_fee"),
		BedLinenFee:     draftNumber(draft, "bed_linen_fee"),
	}
}

func draftText(draft *engine.BookingDraft, field string) string {
	if v, ok := draft.Field(field); ok {
		return strings.TrimSpace(v.Text())
	}
	return ""
}

func draftNumber(draft *engine.BookingDraft, field string) float64 {
	if v, ok := draft.Field(field); ok && v.IsNumber() {
		return v.Number()
	}
	return 0
}
