// Package importer provides the business logic for turning uploaded
// export files into committed bookings: session management, rule-based
// derivation, listing resolution, the manual edit overlay, and the
// commit sequence.
package importer

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/hostfolio/bookpipe/internal/engine"
)

// Session errors.
var (
	// ErrSessionNotFound indicates an unknown or expired session ID.
	ErrSessionNotFound = errors.New("import session not found")

	// ErrSessionNotPreviewed indicates an operation that requires a
	// derivation preview was attempted before one was generated.
	ErrSessionNotPreviewed = errors.New("import session has no preview; run preview first")

	// ErrMappingsIncomplete indicates unresolved listings at commit time.
	ErrMappingsIncomplete = errors.New("every listing must be mapped to a property before commit")

	// ErrSessionCommitted indicates the session was already committed.
	ErrSessionCommitted = errors.New("import session is already committed")
)

// SessionStatus tracks an import session through its workflow.
type SessionStatus string

const (
	// SessionStatusUploaded is set when the file has been parsed.
	SessionStatusUploaded SessionStatus = "uploaded"

	// SessionStatusPreviewed is set once drafts have been derived.
	SessionStatusPreviewed SessionStatus = "previewed"

	// SessionStatusCommitted is set after a successful commit.
	SessionStatusCommitted SessionStatus = "committed"
)

// Session is the in-memory state of one import workflow, from upload
// through commit. Sessions are not persisted; an abandoned session is
// purged after the configured retention period.
type Session struct {
	ID         string                   `json:"id"`
	FileName   string                   `json:"file_name"`
	Status     SessionStatus            `json:"status"`
	TemplateID string                   `json:"template_id,omitempty"`
	Catalog    *engine.Catalog          `json:"-"`
	Result     *engine.DerivationResult `json:"result,omitempty"`
	Mappings   []*engine.PropertyMapping `json:"mappings,omitempty"`
	Edits      []engine.FieldEdit       `json:"edits,omitempty"`
	Warnings   []string                 `json:"warnings,omitempty"`
	CreatedAt  time.Time                `json:"created_at"`
	UpdatedAt  time.Time                `json:"updated_at"`
}

// mapping returns the property mapping for a listing name, or nil.
func (s *Session) mapping(listingName string) *engine.PropertyMapping {
	for _, m := range s.Mappings {
		if strings.EqualFold(m.ListingName, listingName) {
			return m
		}
	}
	return nil
}

// recordEdit stores an applied edit, replacing any earlier edit of the
// same cell so the session carries at most one overlay per cell. The
// first edit's original value is kept as the audit baseline.
func (s *Session) recordEdit(applied engine.FieldEdit) {
	for i, existing := range s.Edits {
		if existing.RowIndex == applied.RowIndex && strings.EqualFold(existing.FieldName, applied.FieldName) {
			applied.OriginalValue = existing.OriginalValue
			s.Edits[i] = applied
			return
		}
	}
	s.Edits = append(s.Edits, applied)
}

// sessionStore is a mutex-guarded in-memory session registry.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*Session)}
}

func (st *sessionStore) get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	session, ok := st.sessions[id]
	return session, ok
}

func (st *sessionStore) put(session *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[session.ID] = session
}

func (st *sessionStore) delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// purgeOlderThan removes sessions whose last activity predates the
// cutoff. Returns the number of sessions removed.
func (st *sessionStore) purgeOlderThan(cutoff time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	purged := 0
	for id, session := range st.sessions {
		if session.UpdatedAt.Before(cutoff) {
			delete(st.sessions, id)
			purged++
		}
	}
	return purged
}

func (st *sessionStore) count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
