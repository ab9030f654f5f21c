package engine

import (
	"log/slog"
	"strings"
)

// CommittedRecord is the minimal view of a booking the commit step
// created: the server-assigned identifier plus the natural key used
// for correlation.
type CommittedRecord struct {
	BookingID       string `json:"booking_id"`
	ReservationCode string `json:"reservation_code"`
}

// SentPayload is the minimal view of a draft the commit step sent: the
// row index plus the natural key it carried.
type SentPayload struct {
	RowIndex        int    `json:"row_index"`
	ReservationCode string `json:"reservation_code"`
}

// CorrelatedEdit is a FieldEdit matched to the concrete created record
// it belongs to.
type CorrelatedEdit struct {
	FieldEdit
	BookingID string `json:"booking_id"`
}

// CorrelationResult partitions edits into those matched to a created
// record and those that could not be matched.
type CorrelationResult struct {
	Applied   []CorrelatedEdit `json:"applied"`
	Unmatched []FieldEdit      `json:"unmatched,omitempty"`
}

// normalizeCode trims and case-normalizes a reservation code for
// natural-key matching.
func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// DuplicateReservationCodes returns the normalized reservation codes
// that appear on more than one payload. Correlation by natural key is
// ambiguous for such batches; callers surface this as a validation
// warning rather than guessing a dedup strategy.
func DuplicateReservationCodes(payloads []SentPayload) []string {
	counts := make(map[string]int, len(payloads))
	for _, p := range payloads {
		code := normalizeCode(p.ReservationCode)
		if code != "" {
			counts[code]++
		}
	}
	var dupes []string
	seen := make(map[string]bool)
	for _, p := range payloads {
		code := normalizeCode(p.ReservationCode)
		if counts[code] > 1 && !seen[code] {
			seen[code] = true
			dupes = append(dupes, code)
		}
	}
	return dupes
}

// CorrelateEdits matches each edit to the created booking record it
// belongs to, by reservation code: the edit's row index locates the
// sent payload, whose code is matched against the created records.
//
// An edit whose payload cannot be matched to a created record lands in
// Unmatched with a warning; it never fails the booking commit itself.
func CorrelateEdits(edits []FieldEdit, payloads []SentPayload, created []CommittedRecord, logger *slog.Logger) CorrelationResult {
	if logger == nil {
		logger = slog.Default()
	}

	codeByRow := make(map[int]string, len(payloads))
	for _, p := range payloads {
		codeByRow[p.RowIndex] = normalizeCode(p.ReservationCode)
	}
	recordByCode := make(map[string]CommittedRecord, len(created))
	for _, r := range created {
		code := normalizeCode(r.ReservationCode)
		if _, exists := recordByCode[code]; !exists {
			recordByCode[code] = r
		}
	}

	var result CorrelationResult
	for _, edit := range edits {
		code, ok := codeByRow[edit.RowIndex]
		if ok && code != "" {
			if record, found := recordByCode[code]; found {
				result.Applied = append(result.Applied, CorrelatedEdit{
					FieldEdit: edit,
					BookingID: record.BookingID,
				})
				continue
			}
		}
		logger.Warn("edit could not be correlated to a created booking",
			slog.Int("row_index", edit.RowIndex),
			slog.String("field", edit.FieldName),
			slog.String("reservation_code", code),
		)
		result.Unmatched = append(result.Unmatched, edit)
	}
	return result
}
