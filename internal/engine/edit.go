package engine

import (
	"fmt"
	"strings"
)

// FieldEdit records one manual correction to a derived financial
// value. Edits are an overlay over drafts: the pre-edit value is
// always retained so "edited" state stays distinguishable from
// "derived" state, and the audit trail survives commit.
type FieldEdit struct {
	RowIndex      int    `json:"row_index"`
	FieldName     string `json:"field_name"`
	OriginalValue string `json:"original_value"`
	NewValue      string `json:"new_value"`
	Reason        string `json:"reason,omitempty"`
}

// ApplyEdit overlays a manual correction onto the matching draft. The
// targeted (rowIndex, fieldName) entry is replaced so downstream
// commit payloads carry the edited value; every other field and every
// other draft is left untouched. The returned FieldEdit carries the
// pre-edit value for the audit trail.
//
// Only fields on the financial allow-list may be edited. Editing the
// same cell twice replaces the overlay value but keeps the original
// derived value as the audit baseline.
func ApplyEdit(drafts []*BookingDraft, edit FieldEdit) (FieldEdit, error) {
	if !IsFinancialField(edit.FieldName) {
		return FieldEdit{}, fmt.Errorf("%w: %s", ErrEditNotAllowed, edit.FieldName)
	}

	var target *BookingDraft
	for _, draft := range drafts {
		if draft.RowIndex == edit.RowIndex {
			target = draft
			break
		}
	}
	if target == nil {
		return FieldEdit{}, fmt.Errorf("%w: row %d", ErrEditRowOutOfRange, edit.RowIndex)
	}

	fieldKey := edit.FieldName
	var original Value
	for k, v := range target.Fields {
		if strings.EqualFold(k, edit.FieldName) {
			fieldKey = k
			original = v
			break
		}
	}

	applied := edit
	if applied.OriginalValue == "" {
		applied.OriginalValue = original.Text()
	}

	if n, ok := parseNumeric(edit.NewValue); ok {
		target.Fields[fieldKey] = NumberValue(n)
	} else {
		target.Fields[fieldKey] = StringValue(edit.NewValue)
	}
	return applied, nil
}
