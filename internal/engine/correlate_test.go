package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelateEdits_MatchesByReservationCode(t *testing.T) {
	edits := []FieldEdit{
		{RowIndex: 0, FieldName: "cleaning_fee", OriginalValue: "85", NewValue: "95"},
		{RowIndex: 2, FieldName: "total_payout", OriginalValue: "200", NewValue: "215"},
	}
	payloads := []SentPayload{
		{RowIndex: 0, ReservationCode: "HMABC123"},
		{RowIndex: 1, ReservationCode: "HMDEF456"},
		{RowIndex: 2, ReservationCode: "VB-9911"},
	}
	created := []CommittedRecord{
		{BookingID: "bk_001", ReservationCode: "hmabc123"},
		{BookingID: "bk_002", ReservationCode: "HMDEF456"},
		{BookingID: "bk_003", ReservationCode: " VB-9911 "},
	}

	result := CorrelateEdits(edits, payloads, created, nil)
	require.Len(t, result.Applied, 2)
	assert.Empty(t, result.Unmatched)

	assert.Equal(t, "bk_001", result.Applied[0].BookingID)
	assert.Equal(t, "cleaning_fee", result.Applied[0].FieldName)
	assert.Equal(t, "bk_003", result.Applied[1].BookingID)
	assert.Equal(t, "215", result.Applied[1].NewValue)
}

func TestCorrelateEdits_UnmatchedEditDropped(t *testing.T) {
	// The edited row's record never came back from the commit, so the
	// edit cannot be attributed to a booking and is reported unmatched.
	edits := []FieldEdit{
		{RowIndex: 1, FieldName: "cleaning_fee", NewValue: "95"},
	}
	payloads := []SentPayload{
		{RowIndex: 0, ReservationCode: "HMABC123"},
		{RowIndex: 1, ReservationCode: "HMDEF456"},
	}
	created := []CommittedRecord{
		{BookingID: "bk_001", ReservationCode: "HMABC123"},
	}

	result := CorrelateEdits(edits, payloads, created, nil)
	assert.Empty(t, result.Applied)
	require.Len(t, result.Unmatched, 1)
	assert.Equal(t, 1, result.Unmatched[0].RowIndex)
}

func TestCorrelateEdits_EditRowMissingFromPayloads(t *testing.T) {
	edits := []FieldEdit{
		{RowIndex: 9, FieldName: "cleaning_fee", NewValue: "95"},
	}
	payloads := []SentPayload{
		{RowIndex: 0, ReservationCode: "HMABC123"},
	}
	created := []CommittedRecord{
		{BookingID: "bk_001", ReservationCode: "HMABC123"},
	}

	result := CorrelateEdits(edits, payloads, created, nil)
	assert.Empty(t, result.Applied)
	assert.Len(t, result.Unmatched, 1)
}

func TestCorrelateEdits_DuplicateCodeFirstRecordWins(t *testing.T) {
	edits := []FieldEdit{
		{RowIndex: 0, FieldName: "cleaning_fee", NewValue: "95"},
	}
	payloads := []SentPayload{
		{RowIndex: 0, ReservationCode: "HMABC123"},
		{RowIndex: 1, ReservationCode: "HMABC123"},
	}
	created := []CommittedRecord{
		{BookingID: "bk_001", ReservationCode: "HMABC123"},
		{BookingID: "bk_002", ReservationCode: "HMABC123"},
	}

	result := CorrelateEdits(edits, payloads, created, nil)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, "bk_001", result.Applied[0].BookingID)
}

func TestDuplicateReservationCodes(t *testing.T) {
	tests := []struct {
		name     string
		payloads []SentPayload
		want     []string
	}{
		{
			name: "no duplicates",
			payloads: []SentPayload{
				{RowIndex: 0, ReservationCode: "A1"},
				{RowIndex: 1, ReservationCode: "B2"},
			},
			want: nil,
		},
		{
			name: "case and whitespace insensitive",
			payloads: []SentPayload{
				{RowIndex: 0, ReservationCode: "HMABC123"},
				{RowIndex: 1, ReservationCode: " hmabc123 "},
			},
			want: []string{"hmabc123"},
		},
		{
			name: "blank codes ignored",
			payloads: []SentPayload{
				{RowIndex: 0, ReservationCode: ""},
				{RowIndex: 1, ReservationCode: "  "},
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DuplicateReservationCodes(tt.payloads))
		})
	}
}
