package sheet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCatalog(t *testing.T) {
	input := strings.Join([]string{
		`Confirmation Code,Guest Name,Check-in Date,Nights,Listing,Rate`,
		`HMABC123,Jane Mercer,2024-03-15,3,Lake House,100`,
		`,,,,,`,
		`"VB-9911","Reyes, Omar",2024-04-02,2,Casa Madera,85`,
	}, "\n")

	catalog, err := ReadCatalog(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, catalog.Columns, 6)
	assert.Equal(t, "Confirmation Code", catalog.Columns[0].Name)
	assert.Equal(t, 5, catalog.Columns[5].Index)

	// Blank row is skipped.
	require.Len(t, catalog.Rows, 2)
	assert.Equal(t, "Jane Mercer", catalog.Rows[0].Cell(1))
	assert.Equal(t, "Reyes, Omar", catalog.Rows[1].Cell(1))
}

func TestReadCatalog_RaggedRows(t *testing.T) {
	input := strings.Join([]string{
		`Code,Guest,Rate`,
		`HMABC123,Jane`,
		`VB-9911,Omar,85,extra`,
	}, "\n")

	catalog, err := ReadCatalog(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, catalog.Rows, 2)

	// Short row padded, long row truncated.
	assert.Equal(t, "", catalog.Rows[0].Cell(2))
	assert.Equal(t, "85", catalog.Rows[1].Cell(2))
}

func TestReadCatalog_Errors(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		_, err := ReadCatalog(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("header with no names", func(t *testing.T) {
		_, err := ReadCatalog(strings.NewReader(",,\n"))
		assert.ErrorIs(t, err, ErrNoColumns)
	})
}

func TestReadCatalog_HeaderWhitespaceTrimmed(t *testing.T) {
	catalog, err := ReadCatalog(strings.NewReader("Code , Guest Name \nA1,Jane\n"))
	require.NoError(t, err)
	assert.Equal(t, "Code", catalog.Columns[0].Name)
	assert.Equal(t, "Guest Name", catalog.Columns[1].Name)
	assert.GreaterOrEqual(t, catalog.ColumnIndex("guest name"), 0)
}
