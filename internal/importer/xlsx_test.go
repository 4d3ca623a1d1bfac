package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cellRef, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestXLSXParser(t *testing.T) {
	t.Parallel()

	data := buildWorkbook(t, [][]interface{}{
		{"Front", "Back", "Deck", "Tags"},
		{"Capital of France?", "Paris", "Geography", "europe capitals"},
		{"", "no front"},
		{"Q", 42},
	})

	res, err := XLSXParser{}.Parse(context.Background(), Source{Name: "deck.xlsx", Data: data}, Options{})
	require.NoError(t, err)

	assert.Equal(t, "Sheet1", res.Settings["active_sheet"])
	assert.Equal(t, true, res.Settings["has_header"])
	assert.True(t, res.DeckDetected)

	require.Len(t, res.Cards, 2)
	assert.Equal(t, "Capital of France?", res.Cards[0].Front)
	assert.Equal(t, "Geography", res.Cards[0].DeckName)
	assert.Equal(t, []string{"europe", "capitals"}, res.Cards[0].Tags)
	assert.Equal(t, "42", res.Cards[1].Back)

	assert.Equal(t, []string{"Row 3: Front - Content is empty"}, res.Errors)
}

func TestXLSXParser_NoHeader(t *testing.T) {
	t.Parallel()

	data := buildWorkbook(t, [][]interface{}{
		{"hola", "hello"},
		{"adiós", "goodbye"},
	})

	res, err := XLSXParser{}.Parse(context.Background(), Source{Name: "es.xlsx", Data: data}, Options{})
	require.NoError(t, err)
	assert.Equal(t, false, res.Settings["has_header"])
	assert.False(t, res.DeckDetected)
	assert.Len(t, res.Cards, 2)
}

func TestXLSXParser_LegacyXLS(t *testing.T) {
	t.Parallel()

	_, err := XLSXParser{}.Parse(context.Background(), Source{Name: "old.xls", Data: []byte{0xD0, 0xCF, 0x11, 0xE0}}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "old.xls", fe.Filename)
}
