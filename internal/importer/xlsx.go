package importer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXParser reads the first sheet of an Excel workbook, or Sheet when set.
// Legacy binary .xls files are rejected; they have to be saved as .xlsx.
type XLSXParser struct {
	Sheet string
}

func (p XLSXParser) Parse(_ context.Context, src Source, _ Options) (*Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(src.Data))
	if err != nil {
		expected := "Excel workbook (.xlsx)"
		if src.Ext() == ".xls" {
			expected = "Excel 2007+ workbook; save .xls files as .xlsx before importing"
		}
		return nil, &FormatError{Filename: src.Name, Expected: expected}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &FormatError{Filename: src.Name, Expected: "a workbook with at least one sheet"}
	}
	sheet := p.Sheet
	if sheet == "" {
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, src.Name, err)
	}

	res := newResult(src.Name)
	var firstRow []string
	if len(rows) > 0 {
		for _, c := range rows[0] {
			firstRow = append(firstRow, strings.ToLower(c))
		}
	}
	hasHeader := looksLikeHeader(firstRow)
	res.Settings = Settings{
		"sheet_names":  sheets,
		"active_sheet": sheet,
		"has_header":   hasHeader,
		"first_row":    firstRow,
	}

	if len(rows) == 0 {
		res.AddError("Empty worksheet")
		return res, nil
	}

	mapping := DefaultFieldMapping()
	start := 0
	if hasHeader {
		mapping = DetectFieldMapping(rows[0])
		start = 1
	}
	res.DeckDetected = mapping.Deck >= 0
	res.Settings["mapping"] = mapping

	for i := start; i < len(rows); i++ {
		if blankRow(rows[i]) {
			continue
		}
		card, msg := mapping.rowCard(rows[i], fmt.Sprintf("Row %d", i+1), src.Name)
		if msg != "" {
			res.AddError(msg)
			continue
		}
		res.AddCard(card)
	}

	res.finish("file")
	return res, nil
}
