package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const sniffSampleSize = 4096

// candidateDelimiters in preference order for ties.
var candidateDelimiters = []rune{',', '\t', ';', '|'}

// CSVParser reads comma, semicolon, pipe or tab separated files. The
// delimiter is sniffed from the first lines.
type CSVParser struct {
	// Delimiter overrides sniffing when non-zero.
	Delimiter rune
	// HasHeader overrides header detection when non-nil.
	HasHeader *bool
}

func (p CSVParser) Parse(_ context.Context, src Source, _ Options) (*Result, error) {
	res := newResult(src.Name)
	data := bytes.TrimPrefix(src.Data, []byte("\ufeff"))

	delim := p.Delimiter
	if delim == 0 {
		delim = SniffDelimiter(data, src.Ext() == ".tsv")
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	var lineNums []int
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				res.AddError(fmt.Sprintf("Line %d: %v", pe.StartLine, pe.Err))
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", src.Name, err)
		}
		line, _ := r.FieldPos(0)
		rows = append(rows, rec)
		lineNums = append(lineNums, line)
	}

	hasHeader := len(rows) > 0 && detectHeader(rows)
	if p.HasHeader != nil {
		hasHeader = *p.HasHeader
	}
	res.Settings = Settings{"delimiter": string(delim), "has_header": hasHeader}

	mapping := DefaultFieldMapping()
	if hasHeader && len(rows) > 0 {
		mapping = DetectFieldMapping(rows[0])
		rows, lineNums = rows[1:], lineNums[1:]
	}
	res.DeckDetected = mapping.Deck >= 0
	res.Settings["mapping"] = mapping

	for i, row := range rows {
		if blankRow(row) {
			continue
		}
		card, msg := mapping.rowCard(row, fmt.Sprintf("Line %d", lineNums[i]), src.Name)
		if msg != "" {
			res.AddError(msg)
			continue
		}
		res.AddCard(card)
	}

	res.finish("file")
	return res, nil
}

// SniffDelimiter picks the delimiter that splits the first lines of data
// into a consistent, non-zero number of fields. TSV files use tab whenever
// tab is consistent. Without a consistent candidate it returns tab for TSV
// files and comma otherwise.
func SniffDelimiter(data []byte, tsv bool) rune {
	sample := data
	if len(sample) > sniffSampleSize {
		sample = sample[:sniffSampleSize]
	}

	var lines []string
	for _, l := range strings.Split(string(sample), "\n") {
		if l = strings.TrimRight(l, "\r"); strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	// The last line of a truncated sample may be partial.
	if len(data) > sniffSampleSize && len(lines) > 1 {
		lines = lines[:len(lines)-1]
	}

	if tsv && consistentCount(lines, '\t') > 0 {
		return '\t'
	}

	best, bestCount := rune(0), 0
	for _, d := range candidateDelimiters {
		if count := consistentCount(lines, d); count > bestCount {
			best, bestCount = d, count
		}
	}
	if best != 0 {
		return best
	}
	if tsv {
		return '\t'
	}
	return ','
}

// consistentCount returns how many times d occurs outside quotes on every
// line, or 0 when the lines disagree or d is missing from one of them.
func consistentCount(lines []string, d rune) int {
	count := -1
	for _, l := range lines {
		n := countUnquoted(l, d)
		if n == 0 || (count >= 0 && n != count) {
			return 0
		}
		count = n
	}
	if count < 0 {
		return 0
	}
	return count
}

func countUnquoted(line string, d rune) int {
	n, quoted := 0, false
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case r == d && !quoted:
			n++
		}
	}
	return n
}

// detectHeader treats the first row as a header when it contains a known
// column name, or when it has no numbers while some column is numeric in
// every other row.
func detectHeader(rows [][]string) bool {
	if looksLikeHeader(rows[0]) {
		return true
	}
	if len(rows) < 2 {
		return false
	}
	for _, c := range rows[0] {
		if isNumber(c) {
			return false
		}
	}
	for col := range rows[0] {
		numeric := true
		for _, row := range rows[1:] {
			if col >= len(row) || !isNumber(row[col]) {
				numeric = false
				break
			}
		}
		if numeric {
			return true
		}
	}
	return false
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
