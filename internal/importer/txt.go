package importer

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	separatorHeader = regexp.MustCompile(`(?i)^#separator[:\s]+(\w+)`)
	htmlHeader      = regexp.MustCompile(`(?i)^#html[:\s]+(true|false)`)
	columnHeader    = regexp.MustCompile(`(?i)^#(deck|notetype|tags|guid)\s+column[:\s]+(\d+)`)
)

var separatorNames = map[string]string{
	"tab":       "\t",
	"comma":     ",",
	"semicolon": ";",
	"space":     " ",
	"pipe":      "|",
}

// TxtHeaders are the settings read from the "#key:value" lines that start
// an Anki text export.
type TxtHeaders struct {
	Separator string
	HTML      bool
	// Columns maps deck, notetype, tags and guid to 1-based column numbers.
	Columns map[string]int
	// Lines is the number of leading header lines.
	Lines int
}

// ParseTxtHeaders reads the leading '#' lines of lines.
func ParseTxtHeaders(lines []string) TxtHeaders {
	h := TxtHeaders{Separator: "\t", Columns: map[string]int{}}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "#") {
			break
		}
		h.Lines++

		if m := separatorHeader.FindStringSubmatch(line); m != nil {
			sep, ok := separatorNames[strings.ToLower(m[1])]
			if !ok {
				sep = "\t"
			}
			h.Separator = sep
			continue
		}
		if m := htmlHeader.FindStringSubmatch(line); m != nil {
			h.HTML = strings.EqualFold(m[1], "true")
			continue
		}
		if m := columnHeader.FindStringSubmatch(line); m != nil {
			n, err := strconv.Atoi(m[2])
			if err == nil && n > 0 {
				h.Columns[strings.ToLower(m[1])] = n
			}
		}
	}
	return h
}

func (h TxtHeaders) settings() Settings {
	cols := map[string]int{}
	for k, v := range h.Columns {
		cols[k] = v
	}
	return Settings{"separator": h.Separator, "html": h.HTML, "columns": cols}
}

// contentColumns returns the 0-based indexes of the first two columns not
// claimed by a metadata header.
func (h TxtHeaders) contentColumns() (front, back int) {
	claimed := map[int]bool{}
	for _, c := range h.Columns {
		claimed[c-1] = true
	}
	idx := make([]int, 0, 2)
	for i := 0; len(idx) < 2; i++ {
		if !claimed[i] {
			idx = append(idx, i)
		}
	}
	return idx[0], idx[1]
}

// TxtParser reads Anki "Notes in Plain Text" exports.
type TxtParser struct{}

func (TxtParser) Parse(_ context.Context, src Source, _ Options) (*Result, error) {
	res := newResult(src.Name)

	lines := strings.Split(strings.TrimPrefix(string(src.Data), "\ufeff"), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}

	h := ParseTxtHeaders(lines)
	res.Settings = h.settings()
	_, res.DeckDetected = h.Columns["deck"]
	frontCol, backCol := h.contentColumns()

	for i := h.Lines; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		label := fmt.Sprintf("Line %d", i+1)

		parts := strings.Split(line, h.Separator)
		if len(parts) <= frontCol || len(parts) <= backCol {
			res.AddError(label + ": Not enough fields (need at least front and back)")
			continue
		}

		front := strings.TrimSpace(parts[frontCol])
		back := strings.TrimSpace(parts[backCol])
		if msg := validateSides(front, back, "Front field", "Back field"); msg != "" {
			res.AddError(label + ": " + msg)
			continue
		}

		var deck string
		var tags []string
		if c, ok := h.Columns["deck"]; ok {
			deck = cell(parts, c-1)
		}
		if c, ok := h.Columns["tags"]; ok {
			tags = strings.Fields(cell(parts, c-1))
		}

		card := NewFlashcard(front, back, deck, tags, src.Name)
		card.HTMLEnabled = card.HTMLEnabled || h.HTML
		res.AddCard(card)
	}

	res.finish("file")
	return res, nil
}
