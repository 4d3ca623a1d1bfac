package importer

import (
	"fmt"
	"strings"
)

// FieldMapping says which column holds which part of a card. Optional
// columns are -1 when absent.
type FieldMapping struct {
	Front int `json:"front"`
	Back  int `json:"back"`
	Deck  int `json:"deck"`
	Tags  int `json:"tags"`
	Extra int `json:"extra"`
	Hint  int `json:"hint"`
}

// DefaultFieldMapping reads the front from column 0 and the back from column 1.
func DefaultFieldMapping() FieldMapping {
	return FieldMapping{Front: 0, Back: 1, Deck: -1, Tags: -1, Extra: -1, Hint: -1}
}

// headerSynonyms is checked in order; the first field whose list contains
// the header wins.
var headerSynonyms = []struct {
	field string
	names []string
}{
	{"front", []string{"front", "question", "q", "term", "word", "prompt", "cue"}},
	{"back", []string{"back", "answer", "a", "definition", "meaning", "response"}},
	{"extra", []string{"extra", "notes", "additional", "context", "explanation", "info"}},
	{"hint", []string{"hint", "clue", "help", "tip"}},
	{"deck", []string{"deck", "category", "group", "collection", "folder", "chapter"}},
	{"tags", []string{"tags", "tag", "labels", "keywords", "topics"}},
}

// headerKeywords marks a first row as a header when any appears in it.
var headerKeywords = []string{
	"front", "back", "question", "answer", "term", "definition",
	"deck", "tags", "category", "word", "meaning",
}

func looksLikeHeader(cells []string) bool {
	line := strings.ToLower(strings.Join(cells, " "))
	for _, kw := range headerKeywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}

// DetectFieldMapping maps recognised header names onto columns, starting
// from DefaultFieldMapping.
func DetectFieldMapping(headers []string) FieldMapping {
	m := DefaultFieldMapping()
	for i, h := range headers {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		switch fieldFor(h) {
		case "front":
			m.Front = i
		case "back":
			m.Back = i
		case "extra":
			m.Extra = i
		case "hint":
			m.Hint = i
		case "deck":
			m.Deck = i
		case "tags":
			m.Tags = i
		}
	}
	return m
}

func fieldFor(header string) string {
	for _, syn := range headerSynonyms {
		if contains(syn.names, header) {
			return syn.field
		}
	}
	return ""
}

// Validate checks that m fits a row of columnCount cells.
func (m FieldMapping) Validate(columnCount int) []string {
	var errs []string
	if m.Front >= columnCount {
		errs = append(errs, fmt.Sprintf("Front column index %d exceeds available columns (%d)", m.Front, columnCount))
	}
	if m.Back >= columnCount {
		errs = append(errs, fmt.Sprintf("Back column index %d exceeds available columns (%d)", m.Back, columnCount))
	}
	if m.Front == m.Back {
		errs = append(errs, "Front and back columns cannot be the same")
	}
	return errs
}

func (m FieldMapping) required() int {
	if m.Front > m.Back {
		return m.Front + 1
	}
	return m.Back + 1
}

// rowCard builds a card from row, or returns an error message for row
// label (e.g. "Line 3").
func (m FieldMapping) rowCard(row []string, label, source string) (Flashcard, string) {
	if len(row) < m.required() {
		return Flashcard{}, label + ": Not enough columns"
	}

	front := strings.TrimSpace(row[m.Front])
	back := strings.TrimSpace(row[m.Back])
	if msg := validateSides(front, back, "Front", "Back"); msg != "" {
		return Flashcard{}, label + ": " + msg
	}

	card := NewFlashcard(front, back, cell(row, m.Deck), splitTagCell(cell(row, m.Tags)), source)
	card.Extra = MergeExtra([]string{cell(row, m.Extra), hintText(cell(row, m.Hint))}, "\n")
	return card, ""
}

func hintText(h string) string {
	if h == "" {
		return ""
	}
	return "Hint: " + h
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// MergeExtra joins the non-empty parts with sep.
func MergeExtra(parts []string, sep string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
