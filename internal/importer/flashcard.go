package importer

import (
	"strings"
	"time"
)

// CardType is the kind of note a Flashcard becomes.
type CardType string

const (
	CardTypeBasic    CardType = "basic"
	CardTypeReversed CardType = "reversed"
	CardTypeCloze    CardType = "cloze"
)

// Flashcard is one card read from an import file.
type Flashcard struct {
	Front       string    `json:"front"`
	Back        string    `json:"back"`
	DeckName    string    `json:"deck_name,omitempty"`
	Tags        []string  `json:"tags"`
	CardType    CardType  `json:"card_type"`
	Extra       string    `json:"extra,omitempty"`
	SourceFile  string    `json:"source_file,omitempty"`
	HTMLEnabled bool      `json:"html_enabled"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewFlashcard trims its inputs and detects cloze and HTML content.
func NewFlashcard(front, back, deckName string, tags []string, sourceFile string) Flashcard {
	c := Flashcard{
		Front:      strings.TrimSpace(front),
		Back:       strings.TrimSpace(back),
		DeckName:   strings.TrimSpace(deckName),
		Tags:       cleanTags(tags),
		CardType:   CardTypeBasic,
		SourceFile: sourceFile,
		CreatedAt:  time.Now().UTC(),
	}
	if IsCloze(c.Front) {
		c.CardType = CardTypeCloze
	}
	c.HTMLEnabled = ContainsHTML(c.Front) || ContainsHTML(c.Back)
	return c
}

// Valid reports whether both sides have content.
func (c Flashcard) Valid() bool {
	return c.Front != "" && c.Back != ""
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Settings describes what a parser detected about a file.
type Settings map[string]interface{}

// Result is the outcome of parsing one file.
type Result struct {
	Cards        []Flashcard `json:"cards"`
	Skipped      int         `json:"skipped"`
	Errors       []string    `json:"errors"`
	SourceFile   string      `json:"source_file"`
	DeckDetected bool        `json:"deck_detected"`
	Settings     Settings    `json:"settings"`

	// Decks lists the deck names found in an Anki package.
	Decks []string `json:"available_decks,omitempty"`
}

func newResult(source string) *Result {
	return &Result{
		Cards:      []Flashcard{},
		Errors:     []string{},
		SourceFile: source,
		Settings:   Settings{},
	}
}

// AddCard appends a parsed card.
func (r *Result) AddCard(c Flashcard) {
	r.Cards = append(r.Cards, c)
}

// AddError records a skipped row.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Skipped++
}

// Total is the number of rows that produced a card or an error.
func (r *Result) Total() int {
	return len(r.Cards) + r.Skipped
}

// SuccessRate is the percentage of rows that became cards.
func (r *Result) SuccessRate() float64 {
	if r.Total() == 0 {
		return 0
	}
	return float64(len(r.Cards)) / float64(r.Total()) * 100
}

// finish records the "no cards" error shared by every parser.
func (r *Result) finish(what string) {
	if len(r.Cards) == 0 {
		r.AddError("No valid cards found in " + what)
	}
}
