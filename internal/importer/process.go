package importer

import (
	"fmt"
	"sort"
)

const (
	previewLength = 100
	topTagCount   = 10
	noDeckLabel   = "No Deck"
)

// ProcessOptions control how parsed cards are prepared for display or saving.
type ProcessOptions struct {
	// DefaultDeck is given to cards without a deck.
	DefaultDeck string
	// AutoAssignDecks picks a deck from card content instead of DefaultDeck.
	AutoAssignDecks bool
	// StripHTML removes markup from both sides. It takes precedence over HTML.
	StripHTML bool
	// HTML selects markup handling when StripHTML is false.
	HTML HTMLMode
}

// ProcessedCard is a Flashcard with plain-text previews of both sides.
type ProcessedCard struct {
	Flashcard
	FrontPreview string `json:"front_preview"`
	BackPreview  string `json:"back_preview"`
}

// Process assigns missing decks and applies HTML handling. It modifies
// cards in place and returns the prepared cards with any warnings.
func Process(cards []Flashcard, opts ProcessOptions) ([]ProcessedCard, []string) {
	var warnings []string

	cov := AnalyzeDeckCoverage(cards)
	if cov.NeedsAssignment() {
		switch {
		case opts.AutoAssignDecks:
			counts := AssignSuggestedDecks(cards)
			warnings = append(warnings, fmt.Sprintf("Auto-assigned decks: %s", formatCounts(counts)))
		case opts.DefaultDeck != "":
			n := AssignDefaultDeck(cards, opts.DefaultDeck)
			warnings = append(warnings, fmt.Sprintf("Assigned default deck '%s' to %d cards", opts.DefaultDeck, n))
		default:
			warnings = append(warnings, MissingDeckWarning(cov.CardsWithoutDeck, cov.TotalCards))
		}
	}

	mode := opts.HTML
	if opts.StripHTML {
		mode = HTMLStrip
	}
	if mode == "" {
		mode = HTMLKeep
	}

	out := make([]ProcessedCard, 0, len(cards))
	for _, c := range cards {
		if mode != HTMLKeep {
			c.Front = ProcessHTML(c.Front, mode)
			c.Back = ProcessHTML(c.Back, mode)
			c.HTMLEnabled = false
		}
		out = append(out, ProcessedCard{
			Flashcard:    c,
			FrontPreview: Preview(c.Front, previewLength),
			BackPreview:  Preview(c.Back, previewLength),
		})
	}
	return out, warnings
}

// Statistics summarise a set of processed cards.
type Statistics struct {
	DeckDistribution map[string]int `json:"deck_distribution"`
	TopTags          map[string]int `json:"top_tags"`
	CardsWithHTML    int            `json:"cards_with_html"`
	CardsWithCloze   int            `json:"cards_with_cloze"`
	CardsWithMedia   int            `json:"cards_with_media"`
}

// Summarize counts cards per deck and the ten most used tags.
func Summarize(cards []ProcessedCard) Statistics {
	st := Statistics{DeckDistribution: map[string]int{}, TopTags: map[string]int{}}
	tagCounts := map[string]int{}
	for _, c := range cards {
		deck := c.DeckName
		if deck == "" {
			deck = noDeckLabel
		}
		st.DeckDistribution[deck]++
		for _, t := range c.Tags {
			tagCounts[t]++
		}
		if c.HTMLEnabled {
			st.CardsWithHTML++
		}
		if c.CardType == CardTypeCloze {
			st.CardsWithCloze++
		}
		if c.HTMLEnabled || soundPattern.MatchString(c.Front+c.Back) {
			m := ExtractMedia(c.Front + " " + c.Back)
			if len(m.Images) > 0 || len(m.Sounds) > 0 {
				st.CardsWithMedia++
			}
		}
	}

	tags := make([]string, 0, len(tagCounts))
	for t := range tagCounts {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool {
		if tagCounts[tags[i]] != tagCounts[tags[j]] {
			return tagCounts[tags[i]] > tagCounts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > topTagCount {
		tags = tags[:topTagCount]
	}
	for _, t := range tags {
		st.TopTags[t] = tagCounts[t]
	}
	return st
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := ""
	for i, k := range keys {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s=%d", k, counts[k])
	}
	return s
}
