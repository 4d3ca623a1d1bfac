package importer

import (
	"fmt"
	"strings"
)

// DefaultDeckName is used by AssignDefaultDeck when no name is given.
const DefaultDeckName = "Imported"

// fallbackDeck is the group for cards that match no category.
const fallbackDeck = "General"

// deckCategories is checked in order. Ties in SuggestDeckFromContent go to
// the earlier category.
var deckCategories = []struct {
	name     string
	keywords []string
}{
	{"Programming", []string{"python", "java", "javascript", "code", "function", "class", "variable", "loop", "algorithm", "api", "database", "sql"}},
	{"Languages", []string{"spanish", "french", "german", "japanese", "chinese", "english", "vocabulary", "grammar", "conjugation", "translation"}},
	{"Science", []string{"biology", "chemistry", "physics", "atom", "molecule", "cell", "energy", "force", "evolution", "dna", "element"}},
	{"Math", []string{"equation", "formula", "calculate", "number", "algebra", "geometry", "calculus", "derivative", "integral", "function", "graph"}},
	{"History", []string{"war", "century", "empire", "king", "president", "revolution", "ancient", "medieval", "dynasty", "civilization"}},
	{"Geography", []string{"country", "capital", "continent", "ocean", "mountain", "river", "population", "climate", "region", "border"}},
	{"Medicine", []string{"disease", "symptom", "treatment", "drug", "anatomy", "diagnosis", "patient", "surgery", "therapy", "medical"}},
}

func cardText(c Flashcard) string {
	return strings.ToLower(c.Front + " " + c.Back + " " + strings.Join(c.Tags, " "))
}

// SuggestDeckFromContent returns the category whose keywords appear most
// often across cards, or "" when none match.
func SuggestDeckFromContent(cards []Flashcard) string {
	if len(cards) == 0 {
		return ""
	}
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		parts = append(parts, cardText(c))
	}
	combined := strings.Join(parts, " ")

	best, bestScore := "", 0
	for _, cat := range deckCategories {
		score := 0
		for _, kw := range cat.keywords {
			if strings.Contains(combined, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = cat.name, score
		}
	}
	return best
}

// SuggestDeckFromTags returns the most common tag in title case, or "".
func SuggestDeckFromTags(cards []Flashcard) string {
	counts := map[string]int{}
	var order []string
	for _, c := range cards {
		for _, t := range c.Tags {
			if counts[t] == 0 {
				order = append(order, t)
			}
			counts[t]++
		}
	}

	best, bestCount := "", 0
	for _, t := range order {
		if counts[t] > bestCount {
			best, bestCount = t, counts[t]
		}
	}
	return titleCase(best)
}

// SuggestDeck returns the first category matching c, or "General".
func SuggestDeck(c Flashcard) string {
	text := cardText(c)
	for _, cat := range deckCategories {
		for _, kw := range cat.keywords {
			if strings.Contains(text, kw) {
				return cat.name
			}
		}
	}
	return fallbackDeck
}

// DeckCoverage summarises how many cards carry a deck name.
type DeckCoverage struct {
	TotalCards       int      `json:"total_cards"`
	CardsWithDeck    int      `json:"cards_with_deck"`
	CardsWithoutDeck int      `json:"cards_without_deck"`
	CoveragePercent  float64  `json:"coverage_percent"`
	UniqueDecks      []string `json:"unique_decks"`
}

// NeedsAssignment reports whether any card lacks a deck.
func (d DeckCoverage) NeedsAssignment() bool {
	return d.CardsWithoutDeck > 0
}

// AnalyzeDeckCoverage counts cards with and without a deck name.
func AnalyzeDeckCoverage(cards []Flashcard) DeckCoverage {
	cov := DeckCoverage{TotalCards: len(cards), UniqueDecks: []string{}}
	seen := map[string]bool{}
	for _, c := range cards {
		if c.DeckName == "" {
			continue
		}
		cov.CardsWithDeck++
		if !seen[c.DeckName] {
			seen[c.DeckName] = true
			cov.UniqueDecks = append(cov.UniqueDecks, c.DeckName)
		}
	}
	cov.CardsWithoutDeck = cov.TotalCards - cov.CardsWithDeck
	if cov.TotalCards > 0 {
		cov.CoveragePercent = float64(cov.CardsWithDeck) / float64(cov.TotalCards) * 100
	}
	return cov
}

// MissingDeckWarning describes cards that will land in a default deck.
func MissingDeckWarning(withoutDeck, total int) string {
	switch {
	case withoutDeck <= 0:
		return ""
	case withoutDeck == total:
		return fmt.Sprintf("Warning: All %d cards are missing deck information. "+
			"They will be imported to a default deck. "+
			"Consider organizing them into decks after import.", total)
	default:
		pct := float64(withoutDeck) / float64(total) * 100
		return fmt.Sprintf("Warning: %d of %d cards (%.1f%%) are missing deck information. "+
			"These will be imported to a default deck.", withoutDeck, total, pct)
	}
}

// AssignDefaultDeck sets name on every card without a deck and returns how
// many changed.
func AssignDefaultDeck(cards []Flashcard, name string) int {
	if name == "" {
		name = DefaultDeckName
	}
	n := 0
	for i := range cards {
		if cards[i].DeckName == "" {
			cards[i].DeckName = name
			n++
		}
	}
	return n
}

// AssignSuggestedDecks gives every card without a deck its SuggestDeck
// category and returns the number assigned per deck.
func AssignSuggestedDecks(cards []Flashcard) map[string]int {
	counts := map[string]int{}
	for i := range cards {
		if cards[i].DeckName != "" {
			continue
		}
		cards[i].DeckName = SuggestDeck(cards[i])
		counts[cards[i].DeckName]++
	}
	return counts
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
