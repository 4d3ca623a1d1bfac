package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_DefaultDeckAndStripHTML(t *testing.T) {
	t.Parallel()

	cards := []Flashcard{
		card("<b>Bold</b> front", "back", ""),
		card("plain", "answer", "Deck"),
	}
	out, warnings := Process(cards, ProcessOptions{DefaultDeck: "Inbox", StripHTML: true})

	require.Len(t, out, 2)
	assert.Equal(t, "Bold front", out[0].Front)
	assert.False(t, out[0].HTMLEnabled)
	assert.Equal(t, "Inbox", out[0].DeckName)
	assert.Equal(t, "Deck", out[1].DeckName)
	assert.Equal(t, []string{"Assigned default deck 'Inbox' to 1 cards"}, warnings)
}

func TestProcess_AutoAssign(t *testing.T) {
	t.Parallel()

	cards := []Flashcard{card("Highest mountain?", "Everest", "")}
	out, warnings := Process(cards, ProcessOptions{AutoAssignDecks: true, DefaultDeck: "ignored"})

	assert.Equal(t, "Geography", out[0].DeckName)
	assert.Equal(t, []string{"Auto-assigned decks: Geography=1"}, warnings)
}

func TestProcess_WarnsWithoutDeckOptions(t *testing.T) {
	t.Parallel()

	cards := []Flashcard{card("<i>x</i>", strings.Repeat("y", 150), "")}
	out, warnings := Process(cards, ProcessOptions{})

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "All 1 cards are missing deck information")
	assert.Equal(t, "<i>x</i>", out[0].Front)
	assert.Equal(t, "x", out[0].FrontPreview)
	assert.Len(t, out[0].BackPreview, 100)
	assert.True(t, strings.HasSuffix(out[0].BackPreview, "..."))
}

func TestProcess_ConvertMode(t *testing.T) {
	t.Parallel()

	cards := []Flashcard{card(`<a href="http://go.dev">Go</a>`, "lang", "D")}
	out, warnings := Process(cards, ProcessOptions{HTML: HTMLConvert})

	assert.Empty(t, warnings)
	assert.Equal(t, "Go (http://go.dev)", out[0].Front)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	out, _ := Process([]Flashcard{
		card("{{c1::x}}", "y", "A", "t1", "t2"),
		card(`<img src="p.png">pic`, "z", "A", "t1"),
		card("q [sound:a.mp3]", "a", ""),
	}, ProcessOptions{})

	st := Summarize(out)
	assert.Equal(t, map[string]int{"A": 2, "No Deck": 1}, st.DeckDistribution)
	assert.Equal(t, map[string]int{"t1": 2, "t2": 1}, st.TopTags)
	assert.Equal(t, 1, st.CardsWithHTML)
	assert.Equal(t, 1, st.CardsWithCloze)
	assert.Equal(t, 2, st.CardsWithMedia)
}
