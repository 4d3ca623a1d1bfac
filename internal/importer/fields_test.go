package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFieldMapping(t *testing.T) {
	t.Parallel()

	m := DetectFieldMapping([]string{"Category", "Term", "Definition", "Notes", "Clue", "Keywords"})
	assert.Equal(t, FieldMapping{Front: 1, Back: 2, Deck: 0, Tags: 5, Extra: 3, Hint: 4}, m)

	assert.Equal(t, DefaultFieldMapping(), DetectFieldMapping([]string{"x", "y"}))
}

func TestFieldMappingValidate(t *testing.T) {
	t.Parallel()

	assert.Empty(t, DefaultFieldMapping().Validate(2))

	errs := FieldMapping{Front: 3, Back: 3, Deck: -1, Tags: -1, Extra: -1, Hint: -1}.Validate(2)
	assert.Len(t, errs, 3)
}

func TestRowCard(t *testing.T) {
	t.Parallel()

	m := FieldMapping{Front: 0, Back: 1, Deck: 2, Tags: 3, Extra: 4, Hint: 5}
	card, msg := m.rowCard([]string{" Q ", "A", "Deck", "t1,t2", "more", "think"}, "Row 2", "f.csv")
	assert.Empty(t, msg)
	assert.Equal(t, "Q", card.Front)
	assert.Equal(t, "Deck", card.DeckName)
	assert.Equal(t, []string{"t1", "t2"}, card.Tags)
	assert.Equal(t, "more\nHint: think", card.Extra)
	assert.Equal(t, "f.csv", card.SourceFile)

	_, msg = m.rowCard([]string{"Q"}, "Row 3", "f.csv")
	assert.Equal(t, "Row 3: Not enough columns", msg)

	_, msg = m.rowCard([]string{"Q", " "}, "Row 4", "f.csv")
	assert.Equal(t, "Row 4: Back - Content is empty", msg)
}
