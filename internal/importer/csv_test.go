package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniffDelimiter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		tsv  bool
		want rune
	}{
		{"comma", "a,b\nc,d\n", false, ','},
		{"semicolon", "front;back\nA;B\nC;D\n", false, ';'},
		{"tab", "a\tb\tc\nd\te\tf\n", false, '\t'},
		{"pipe", "a|b\nc|d\n", false, '|'},
		{"quoted commas ignored", "\"a, x\";b\n\"c, y\";d\n", false, ';'},
		{"inconsistent falls back", "a,b\nc\n", false, ','},
		{"inconsistent tsv falls back", "a,b\nc\n", true, '\t'},
		{"tsv with commas in fields", "Paris, France\tcapital\nRome, Italy\tcapital\n", true, '\t'},
		{"csv with same text prefers comma", "Paris, France\tcapital\nRome, Italy\tcapital\n", false, ','},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SniffDelimiter([]byte(tt.data), tt.tsv))
		})
	}
}

func TestCSVParser_WithHeader(t *testing.T) {
	t.Parallel()

	data := "Question,Answer,Category,Tags\n" +
		"What is 2+2?,4,Math,\"arith, basic\"\n" +
		",missing front,Math,\n" +
		"only\n"

	res, err := CSVParser{}.Parse(context.Background(), Source{Name: "cards.csv", Data: []byte(data)}, Options{})
	require.NoError(t, err)

	assert.Equal(t, ",", res.Settings["delimiter"])
	assert.Equal(t, true, res.Settings["has_header"])
	assert.True(t, res.DeckDetected)

	require.Len(t, res.Cards, 1)
	assert.Equal(t, "What is 2+2?", res.Cards[0].Front)
	assert.Equal(t, "4", res.Cards[0].Back)
	assert.Equal(t, "Math", res.Cards[0].DeckName)
	assert.Equal(t, []string{"arith", "basic"}, res.Cards[0].Tags)

	assert.Equal(t, []string{
		"Line 3: Front - Content is empty",
		"Line 4: Not enough columns",
	}, res.Errors)
}

func TestCSVParser_NoHeader(t *testing.T) {
	t.Parallel()

	data := "\ufeffKitten,Cat\nPuppy,<b>Dog</b>\n"
	res, err := CSVParser{}.Parse(context.Background(), Source{Name: "pets.csv", Data: []byte(data)}, Options{})
	require.NoError(t, err)

	assert.Equal(t, false, res.Settings["has_header"])
	assert.False(t, res.DeckDetected)
	require.Len(t, res.Cards, 2)
	assert.Equal(t, "Kitten", res.Cards[0].Front)
	assert.False(t, res.Cards[0].HTMLEnabled)
	assert.True(t, res.Cards[1].HTMLEnabled)
	assert.Empty(t, res.Errors)
}

func TestCSVParser_TSVKeepsCommasInFields(t *testing.T) {
	t.Parallel()

	data := "Paris, France\tcapital\nRome, Italy\tcapital\n"
	res, err := CSVParser{}.Parse(context.Background(), Source{Name: "cities.tsv", Data: []byte(data)}, Options{})
	require.NoError(t, err)

	assert.Equal(t, "\t", res.Settings["delimiter"])
	require.Len(t, res.Cards, 2)
	assert.Equal(t, "Paris, France", res.Cards[0].Front)
	assert.Equal(t, "capital", res.Cards[0].Back)
	assert.Equal(t, "Rome, Italy", res.Cards[1].Front)
	assert.Empty(t, res.Errors)
}

func TestCSVParser_TSVWithOverrides(t *testing.T) {
	t.Parallel()

	noHeader := false
	p := CSVParser{Delimiter: '\t', HasHeader: &noHeader}
	data := "front\tback\nA\tB\n"

	res, err := p.Parse(context.Background(), Source{Name: "x.tsv", Data: []byte(data)}, Options{})
	require.NoError(t, err)
	require.Len(t, res.Cards, 2)
	assert.Equal(t, "front", res.Cards[0].Front)
}

func TestDetectHeader_NumericColumn(t *testing.T) {
	t.Parallel()

	assert.True(t, detectHeader([][]string{{"name", "score"}, {"x", "1"}, {"y", "2"}}))
	assert.False(t, detectHeader([][]string{{"x", "1"}, {"y", "2"}}))
	assert.False(t, detectHeader([][]string{{"alpha", "beta"}}))
}
