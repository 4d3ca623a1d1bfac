package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTxtHeaders(t *testing.T) {
	t.Parallel()

	h := ParseTxtHeaders([]string{
		"#separator:Semicolon",
		"#html:true",
		"#deck column:3",
		"#tags column: 4",
		"#notetype column:5",
		"#unknown:thing",
		"data;line",
		"#not a header",
	})
	assert.Equal(t, ";", h.Separator)
	assert.True(t, h.HTML)
	assert.Equal(t, map[string]int{"deck": 3, "tags": 4, "notetype": 5}, h.Columns)
	assert.Equal(t, 6, h.Lines)

	def := ParseTxtHeaders([]string{"#separator:weird", "a\tb"})
	assert.Equal(t, "\t", def.Separator)
}

func TestTxtParser(t *testing.T) {
	t.Parallel()

	data := "#separator:tab\n" +
		"#html:false\n" +
		"#deck column:3\n" +
		"#tags column:4\n" +
		"What is Go?\tA language\tProgramming\tgo lang\r\n" +
		"\t\tX\n" +
		"Only one field\n" +
		"\n" +
		"The {{c1::capital}} of France\tParis\t\t\n"

	res, err := TxtParser{}.Parse(context.Background(), Source{Name: "export.txt", Data: []byte(data)}, Options{})
	require.NoError(t, err)

	assert.True(t, res.DeckDetected)
	assert.Equal(t, "\t", res.Settings["separator"])
	require.Len(t, res.Cards, 2)

	first := res.Cards[0]
	assert.Equal(t, "What is Go?", first.Front)
	assert.Equal(t, "A language", first.Back)
	assert.Equal(t, "Programming", first.DeckName)
	assert.Equal(t, []string{"go", "lang"}, first.Tags)
	assert.Equal(t, CardTypeBasic, first.CardType)
	assert.Equal(t, "export.txt", first.SourceFile)

	assert.Equal(t, CardTypeCloze, res.Cards[1].CardType)
	assert.Empty(t, res.Cards[1].DeckName)

	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, []string{
		"Line 6: Front field - Content is empty",
		"Line 7: Not enough fields (need at least front and back)",
	}, res.Errors)
	assert.InDelta(t, 50.0, res.SuccessRate(), 0.001)
}

func TestTxtParser_MetadataColumnsBeforeContent(t *testing.T) {
	t.Parallel()

	data := "#separator:comma\n#html:true\n#deck column:1\nSpanish,hola,hello\n"
	res, err := TxtParser{}.Parse(context.Background(), Source{Name: "a.txt", Data: []byte(data)}, Options{})
	require.NoError(t, err)
	require.Len(t, res.Cards, 1)
	assert.Equal(t, "hola", res.Cards[0].Front)
	assert.Equal(t, "hello", res.Cards[0].Back)
	assert.Equal(t, "Spanish", res.Cards[0].DeckName)
	assert.True(t, res.Cards[0].HTMLEnabled)
}

func TestTxtParser_Empty(t *testing.T) {
	t.Parallel()

	res, err := TxtParser{}.Parse(context.Background(), Source{Name: "a.txt", Data: []byte("#separator:tab\n\n")}, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Cards)
	assert.Equal(t, []string{"No valid cards found in file"}, res.Errors)
	assert.False(t, res.DeckDetected)
}
