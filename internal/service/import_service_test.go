package service_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/phrazzld/flashcard-api/internal/importer"
	"github.com/phrazzld/flashcard-api/internal/service"
	"github.com/phrazzld/flashcard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) imports(maxSize int64) service.ImportService {
	svc, err := service.NewImportService(importer.DefaultRegistry(), e.decks(), e.cards(), maxSize, e.logger)
	require.NoError(e.t, err)
	return svc
}

func csvSource(lines ...string) importer.Source {
	return importer.Source{Name: "cards.csv", Data: []byte(strings.Join(lines, "\n") + "\n")}
}

func TestImportService_Formats(t *testing.T) {
	env := newTestEnv(t)

	info := env.imports(0).Formats()
	assert.Contains(t, info.Formats, ".csv")
	assert.Contains(t, info.Formats, ".apkg")
	assert.Equal(t, "Comma-separated values", info.Descriptions[".csv"])
	assert.Len(t, info.Descriptions, len(info.Formats))
}

func TestImportService_Import(t *testing.T) {
	src := csvSource(
		"Front,Back,Deck,Tags",
		"hola,hello,Spanish,greeting",
		"gato,cat,Spanish,animal",
		"bonjour,hello,French,",
		"existing,dup,French,",
	)

	t.Run("parse only", func(t *testing.T) {
		env := newTestEnv(t)
		userID := env.register("imp@example.com")

		report, err := env.imports(0).Import(env.ctx, userID, src, service.ImportOptions{})
		require.NoError(t, err)
		assert.Equal(t, 4, report.Summary.TotalImported)
		assert.True(t, report.Summary.DeckDetected)
		assert.Equal(t, float64(100), report.Summary.SuccessRate)
		assert.Zero(t, report.Summary.Saved)
		assert.Equal(t, 2, report.Statistics.DeckDistribution["Spanish"])
		assert.Equal(t, "hola", report.Cards[0].FrontPreview)

		decks, err := env.decks().ListDecks(env.ctx, userID, 0, 0)
		require.NoError(t, err)
		assert.Empty(t, decks)
	})

	t.Run("save creates missing decks and reports per-card failures", func(t *testing.T) {
		env := newTestEnv(t)
		userID := env.register("imp@example.com")
		env.createDeck(userID, "French")
		env.createCard(userID, "French", "existing", "card", "")

		env.expectCommit(1) // Spanish deck
		env.expectCommit(3) // hola, gato, bonjour
		env.expectRollback()

		report, err := env.imports(0).Import(env.ctx, userID, src, service.ImportOptions{Save: true})
		require.NoError(t, err)
		assert.Equal(t, 3, report.Summary.Saved)
		assert.Equal(t, []string{"Spanish"}, report.Summary.CreatedDecks)
		assert.Equal(t, []string{"Card 4: Note with same sort field already exists in this notetype."}, report.Errors)

		cards, err := env.cards().ListCards(env.ctx, userID, store.CardFilter{DeckName: "Spanish", Tags: []string{"greeting"}})
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, "hello", cards[0].Note.Back())
	})

	t.Run("default deck for cards without one", func(t *testing.T) {
		env := newTestEnv(t)
		userID := env.register("imp@example.com")
		env.expectCommit(1)
		env.expectCommit(2)

		report, err := env.imports(0).Import(env.ctx, userID,
			csvSource("Front,Back", "q1,a1", "q2,a2"),
			service.ImportOptions{DefaultDeck: "Inbox", Save: true})
		require.NoError(t, err)
		assert.Equal(t, 2, report.Summary.Saved)
		assert.Equal(t, []string{"Assigned default deck 'Inbox' to 2 cards"}, report.Warnings)
	})

	t.Run("cards without deck are not saved", func(t *testing.T) {
		env := newTestEnv(t)
		userID := env.register("imp@example.com")

		report, err := env.imports(0).Import(env.ctx, userID,
			csvSource("Front,Back", "q1,a1"), service.ImportOptions{Save: true})
		require.NoError(t, err)
		assert.Zero(t, report.Summary.Saved)
		assert.Equal(t, []string{"Card 1: no deck assigned"}, report.Errors)
	})

	t.Run("strip html", func(t *testing.T) {
		env := newTestEnv(t)
		userID := env.register("imp@example.com")

		report, err := env.imports(0).Import(env.ctx, userID,
			csvSource("Front,Back,Deck", "<b>bold</b>,plain,Deck"), service.ImportOptions{StripHTML: true})
		require.NoError(t, err)
		require.Len(t, report.Cards, 1)
		assert.Equal(t, "bold", report.Cards[0].Front)
		assert.False(t, report.Cards[0].HTMLEnabled)
	})

	t.Run("file too large", func(t *testing.T) {
		env := newTestEnv(t)
		userID := env.register("imp@example.com")

		_, err := env.imports(1<<20).Import(env.ctx, userID,
			importer.Source{Name: "big.csv", Data: make([]byte, 1<<20+1)}, service.ImportOptions{})
		assert.ErrorIs(t, err, importer.ErrFileTooLarge)
		assert.Equal(t, "File too large. Maximum size is 1MB", publicMessage(t, err))
	})

	t.Run("unsupported format", func(t *testing.T) {
		env := newTestEnv(t)
		userID := env.register("imp@example.com")

		_, err := env.imports(0).Import(env.ctx, userID,
			importer.Source{Name: "notes.doc", Data: []byte("x")}, service.ImportOptions{})
		assert.ErrorIs(t, err, importer.ErrUnsupportedFormat)
	})
}

func TestImportService_Preview(t *testing.T) {
	env := newTestEnv(t)
	lines := []string{"Front,Back,Deck"}
	for i := 1; i <= 7; i++ {
		lines = append(lines, fmt.Sprintf("q%d,a%d,Deck", i, i))
	}

	preview, err := env.imports(0).Preview(env.ctx, csvSource(lines...))
	require.NoError(t, err)
	assert.Equal(t, "cards.csv", preview.Filename)
	assert.Equal(t, ".csv", preview.Format)
	assert.Equal(t, 7, preview.TotalCards)
	assert.Len(t, preview.SampleCards, service.PreviewSampleSize)
	assert.True(t, preview.HasDeckInfo)
	assert.Equal(t, ",", preview.Settings["delimiter"])
}

func TestImportService_Validate(t *testing.T) {
	tests := []struct {
		name      string
		src       importer.Source
		valid     bool
		canImport bool
		total     int
		issues    []string
	}{
		{
			name:      "clean file",
			src:       csvSource("Front,Back,Deck", "q,a,Deck"),
			valid:     true,
			canImport: true,
			total:     1,
			issues:    []string{},
		},
		{
			name:      "missing deck is only a warning",
			src:       csvSource("Front,Back", "q,a"),
			valid:     true,
			canImport: true,
			total:     1,
			issues:    []string{"No deck information found - cards will need deck assignment"},
		},
		{
			name: "no cards",
			src:  csvSource("Front,Back"),
			issues: []string{
				"No valid cards found in file",
				"No deck information found - cards will need deck assignment",
			},
		},
		{
			name:   "unsupported format",
			src:    importer.Source{Name: "notes.pdf", Data: []byte("x")},
			issues: []string{"Unsupported file format: .pdf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			v := env.imports(0).Validate(env.ctx, tt.src)
			assert.Equal(t, tt.valid, v.Valid)
			assert.Equal(t, tt.canImport, v.CanImport)
			assert.Equal(t, tt.total, v.TotalCards)
			assert.Equal(t, tt.issues, v.Issues)
			assert.Equal(t, tt.src.Name, v.Filename)
		})
	}
}
