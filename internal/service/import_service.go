package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/importer"
	"github.com/phrazzld/flashcard-api/internal/platform/logger"
)

// PreviewSampleSize is the number of cards returned by Preview.
const PreviewSampleSize = 5

// ImportOptions control an upload.
type ImportOptions struct {
	DefaultDeck     string
	AutoAssignDecks bool
	StripHTML       bool
	// DeckFilter keeps only the named deck of an Anki package.
	DeckFilter string
	// Save persists the imported cards, creating missing decks.
	Save bool
}

// ImportSummary gives the totals of an import.
type ImportSummary struct {
	TotalImported int     `json:"total_imported"`
	TotalSkipped  int     `json:"total_skipped"`
	SuccessRate   float64 `json:"success_rate"`
	DeckDetected  bool    `json:"deck_detected"`
	// Saved counts the cards persisted when ImportOptions.Save is set.
	Saved        int      `json:"saved"`
	CreatedDecks []string `json:"created_decks,omitempty"`
}

// ImportReport is the outcome of Import.
type ImportReport struct {
	Summary        ImportSummary            `json:"summary"`
	Cards          []importer.ProcessedCard `json:"cards"`
	Statistics     importer.Statistics      `json:"statistics"`
	AvailableDecks []string                 `json:"available_decks"`
	Warnings       []string                 `json:"warnings"`
	Errors         []string                 `json:"errors"`
}

// ImportPreview describes a file without processing it.
type ImportPreview struct {
	Filename       string               `json:"filename"`
	Format         string               `json:"format"`
	Settings       importer.Settings    `json:"settings"`
	AvailableDecks []string             `json:"available_decks"`
	TotalCards     int                  `json:"total_cards"`
	SampleCards    []importer.Flashcard `json:"sample_cards"`
	HasDeckInfo    bool                 `json:"has_deck_info"`
}

// ImportValidation lists the problems found in a file.
type ImportValidation struct {
	Valid      bool     `json:"valid"`
	Filename   string   `json:"filename"`
	Format     *string  `json:"format"`
	TotalCards int      `json:"total_cards"`
	Issues     []string `json:"issues"`
	CanImport  bool     `json:"can_import"`
}

// FormatInfo lists the supported extensions with their descriptions.
type FormatInfo struct {
	Formats      []string          `json:"formats"`
	Descriptions map[string]string `json:"description"`
}

// ImportService reads flashcards from uploaded files.
type ImportService interface {
	Formats() FormatInfo
	// Import parses src, prepares the cards and, with opts.Save, stores them for userID.
	Import(ctx context.Context, userID uuid.UUID, src importer.Source, opts ImportOptions) (*ImportReport, error)
	// Preview parses src and returns the detected settings with a few sample cards.
	Preview(ctx context.Context, src importer.Source) (*ImportPreview, error)
	// Validate never fails; problems are reported as issues.
	Validate(ctx context.Context, src importer.Source) *ImportValidation
}

type importServiceImpl struct {
	registry *importer.Registry
	decks    DeckService
	cards    CardService
	maxSize  int64
	logger   *slog.Logger
}

// NewImportService creates an ImportService. maxSize bounds uploads in
// bytes; zero uses importer.MaxFileSize.
func NewImportService(
	registry *importer.Registry,
	decks DeckService,
	cards CardService,
	maxSize int64,
	log *slog.Logger,
) (ImportService, error) {
	switch {
	case registry == nil:
		return nil, fmt.Errorf("%w: importer registry", ErrMissingDependency)
	case decks == nil:
		return nil, fmt.Errorf("%w: deck service", ErrMissingDependency)
	case cards == nil:
		return nil, fmt.Errorf("%w: card service", ErrMissingDependency)
	}
	if maxSize <= 0 {
		maxSize = importer.MaxFileSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &importServiceImpl{
		registry: registry,
		decks:    decks,
		cards:    cards,
		maxSize:  maxSize,
		logger:   log.With(slog.String("component", "import_service")),
	}, nil
}

func (s *importServiceImpl) Formats() FormatInfo {
	info := FormatInfo{Formats: s.registry.Formats(), Descriptions: map[string]string{}}
	for _, f := range info.Formats {
		info.Descriptions[f] = s.registry.Description(f)
	}
	return info
}

// parse checks size and format before running the parser.
func (s *importServiceImpl) parse(ctx context.Context, src importer.Source, opts importer.Options) (*importer.Result, error) {
	if int64(len(src.Data)) > s.maxSize {
		return nil, newPublicError("import", "parse",
			fmt.Sprintf("File too large. Maximum size is %dMB", s.maxSize>>20), importer.ErrFileTooLarge)
	}
	return s.registry.Parse(ctx, src, opts)
}

func (s *importServiceImpl) Import(
	ctx context.Context,
	userID uuid.UUID,
	src importer.Source,
	opts ImportOptions,
) (*ImportReport, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("source_file", src.Name))

	res, err := s.parse(ctx, src, importer.Options{DeckFilter: opts.DeckFilter})
	if err != nil {
		log.Warn("import parse failed", slog.String("error", err.Error()))
		return nil, err
	}
	log.Info("parsed import file", slog.Int("cards", len(res.Cards)), slog.Int("skipped", res.Skipped))

	processed, warnings := importer.Process(res.Cards, importer.ProcessOptions{
		DefaultDeck:     opts.DefaultDeck,
		AutoAssignDecks: opts.AutoAssignDecks,
		StripHTML:       opts.StripHTML,
	})

	report := &ImportReport{
		Summary: ImportSummary{
			TotalImported: len(processed),
			TotalSkipped:  res.Skipped,
			SuccessRate:   res.SuccessRate(),
			DeckDetected:  res.DeckDetected,
		},
		Cards:          processed,
		Statistics:     importer.Summarize(processed),
		AvailableDecks: res.Decks,
		Warnings:       append([]string{}, warnings...),
		Errors:         append([]string{}, res.Errors...),
	}

	if opts.Save {
		if err := s.save(ctx, userID, report); err != nil {
			return nil, err
		}
		log.Info("imported cards saved",
			slog.Int("saved", report.Summary.Saved),
			slog.Int("created_decks", len(report.Summary.CreatedDecks)))
	}
	return report, nil
}

// save stores every processed card. Per-card failures are added to the
// report; only errors that would fail every card abort the import.
func (s *importServiceImpl) save(ctx context.Context, userID uuid.UUID, report *ImportReport) error {
	decks := map[string]bool{}
	for i, c := range report.Cards {
		if err := ctx.Err(); err != nil {
			return err
		}
		label := fmt.Sprintf("Card %d", i+1)

		deck := strings.TrimSpace(c.DeckName)
		if deck == "" {
			report.Errors = append(report.Errors, label+": no deck assigned")
			continue
		}
		if _, seen := decks[deck]; !seen {
			_, created, err := s.decks.EnsureDeck(ctx, userID, deck)
			if err != nil {
				if domain.IsValidationError(err) {
					report.Errors = append(report.Errors, fmt.Sprintf("%s: invalid deck name %q", label, deck))
					continue
				}
				return err
			}
			decks[deck] = created
			if created {
				report.Summary.CreatedDecks = append(report.Summary.CreatedDecks, deck)
			}
		}

		_, err := s.cards.CreateCard(ctx, userID, CreateCardParams{
			TypeName: notetypeFor(c.CardType),
			DeckName: deck,
			Front:    c.Front,
			Back:     c.Back,
			Tags:     importTags(c.Tags),
		})
		if err != nil {
			if msg, ok := PublicMessage(err); ok {
				report.Errors = append(report.Errors, label+": "+msg)
				continue
			}
			if domain.IsValidationError(err) {
				report.Errors = append(report.Errors, label+": "+err.Error())
				continue
			}
			return fmt.Errorf("failed to save imported card: %w", err)
		}
		report.Summary.Saved++
	}
	return nil
}

func notetypeFor(t importer.CardType) string {
	if t == importer.CardTypeReversed {
		return domain.NotetypeBasicReversed
	}
	return domain.NotetypeBasic
}

func importTags(tags []string) string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.Join(strings.Fields(t), "_"); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, " ")
}

func (s *importServiceImpl) Preview(ctx context.Context, src importer.Source) (*ImportPreview, error) {
	res, err := s.parse(ctx, src, importer.Options{})
	if err != nil {
		return nil, err
	}

	sample := res.Cards
	if len(sample) > PreviewSampleSize {
		sample = sample[:PreviewSampleSize]
	}
	hasDecks := len(res.Decks) > 0
	if !hasDecks {
		for _, c := range res.Cards {
			if c.DeckName != "" {
				hasDecks = true
				break
			}
		}
	}
	return &ImportPreview{
		Filename:       src.Name,
		Format:         src.Ext(),
		Settings:       res.Settings,
		AvailableDecks: res.Decks,
		TotalCards:     len(res.Cards),
		SampleCards:    sample,
		HasDeckInfo:    hasDecks,
	}, nil
}

func (s *importServiceImpl) Validate(ctx context.Context, src importer.Source) *ImportValidation {
	v := &ImportValidation{Filename: src.Name, Issues: []string{}}

	if !s.registry.Supported(src.Name) {
		v.Issues = append(v.Issues, fmt.Sprintf("Unsupported file format: %s", src.Ext()))
		return v
	}
	format := src.Ext()
	v.Format = &format

	res, err := s.parse(ctx, src, importer.Options{})
	if err != nil {
		msg, ok := PublicMessage(err)
		if !ok {
			msg = err.Error()
		}
		v.Issues = append(v.Issues, msg)
		return v
	}

	v.TotalCards = len(res.Cards)
	if v.TotalCards == 0 {
		v.Issues = append(v.Issues, "No valid cards found in file")
	}
	if !res.DeckDetected {
		v.Issues = append(v.Issues, "No deck information found - cards will need deck assignment")
	}
	v.Valid = len(v.Issues) == 0 || v.TotalCards > 0
	v.CanImport = v.TotalCards > 0
	return v
}
