package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/generation"
	"github.com/phrazzld/flashcard-api/internal/platform/logger"
	"github.com/phrazzld/flashcard-api/internal/store"
)

// GenerateParams describes a synchronous generation request.
type GenerateParams struct {
	Text     string
	DeckName string
	TypeName string
	// Count is only used by GenerateFlashcards.
	Count                 int
	TimezoneOffsetMinutes int
}

// GeneratedFlashcard is a card created from model output.
type GeneratedFlashcard struct {
	CardID int64
	NoteID int64
	Front  string
	Back   string
	Tags   []string
}

// ImprovedFlashcard pairs a card's content with the model's rewrite. The
// rewrite is not saved.
type ImprovedFlashcard struct {
	CardID        int64
	OriginalFront string
	OriginalBack  string
	ImprovedFront string
	ImprovedBack  string
	Instruction   string
}

// TagSuggestion pairs a card's tags with the model's suggestions.
type TagSuggestion struct {
	CardID      int64
	Front       string
	Back        string
	CurrentTags []string
	Suggested   []string
}

// AIService runs model requests on behalf of a user and waits for the answer.
type AIService interface {
	// GenerateFlashcard creates one card from text.
	GenerateFlashcard(ctx context.Context, userID uuid.UUID, params GenerateParams) (*GeneratedFlashcard, error)

	// GenerateFlashcards creates up to params.Count cards from text. Cards the
	// collection already has are skipped.
	GenerateFlashcards(ctx context.Context, userID uuid.UUID, params GenerateParams) ([]GeneratedFlashcard, error)

	ImproveFlashcard(ctx context.Context, userID uuid.UUID, cardID int64, instruction string) (*ImprovedFlashcard, error)

	SuggestTags(ctx context.Context, userID uuid.UUID, cardID int64) (*TagSuggestion, error)
}

type aiServiceImpl struct {
	decks     DeckService
	cards     CardService
	generator generation.Generator
	logger    *slog.Logger
}

// NewAIService creates an AIService.
func NewAIService(
	decks DeckService,
	cards CardService,
	generator generation.Generator,
	log *slog.Logger,
) (AIService, error) {
	switch {
	case decks == nil:
		return nil, fmt.Errorf("%w: deck service", ErrMissingDependency)
	case cards == nil:
		return nil, fmt.Errorf("%w: card service", ErrMissingDependency)
	case generator == nil:
		return nil, fmt.Errorf("%w: generator", ErrMissingDependency)
	}
	if log == nil {
		log = slog.Default()
	}
	return &aiServiceImpl{
		decks:     decks,
		cards:     cards,
		generator: generator,
		logger:    log.With(slog.String("component", "ai_service")),
	}, nil
}

func (s *aiServiceImpl) GenerateFlashcard(
	ctx context.Context,
	userID uuid.UUID,
	params GenerateParams,
) (*GeneratedFlashcard, error) {
	params.Count = 1
	cards, err := s.generate(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	return &cards[0], nil
}

func (s *aiServiceImpl) GenerateFlashcards(
	ctx context.Context,
	userID uuid.UUID,
	params GenerateParams,
) ([]GeneratedFlashcard, error) {
	params.Count = generation.ClampCount(params.Count)
	return s.generate(ctx, userID, params)
}

// generate checks the deck before calling the model so that a bad deck name
// does not cost a model request.
func (s *aiServiceImpl) generate(
	ctx context.Context,
	userID uuid.UUID,
	params GenerateParams,
) ([]GeneratedFlashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if strings.TrimSpace(params.Text) == "" {
		return nil, domain.NewValidationError("text", "cannot be empty", domain.ErrEmptyContent)
	}
	deck, err := s.decks.GetDeckByName(ctx, userID, params.DeckName)
	if err != nil {
		return nil, err
	}

	generated, err := s.generator.GenerateCards(ctx, params.Text, params.Count)
	if err != nil {
		log.Error("card generation failed", slog.String("error", err.Error()))
		return nil, err
	}
	if len(generated) == 0 {
		return nil, fmt.Errorf("%w: no cards returned", generation.ErrInvalidResponse)
	}

	var (
		out      []GeneratedFlashcard
		firstErr error
	)
	for _, gc := range generated {
		created, err := s.cards.CreateCard(ctx, userID, CreateCardParams{
			TypeName:              params.TypeName,
			DeckName:              deck.Name,
			Front:                 gc.Front,
			Back:                  gc.Back,
			Tags:                  generatedTags(gc.Tags),
			TimezoneOffsetMinutes: params.TimezoneOffsetMinutes,
		})
		if err != nil {
			if !store.IsDuplicateError(err) && !domain.IsValidationError(err) {
				return out, err
			}
			log.Debug("skipping generated card", slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out = append(out, GeneratedFlashcard{
			CardID: created.Cards[0].ID,
			NoteID: created.Note.ID,
			Front:  gc.Front,
			Back:   gc.Back,
			Tags:   created.Note.TagList(),
		})
	}
	if len(out) == 0 {
		return nil, firstErr
	}

	log.Info("generated flashcards saved",
		slog.Int64("deck_id", deck.ID),
		slog.Int("created", len(out)),
		slog.Int("generated", len(generated)))
	return out, nil
}

func (s *aiServiceImpl) ImproveFlashcard(
	ctx context.Context,
	userID uuid.UUID,
	cardID int64,
	instruction string,
) (*ImprovedFlashcard, error) {
	view, err := s.cards.GetCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	front, back := view.Note.Front(), view.Note.Back()
	instruction = strings.TrimSpace(instruction)

	improved, err := s.generator.ImproveCard(ctx, front, back, instruction)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("card improvement failed",
			slog.Int64("card_id", cardID),
			slog.String("error", err.Error()))
		return nil, err
	}
	if improved == nil {
		return nil, fmt.Errorf("%w: empty improvement", generation.ErrInvalidResponse)
	}

	return &ImprovedFlashcard{
		CardID:        view.Card.ID,
		OriginalFront: front,
		OriginalBack:  back,
		ImprovedFront: improved.Front,
		ImprovedBack:  improved.Back,
		Instruction:   instruction,
	}, nil
}

func (s *aiServiceImpl) SuggestTags(ctx context.Context, userID uuid.UUID, cardID int64) (*TagSuggestion, error) {
	view, err := s.cards.GetCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	front, back := view.Note.Front(), view.Note.Back()

	tags, err := s.generator.SuggestTags(ctx, front, back)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("tag suggestion failed",
			slog.Int64("card_id", cardID),
			slog.String("error", err.Error()))
		return nil, err
	}

	current := view.Note.TagList()
	have := make(map[string]bool, len(current))
	for _, t := range current {
		have[strings.ToLower(t)] = true
	}
	suggested := make([]string, 0, len(tags))
	for _, t := range tags {
		if !have[strings.ToLower(t)] {
			suggested = append(suggested, t)
		}
	}

	return &TagSuggestion{
		CardID:      view.Card.ID,
		Front:       front,
		Back:        back,
		CurrentTags: current,
		Suggested:   suggested,
	}, nil
}
