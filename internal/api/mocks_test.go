package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/domain/srs"
	"github.com/phrazzld/flashcard-api/internal/generation"
	"github.com/phrazzld/flashcard-api/internal/importer"
	"github.com/phrazzld/flashcard-api/internal/service"
	"github.com/phrazzld/flashcard-api/internal/store"
)

type mockUserService struct {
	GetUserFn        func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetUserByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	CreateUserFn     func(ctx context.Context, email, password string) (*domain.User, error)
}

func (m *mockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return m.GetUserFn(ctx, userID)
}

func (m *mockUserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.GetUserByEmailFn(ctx, email)
}

func (m *mockUserService) CreateUser(ctx context.Context, email, password string) (*domain.User, error) {
	return m.CreateUserFn(ctx, email, password)
}

type mockDeckService struct {
	CreateDeckFn    func(ctx context.Context, userID uuid.UUID, name string, configID *int64) (*domain.Deck, error)
	ListDecksFn     func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]store.DeckSummary, error)
	GetDeckFn       func(ctx context.Context, userID uuid.UUID, deckID int64) (*store.DeckSummary, error)
	GetDeckByNameFn func(ctx context.Context, userID uuid.UUID, name string) (*domain.Deck, error)
	UpdateDeckFn    func(ctx context.Context, userID uuid.UUID, deckID int64, upd service.DeckUpdate) (*service.DeckUpdateResult, error)
	DeleteDeckFn    func(ctx context.Context, userID uuid.UUID, deckID int64) (*service.DeckDeleteResult, error)
	EnsureDeckFn    func(ctx context.Context, userID uuid.UUID, name string) (*domain.Deck, bool, error)
}

func (m *mockDeckService) CreateDeck(ctx context.Context, userID uuid.UUID, name string, configID *int64) (*domain.Deck, error) {
	return m.CreateDeckFn(ctx, userID, name, configID)
}

func (m *mockDeckService) ListDecks(ctx context.Context, userID uuid.UUID, limit, offset int) ([]store.DeckSummary, error) {
	return m.ListDecksFn(ctx, userID, limit, offset)
}

func (m *mockDeckService) GetDeck(ctx context.Context, userID uuid.UUID, deckID int64) (*store.DeckSummary, error) {
	return m.GetDeckFn(ctx, userID, deckID)
}

func (m *mockDeckService) GetDeckByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Deck, error) {
	return m.GetDeckByNameFn(ctx, userID, name)
}

func (m *mockDeckService) UpdateDeck(
	ctx context.Context,
	userID uuid.UUID,
	deckID int64,
	upd service.DeckUpdate,
) (*service.DeckUpdateResult, error) {
	return m.UpdateDeckFn(ctx, userID, deckID, upd)
}

func (m *mockDeckService) DeleteDeck(ctx context.Context, userID uuid.UUID, deckID int64) (*service.DeckDeleteResult, error) {
	return m.DeleteDeckFn(ctx, userID, deckID)
}

func (m *mockDeckService) EnsureDeck(ctx context.Context, userID uuid.UUID, name string) (*domain.Deck, bool, error) {
	return m.EnsureDeckFn(ctx, userID, name)
}

type mockCardService struct {
	CreateCardFn           func(ctx context.Context, userID uuid.UUID, params service.CreateCardParams) (*service.CreatedCard, error)
	ListCardsFn            func(ctx context.Context, userID uuid.UUID, filter store.CardFilter) ([]store.CardView, error)
	GetCardFn              func(ctx context.Context, userID uuid.UUID, cardID int64) (*store.CardView, error)
	UpdateCardFn           func(ctx context.Context, userID uuid.UUID, cardID int64, upd service.CardUpdate) (*store.CardView, error)
	DeleteCardFn           func(ctx context.Context, userID uuid.UUID, cardID int64) (*service.CardDeletion, error)
	CreateGeneratedCardsFn func(ctx context.Context, userID uuid.UUID, deckID int64, cards []generation.GeneratedCard) (int, []error, error)
}

func (m *mockCardService) CreateCard(
	ctx context.Context,
	userID uuid.UUID,
	params service.CreateCardParams,
) (*service.CreatedCard, error) {
	return m.CreateCardFn(ctx, userID, params)
}

func (m *mockCardService) ListCards(ctx context.Context, userID uuid.UUID, filter store.CardFilter) ([]store.CardView, error) {
	return m.ListCardsFn(ctx, userID, filter)
}

func (m *mockCardService) GetCard(ctx context.Context, userID uuid.UUID, cardID int64) (*store.CardView, error) {
	return m.GetCardFn(ctx, userID, cardID)
}

func (m *mockCardService) UpdateCard(
	ctx context.Context,
	userID uuid.UUID,
	cardID int64,
	upd service.CardUpdate,
) (*store.CardView, error) {
	return m.UpdateCardFn(ctx, userID, cardID, upd)
}

func (m *mockCardService) DeleteCard(ctx context.Context, userID uuid.UUID, cardID int64) (*service.CardDeletion, error) {
	return m.DeleteCardFn(ctx, userID, cardID)
}

func (m *mockCardService) CreateGeneratedCards(
	ctx context.Context,
	userID uuid.UUID,
	deckID int64,
	cards []generation.GeneratedCard,
) (int, []error, error) {
	return m.CreateGeneratedCardsFn(ctx, userID, deckID, cards)
}

type mockReviewService struct {
	ReviewCardFn func(ctx context.Context, userID uuid.UUID, cardID int64, ease srs.Ease, answerTimeMs int) (*service.ReviewResult, error)
}

func (m *mockReviewService) ReviewCard(
	ctx context.Context,
	userID uuid.UUID,
	cardID int64,
	ease srs.Ease,
	answerTimeMs int,
) (*service.ReviewResult, error) {
	return m.ReviewCardFn(ctx, userID, cardID, ease, answerTimeMs)
}

type mockAIService struct {
	GenerateFlashcardFn  func(ctx context.Context, userID uuid.UUID, params service.GenerateParams) (*service.GeneratedFlashcard, error)
	GenerateFlashcardsFn func(ctx context.Context, userID uuid.UUID, params service.GenerateParams) ([]service.GeneratedFlashcard, error)
	ImproveFlashcardFn   func(ctx context.Context, userID uuid.UUID, cardID int64, instruction string) (*service.ImprovedFlashcard, error)
	SuggestTagsFn        func(ctx context.Context, userID uuid.UUID, cardID int64) (*service.TagSuggestion, error)
}

func (m *mockAIService) GenerateFlashcard(
	ctx context.Context,
	userID uuid.UUID,
	params service.GenerateParams,
) (*service.GeneratedFlashcard, error) {
	return m.GenerateFlashcardFn(ctx, userID, params)
}

func (m *mockAIService) GenerateFlashcards(
	ctx context.Context,
	userID uuid.UUID,
	params service.GenerateParams,
) ([]service.GeneratedFlashcard, error) {
	return m.GenerateFlashcardsFn(ctx, userID, params)
}

func (m *mockAIService) ImproveFlashcard(
	ctx context.Context,
	userID uuid.UUID,
	cardID int64,
	instruction string,
) (*service.ImprovedFlashcard, error) {
	return m.ImproveFlashcardFn(ctx, userID, cardID, instruction)
}

func (m *mockAIService) SuggestTags(ctx context.Context, userID uuid.UUID, cardID int64) (*service.TagSuggestion, error) {
	return m.SuggestTagsFn(ctx, userID, cardID)
}

type mockHighlightService struct {
	CreateHighlightFn       func(ctx context.Context, userID uuid.UUID, params service.CreateHighlightParams) (*domain.Highlight, error)
	GetHighlightForUserFn   func(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.Highlight, error)
	ListHighlightsFn        func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Highlight, error)
	GetHighlightFn          func(ctx context.Context, id uuid.UUID) (*domain.Highlight, error)
	UpdateHighlightStatusFn func(ctx context.Context, id uuid.UUID, status domain.HighlightStatus, cardCount int, errMsg string) error
}

func (m *mockHighlightService) CreateHighlight(
	ctx context.Context,
	userID uuid.UUID,
	params service.CreateHighlightParams,
) (*domain.Highlight, error) {
	return m.CreateHighlightFn(ctx, userID, params)
}

func (m *mockHighlightService) GetHighlightForUser(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.Highlight, error) {
	return m.GetHighlightForUserFn(ctx, userID, id)
}

func (m *mockHighlightService) ListHighlights(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Highlight, error) {
	return m.ListHighlightsFn(ctx, userID, limit, offset)
}

func (m *mockHighlightService) GetHighlight(ctx context.Context, id uuid.UUID) (*domain.Highlight, error) {
	return m.GetHighlightFn(ctx, id)
}

func (m *mockHighlightService) UpdateHighlightStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.HighlightStatus,
	cardCount int,
	errMsg string,
) error {
	return m.UpdateHighlightStatusFn(ctx, id, status, cardCount, errMsg)
}

type mockImportService struct {
	FormatsFn  func() service.FormatInfo
	ImportFn   func(ctx context.Context, userID uuid.UUID, src importer.Source, opts service.ImportOptions) (*service.ImportReport, error)
	PreviewFn  func(ctx context.Context, src importer.Source) (*service.ImportPreview, error)
	ValidateFn func(ctx context.Context, src importer.Source) *service.ImportValidation
}

func (m *mockImportService) Formats() service.FormatInfo {
	return m.FormatsFn()
}

func (m *mockImportService) Import(
	ctx context.Context,
	userID uuid.UUID,
	src importer.Source,
	opts service.ImportOptions,
) (*service.ImportReport, error) {
	return m.ImportFn(ctx, userID, src, opts)
}

func (m *mockImportService) Preview(ctx context.Context, src importer.Source) (*service.ImportPreview, error) {
	return m.PreviewFn(ctx, src)
}

func (m *mockImportService) Validate(ctx context.Context, src importer.Source) *service.ImportValidation {
	return m.ValidateFn(ctx, src)
}
