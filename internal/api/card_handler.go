package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/flashcard-api/internal/api/shared"
	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/domain/srs"
	"github.com/phrazzld/flashcard-api/internal/platform/logger"
	"github.com/phrazzld/flashcard-api/internal/service"
	"github.com/phrazzld/flashcard-api/internal/store"
)

// CardHandler handles card-related HTTP requests
type CardHandler struct {
	cards   service.CardService
	reviews service.ReviewService
	logger  *slog.Logger
	now     func() time.Time
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(
	cards service.CardService,
	reviews service.ReviewService,
	logger *slog.Logger,
) *CardHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CardHandler")
	}

	return &CardHandler{
		cards:   cards,
		reviews: reviews,
		logger:  logger.With(slog.String("component", "card_handler")),
		now:     time.Now,
	}
}

// CreateCard handles POST /cards
// It creates a note and one card per template of its notetype, and answers
// with the first card.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateCardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.cards.CreateCard(r.Context(), userID, service.CreateCardParams{
		TypeName:              req.TypeName,
		DeckName:              req.DeckName,
		Front:                 req.Front,
		Back:                  req.Back,
		Tags:                  req.Tags,
		TimezoneOffsetMinutes: req.UserTimezoneOffsetMin,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create card")
		return
	}
	if len(created.Cards) == 0 {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create card")
		return
	}

	card := created.Cards[0]
	log.Debug("card created",
		slog.Int64("card_id", card.ID),
		slog.Int64("note_id", created.Note.ID),
		slog.Int("cards", len(created.Cards)))

	shared.RespondWithJSON(w, r, http.StatusCreated, CardCreatedResponse{
		CardID:    card.ID,
		NoteID:    created.Note.ID,
		Deck:      created.DeckName,
		Front:     created.Note.Front(),
		Back:      created.Note.Back(),
		Tags:      noteTags(created.Note),
		CreatedAt: created.Note.Mod,
	})
}

// ListCards handles GET /cards
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	filter, err := cardFilterFromQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	views, err := h.cards.ListCards(r.Context(), userID, filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list cards")
		return
	}
	h.respondWithCards(w, r, filter, views)
}

// SearchCards handles GET /cards/search
// Query matches front or back case-insensitively.
func (h *CardHandler) SearchCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	filter, err := cardFilterFromQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	filter.Query = strings.TrimSpace(r.URL.Query().Get("query"))
	if filter.Query == "" {
		HandleAPIError(w, r, domain.NewValidationError("query", "is required", domain.ErrValidation), "")
		return
	}

	views, err := h.cards.ListCards(r.Context(), userID, filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list cards")
		return
	}
	h.respondWithCards(w, r, filter, views)
}

func (h *CardHandler) respondWithCards(w http.ResponseWriter, r *http.Request, filter store.CardFilter, views []store.CardView) {
	resp := CardListResponse{
		Cards:  make([]CardResponse, 0, len(views)),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	for _, v := range views {
		resp.Cards = append(resp.Cards, cardResponse(v))
	}
	resp.Count = len(resp.Cards)

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("cards listed", slog.Int("count", resp.Count))
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// cardFilterFromQuery reads deck_name, type_id, tags, limit and offset.
// Tags may be separated by commas or spaces.
func cardFilterFromQuery(r *http.Request) (store.CardFilter, error) {
	q := r.URL.Query()
	filter := store.CardFilter{DeckName: strings.TrimSpace(q.Get("deck_name"))}

	if raw := strings.TrimSpace(q.Get("type_id")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return store.CardFilter{}, domain.NewValidationError("type_id", "must be an integer", domain.ErrInvalidFormat)
		}
		t := domain.CardType(v)
		filter.Type = &t
	}

	if raw := q.Get("tags"); raw != "" {
		filter.Tags = strings.FieldsFunc(raw, func(c rune) bool { return c == ',' || c == ' ' })
	}

	var err error
	if filter.Limit, filter.Offset, err = pagination(r); err != nil {
		return store.CardFilter{}, err
	}
	return filter, nil
}

// GetCard handles GET /cards/{id}
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, cardID, ok := handleUserIDAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	view, err := h.cards.GetCard(r.Context(), userID, cardID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardResponse(*view))
}

// UpdateCard handles PUT /cards/{id}
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, cardID, ok := handleUserIDAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateCardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	view, err := h.cards.UpdateCard(r.Context(), userID, cardID, service.CardUpdate{
		Front: req.Front,
		Back:  req.Back,
		Tags:  req.Tags,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CardUpdateResponse{
		CardResponse: cardResponse(*view),
		UpdatedAt:    view.Note.Mod,
		Message:      fmt.Sprintf("Card %d updated successfully", cardID),
	})
}

// DeleteCard handles DELETE /cards/{id}
// The note is removed as well when this was its last card.
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, cardID, ok := handleUserIDAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	res, err := h.cards.DeleteCard(r.Context(), userID, cardID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete card")
		return
	}

	msg := fmt.Sprintf("Card %d deleted successfully", res.CardID)
	if res.NoteDeleted {
		msg = fmt.Sprintf("Card %d and note %d deleted successfully", res.CardID, res.NoteID)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CardDeleteResponse{
		CardID:      res.CardID,
		NoteID:      res.NoteID,
		NoteDeleted: res.NoteDeleted,
		Message:     msg,
		DeletedAt:   h.now().Unix(),
	})
}

// ReviewCard handles POST /cards/{id}/review
func (h *CardHandler) ReviewCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, cardID, ok := handleUserIDAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	var req ReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.reviews.ReviewCard(r.Context(), userID, cardID, srs.Ease(req.Ease), req.ReviewTimeMs)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to review card")
		return
	}

	log.Debug("card reviewed",
		slog.Int64("card_id", cardID),
		slog.Int("ease", req.Ease),
		slog.Int("new_ivl", res.Card.Ivl))
	shared.RespondWithJSON(w, r, http.StatusOK, reviewResponse(res))
}
