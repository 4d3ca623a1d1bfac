package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/flashcard-api/internal/api/shared"
	"github.com/phrazzld/flashcard-api/internal/platform/logger"
	"github.com/phrazzld/flashcard-api/internal/service"
)

// DeckHandler handles deck-related HTTP requests
type DeckHandler struct {
	decks  service.DeckService
	logger *slog.Logger
	now    func() time.Time
}

// NewDeckHandler creates a new DeckHandler
func NewDeckHandler(decks service.DeckService, logger *slog.Logger) *DeckHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for DeckHandler")
	}
	return &DeckHandler{
		decks:  decks,
		logger: logger.With(slog.String("component", "deck_handler")),
		now:    time.Now,
	}
}

// CreateDeck handles POST /decks
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateDeckRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	deck, err := h.decks.CreateDeck(r.Context(), userID, req.Name, req.ConfigID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create deck")
		return
	}

	log.Debug("deck created", slog.Int64("deck_id", deck.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, deckResponse(*deck, 0))
}

// ListDecks handles GET /decks
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit, offset, err := pagination(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	summaries, err := h.decks.ListDecks(r.Context(), userID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list decks")
		return
	}

	resp := DeckListResponse{
		Decks:  make([]DeckResponse, 0, len(summaries)),
		Limit:  limit,
		Offset: offset,
	}
	for _, s := range summaries {
		resp.Decks = append(resp.Decks, deckResponse(s.Deck, s.CardCount))
	}
	resp.Count = len(resp.Decks)

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetDeck handles GET /decks/{id}
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, deckID, ok := handleUserIDAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	summary, err := h.decks.GetDeck(r.Context(), userID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get deck")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, deckResponse(summary.Deck, summary.CardCount))
}

// UpdateDeck handles PUT /decks/{id}
func (h *DeckHandler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, deckID, ok := handleUserIDAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateDeckRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.decks.UpdateDeck(r.Context(), userID, deckID, service.DeckUpdate{
		Name:     req.NewName,
		ConfigID: req.ConfigID,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update deck")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeckUpdateResponse{
		Name:            res.OldName,
		UpdatedName:     res.UpdatedName,
		UpdatedConfigID: res.UpdatedConfigID,
		Message:         fmt.Sprintf("Deck '%s' updated successfully", res.OldName),
		UpdatedAt:       res.Deck.MtimeSecs,
	})
}

// DeleteDeck handles DELETE /decks/{id}
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, deckID, ok := handleUserIDAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	res, err := h.decks.DeleteDeck(r.Context(), userID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete deck")
		return
	}

	log.Info("deck deleted",
		slog.Int64("deck_id", deckID),
		slog.Int("deleted_cards", res.DeletedCards),
		slog.Int("deleted_notes", res.DeletedNotes))

	shared.RespondWithJSON(w, r, http.StatusOK, DeckDeleteResponse{
		Name:         res.Name,
		DeletedCards: res.DeletedCards,
		DeletedNotes: res.DeletedNotes,
		Message: fmt.Sprintf("Deck '%s' deleted with %d cards and %d notes",
			res.Name, res.DeletedCards, res.DeletedNotes),
		DeletedAt: h.now().Unix(),
	})
}
