package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/flashcard-api/internal/api/shared"
	"github.com/phrazzld/flashcard-api/internal/generation"
	"github.com/phrazzld/flashcard-api/internal/platform/logger"
	"github.com/phrazzld/flashcard-api/internal/service"
)

// AIHandler serves the synchronous language model endpoints. Each request
// waits for the model's answer.
type AIHandler struct {
	ai     service.AIService
	logger *slog.Logger
}

// NewAIHandler creates a new AIHandler
func NewAIHandler(ai service.AIService, logger *slog.Logger) *AIHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AIHandler")
	}
	return &AIHandler{
		ai:     ai,
		logger: logger.With(slog.String("component", "ai_handler")),
	}
}

func (h *AIHandler) generateParams(req GenerateFlashcardRequest, count int) service.GenerateParams {
	return service.GenerateParams{
		Text:                  req.Text,
		DeckName:              req.DeckName,
		TypeName:              req.TypeName,
		Count:                 count,
		TimezoneOffsetMinutes: req.UserTimezoneOffsetMin,
	}
}

// GenerateFlashcard handles POST /ai/generate-flashcard
func (h *AIHandler) GenerateFlashcard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req GenerateFlashcardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.ai.GenerateFlashcard(r.Context(), userID, h.generateParams(req, 1))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate flashcard")
		return
	}

	log.Debug("flashcard generated", slog.Int64("card_id", card.CardID))
	shared.RespondWithJSON(w, r, http.StatusCreated, GeneratedCardResponse{
		CardID:  card.CardID,
		Front:   card.Front,
		Back:    card.Back,
		Message: fmt.Sprintf("Flashcard generated and saved to deck '%s'", req.DeckName),
	})
}

// GenerateMultiple handles POST /ai/generate-multiple
func (h *AIHandler) GenerateMultiple(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req GenerateMultipleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	count := req.Count
	if count == 0 {
		count = generation.DefaultCardCount
	}

	cards, err := h.ai.GenerateFlashcards(r.Context(), userID, h.generateParams(req.GenerateFlashcardRequest, count))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate flashcards")
		return
	}

	resp := GenerateMultipleResponse{Cards: make([]GeneratedCardResponse, 0, len(cards))}
	for _, c := range cards {
		resp.Cards = append(resp.Cards, GeneratedCardResponse{CardID: c.CardID, Front: c.Front, Back: c.Back})
	}
	resp.Count = len(resp.Cards)
	resp.Message = fmt.Sprintf("Generated %d flashcards and saved to deck '%s'", resp.Count, req.DeckName)

	log.Debug("flashcards generated", slog.Int("requested", count), slog.Int("created", resp.Count))
	shared.RespondWithJSON(w, r, http.StatusCreated, resp)
}

// ImproveFlashcard handles POST /ai/improve-flashcard
// The suggestion is returned but not saved.
func (h *AIHandler) ImproveFlashcard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req ImproveFlashcardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.ai.ImproveFlashcard(r.Context(), userID, req.CardID, req.Instruction)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to improve flashcard")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ImproveFlashcardResponse{
		CardID:          res.CardID,
		OriginalFront:   res.OriginalFront,
		OriginalBack:    res.OriginalBack,
		ImprovedFront:   res.ImprovedFront,
		ImprovedBack:    res.ImprovedBack,
		InstructionUsed: res.Instruction,
		Message:         "Improvement suggested; the card was not changed",
	})
}

// SuggestTags handles POST /ai/suggest-tags
func (h *AIHandler) SuggestTags(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req SuggestTagsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.ai.SuggestTags(r.Context(), userID, req.CardID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to suggest tags")
		return
	}

	current := res.CurrentTags
	if current == nil {
		current = []string{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, SuggestTagsResponse{
		CardID:        res.CardID,
		Front:         res.Front,
		Back:          res.Back,
		CurrentTags:   current,
		SuggestedTags: res.Suggested,
		Message:       fmt.Sprintf("Suggested %d new tags", len(res.Suggested)),
	})
}
