package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/flashcard-api/internal/api/shared"
	"github.com/phrazzld/flashcard-api/internal/platform/logger"
	"github.com/phrazzld/flashcard-api/internal/service"
)

// HighlightHandler accepts highlights for background card generation and
// reports their progress.
type HighlightHandler struct {
	highlights service.HighlightService
	logger     *slog.Logger
}

// NewHighlightHandler creates a new HighlightHandler
func NewHighlightHandler(highlights service.HighlightService, logger *slog.Logger) *HighlightHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for HighlightHandler")
	}
	return &HighlightHandler{
		highlights: highlights,
		logger:     logger.With(slog.String("component", "highlight_handler")),
	}
}

// CreateHighlight handles POST /highlights
// It answers 202 Accepted with the pending highlight; cards are generated
// by a background task.
func (h *HighlightHandler) CreateHighlight(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateHighlightRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	hl, err := h.highlights.CreateHighlight(r.Context(), userID, service.CreateHighlightParams{
		DeckName:  req.DeckName,
		Text:      req.Text,
		SourceURL: req.SourceURL,
		Count:     req.Count,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create highlight")
		return
	}

	log.Info("highlight accepted",
		slog.String("highlight_id", hl.ID.String()),
		slog.Int64("deck_id", hl.DeckID))
	shared.RespondWithJSON(w, r, http.StatusAccepted, highlightResponse(hl))
}

// GetHighlight handles GET /highlights/{id}
func (h *HighlightHandler) GetHighlight(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	hl, err := h.highlights.GetHighlightForUser(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get highlight")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, highlightResponse(hl))
}

// ListHighlights handles GET /highlights
func (h *HighlightHandler) ListHighlights(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit, offset, err := pagination(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	list, err := h.highlights.ListHighlights(r.Context(), userID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list highlights")
		return
	}

	resp := HighlightListResponse{
		Highlights: make([]HighlightResponse, 0, len(list)),
		Limit:      limit,
		Offset:     offset,
	}
	for _, hl := range list {
		resp.Highlights = append(resp.Highlights, highlightResponse(hl))
	}
	resp.Count = len(resp.Highlights)

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
