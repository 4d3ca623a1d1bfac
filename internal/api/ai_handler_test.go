package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/generation"
	"github.com/phrazzld/flashcard-api/internal/service"
	"github.com/phrazzld/flashcard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFlashcard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       map[string]interface{}
		genErr     error
		wantStatus int
		wantError  string
	}{
		{
			name:       "saved",
			body:       map[string]interface{}{"text": "Mitochondria make ATP.", "deck_name": "Biology"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing text",
			body:       map[string]interface{}{"deck_name": "Biology"},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid text: required field",
		},
		{
			name:       "content blocked",
			body:       map[string]interface{}{"text": "something", "deck_name": "Biology"},
			genErr:     fmt.Errorf("gemini: %w", generation.ErrContentBlocked),
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "The text was blocked by the language model's safety filters",
		},
		{
			name:       "model failure",
			body:       map[string]interface{}{"text": "something", "deck_name": "Biology"},
			genErr:     fmt.Errorf("gemini: %w", generation.ErrGenerationFailed),
			wantStatus: http.StatusBadGateway,
			wantError:  "Failed to generate flashcards",
		},
		{
			name:       "malformed model output",
			body:       map[string]interface{}{"text": "something", "deck_name": "Biology"},
			genErr:     fmt.Errorf("%w: no cards returned", generation.ErrInvalidResponse),
			wantStatus: http.StatusBadGateway,
			wantError:  "Failed to generate flashcards",
		},
		{
			name:       "unknown deck",
			body:       map[string]interface{}{"text": "something", "deck_name": "Nope"},
			genErr:     publicError("Deck with name Nope not found.", store.ErrDeckNotFound),
			wantStatus: http.StatusNotFound,
			wantError:  "Deck with name Nope not found.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ai := &mockAIService{
				GenerateFlashcardFn: func(ctx context.Context, userID uuid.UUID, p service.GenerateParams) (*service.GeneratedFlashcard, error) {
					if tt.genErr != nil {
						return nil, tt.genErr
					}
					assert.Equal(t, 1, p.Count)
					return &service.GeneratedFlashcard{CardID: 7, NoteID: 6, Front: "What makes ATP?", Back: "Mitochondria"}, nil
				},
			}

			rr := httptest.NewRecorder()
			NewAIHandler(ai, testLogger()).GenerateFlashcard(rr,
				newRequest(t, http.MethodPost, "/api/ai/generate-flashcard", tt.body))

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, errorMessage(t, rr))
				return
			}
			resp := decodeBody[GeneratedCardResponse](t, rr)
			assert.Equal(t, int64(7), resp.CardID)
			assert.Equal(t, "What makes ATP?", resp.Front)
			assert.Equal(t, "Flashcard generated and saved to deck 'Biology'", resp.Message)
		})
	}
}

func TestGenerateMultiple(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       map[string]interface{}
		wantCount  int
		wantStatus int
	}{
		{name: "default count", body: map[string]interface{}{"text": "t", "deck_name": "Bio"}, wantCount: 5, wantStatus: http.StatusCreated},
		{name: "explicit count", body: map[string]interface{}{"text": "t", "deck_name": "Bio", "count": 3}, wantCount: 3, wantStatus: http.StatusCreated},
		{name: "count over max", body: map[string]interface{}{"text": "t", "deck_name": "Bio", "count": 11}, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotCount int
			ai := &mockAIService{
				GenerateFlashcardsFn: func(ctx context.Context, userID uuid.UUID, p service.GenerateParams) ([]service.GeneratedFlashcard, error) {
					gotCount = p.Count
					return []service.GeneratedFlashcard{
						{CardID: 1, Front: "q1", Back: "a1"},
						{CardID: 2, Front: "q2", Back: "a2"},
					}, nil
				},
			}

			rr := httptest.NewRecorder()
			NewAIHandler(ai, testLogger()).GenerateMultiple(rr,
				newRequest(t, http.MethodPost, "/api/ai/generate-multiple", tt.body))

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus != http.StatusCreated {
				return
			}
			resp := decodeBody[GenerateMultipleResponse](t, rr)
			assert.Equal(t, tt.wantCount, gotCount)
			assert.Equal(t, 2, resp.Count)
			assert.Len(t, resp.Cards, 2)
			assert.Equal(t, "Generated 2 flashcards and saved to deck 'Bio'", resp.Message)
		})
	}
}

func TestImproveFlashcard(t *testing.T) {
	t.Parallel()

	ai := &mockAIService{
		ImproveFlashcardFn: func(ctx context.Context, userID uuid.UUID, cardID int64, instruction string) (*service.ImprovedFlashcard, error) {
			return &service.ImprovedFlashcard{
				CardID: cardID, OriginalFront: "q", OriginalBack: "a",
				ImprovedFront: "better q", ImprovedBack: "better a", Instruction: instruction,
			}, nil
		},
	}
	handler := NewAIHandler(ai, testLogger())

	rr := httptest.NewRecorder()
	handler.ImproveFlashcard(rr, newRequest(t, http.MethodPost, "/api/ai/improve-flashcard",
		map[string]interface{}{"card_id": 9, "instruction": "make it shorter"}))

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[ImproveFlashcardResponse](t, rr)
	assert.Equal(t, int64(9), resp.CardID)
	assert.Equal(t, "q", resp.OriginalFront)
	assert.Equal(t, "better a", resp.ImprovedBack)
	assert.Equal(t, "make it shorter", resp.InstructionUsed)

	rr = httptest.NewRecorder()
	handler.ImproveFlashcard(rr, newRequest(t, http.MethodPost, "/api/ai/improve-flashcard", map[string]interface{}{}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid card_id: required field", errorMessage(t, rr))
}

func TestSuggestTags(t *testing.T) {
	t.Parallel()

	ai := &mockAIService{
		SuggestTagsFn: func(ctx context.Context, userID uuid.UUID, cardID int64) (*service.TagSuggestion, error) {
			if cardID == 404 {
				return nil, publicError("Card with id=404 not found", store.ErrCardNotFound)
			}
			return &service.TagSuggestion{
				CardID: cardID, Front: "q", Back: "a", Suggested: []string{"biology", "cells"},
			}, nil
		},
	}
	handler := NewAIHandler(ai, testLogger())

	rr := httptest.NewRecorder()
	handler.SuggestTags(rr, newRequest(t, http.MethodPost, "/api/ai/suggest-tags", map[string]int{"card_id": 9}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"current_tags":[]`)
	resp := decodeBody[SuggestTagsResponse](t, rr)
	assert.Equal(t, []string{"biology", "cells"}, resp.SuggestedTags)
	assert.Equal(t, "Suggested 2 new tags", resp.Message)

	rr = httptest.NewRecorder()
	handler.SuggestTags(rr, newRequest(t, http.MethodPost, "/api/ai/suggest-tags", map[string]int{"card_id": 404}))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
