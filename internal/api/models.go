package api

import (
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/service"
	"github.com/phrazzld/flashcard-api/internal/store"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the RFC 3339 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// Decks

// CreateDeckRequest creates a deck, optionally using an existing deck config.
type CreateDeckRequest struct {
	Name     string `json:"name"      validate:"required,max=255"`
	ConfigID *int64 `json:"config_id" validate:"omitempty,gt=0"`
}

// UpdateDeckRequest renames a deck or changes its config.
type UpdateDeckRequest struct {
	NewName  *string `json:"new_name"  validate:"omitempty,max=255"`
	ConfigID *int64  `json:"config_id" validate:"omitempty,gt=0"`
}

// DeckResponse describes one deck and its card count.
type DeckResponse struct {
	DeckID       int64  `json:"deck_id"`
	Name         string `json:"name"`
	Cards        int    `json:"cards"`
	CollectionID int64  `json:"collection_id"`
	ConfigID     int64  `json:"config_id"`
	MtimeSecs    int64  `json:"mtime_secs"`
}

// DeckListResponse is a page of decks.
type DeckListResponse struct {
	Decks  []DeckResponse `json:"decks"`
	Count  int            `json:"count"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// DeckUpdateResponse reports the attributes an update changed.
type DeckUpdateResponse struct {
	Name            string  `json:"name"`
	UpdatedName     *string `json:"updated_name"`
	UpdatedConfigID *int64  `json:"updated_config_id"`
	Message         string  `json:"message"`
	UpdatedAt       int64   `json:"updated_at"`
}

// DeckDeleteResponse reports what a deck delete removed.
type DeckDeleteResponse struct {
	Name         string `json:"name"`
	DeletedCards int    `json:"deleted_cards"`
	DeletedNotes int    `json:"deleted_notes"`
	Message      string `json:"message"`
	DeletedAt    int64  `json:"deleted_at"`
}

func deckResponse(d domain.Deck, cards int) DeckResponse {
	return DeckResponse{
		DeckID:       d.ID,
		Name:         d.Name,
		Cards:        cards,
		CollectionID: d.CollectionID,
		ConfigID:     d.ConfigID,
		MtimeSecs:    d.MtimeSecs,
	}
}

// Cards

// CreateCardRequest creates a note and its cards in a deck.
type CreateCardRequest struct {
	TypeName              string `json:"type_name"`
	DeckName              string `json:"deck_name"                    validate:"required"`
	Front                 string `json:"front"                        validate:"required"`
	Back                  string `json:"back"`
	Tags                  string `json:"tags"`
	UserTimezoneOffsetMin int    `json:"user_timezone_offset_minutes" validate:"gte=-720,lte=840"`
}

// CardCreatedResponse describes a newly created card.
type CardCreatedResponse struct {
	CardID    int64  `json:"card_id"`
	NoteID    int64  `json:"note_id"`
	Deck      string `json:"deck"`
	Front     string `json:"front"`
	Back      string `json:"back"`
	Tags      string `json:"tags"`
	CreatedAt int64  `json:"created_at"`
}

// CardResponse describes a card with its note content and scheduling state.
type CardResponse struct {
	CardID    int64  `json:"card_id"`
	NoteID    int64  `json:"note_id"`
	Deck      string `json:"deck"`
	Ord       int    `json:"ord"`
	Front     string `json:"front"`
	Back      string `json:"back"`
	Tags      string `json:"tags"`
	TypeID    int    `json:"type_id"`
	QueueID   int    `json:"queue_id"`
	Due       int64  `json:"due"`
	Ivl       int    `json:"ivl"`
	Factor    int    `json:"factor"`
	Reps      int    `json:"reps"`
	Lapses    int    `json:"lapses"`
	CreatedAt int64  `json:"created_at"`
}

// CardListResponse is a page of cards.
type CardListResponse struct {
	Cards  []CardResponse `json:"cards"`
	Count  int            `json:"count"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// UpdateCardRequest changes note content. Nil fields are kept.
type UpdateCardRequest struct {
	Front *string `json:"front"`
	Back  *string `json:"back"`
	Tags  *string `json:"tags"`
}

// CardUpdateResponse is the card after an update.
type CardUpdateResponse struct {
	CardResponse
	UpdatedAt int64  `json:"updated_at"`
	Message   string `json:"message"`
}

// CardDeleteResponse reports a deleted card.
type CardDeleteResponse struct {
	CardID      int64  `json:"card_id"`
	NoteID      int64  `json:"note_id"`
	NoteDeleted bool   `json:"note_deleted"`
	Message     string `json:"message"`
	DeletedAt   int64  `json:"deleted_at"`
}

// ReviewRequest answers a card.
type ReviewRequest struct {
	Ease         int `json:"ease"           validate:"required,min=1,max=4"`
	ReviewTimeMs int `json:"review_time_ms" validate:"gte=0"`
}

// ReviewResponse is the card's scheduling state after a review.
type ReviewResponse struct {
	CardID     int64 `json:"card_id"`
	TypeID     int   `json:"type_id"`
	QueueID    int   `json:"queue_id"`
	Reps       int   `json:"reps"`
	Lapses     int   `json:"lapses"`
	NewIvl     int   `json:"new_ivl"`
	NewFactor  int   `json:"new_factor"`
	RevLogID   int64 `json:"revlog_id"`
	ReviewedAt int64 `json:"reviewed_at"`
}

func noteTags(n domain.Note) string {
	return strings.TrimSpace(n.Tags)
}

func cardResponse(v store.CardView) CardResponse {
	return CardResponse{
		CardID:    v.Card.ID,
		NoteID:    v.Note.ID,
		Deck:      v.DeckName,
		Ord:       v.Card.Ord,
		Front:     v.Note.Front(),
		Back:      v.Note.Back(),
		Tags:      noteTags(v.Note),
		TypeID:    int(v.Card.Type),
		QueueID:   int(v.Card.Queue),
		Due:       v.Card.Due,
		Ivl:       v.Card.Ivl,
		Factor:    v.Card.Factor,
		Reps:      v.Card.Reps,
		Lapses:    v.Card.Lapses,
		CreatedAt: v.Note.Mod,
	}
}

// AI

// GenerateFlashcardRequest asks the model for one card.
type GenerateFlashcardRequest struct {
	Text                  string `json:"text"                         validate:"required"`
	DeckName              string `json:"deck_name"                    validate:"required"`
	TypeName              string `json:"type_name"`
	UserTimezoneOffsetMin int    `json:"user_timezone_offset_minutes" validate:"gte=-720,lte=840"`
}

// GenerateMultipleRequest asks the model for several cards.
type GenerateMultipleRequest struct {
	GenerateFlashcardRequest
	Count int `json:"count" validate:"omitempty,min=1,max=10"`
}

// GeneratedCardResponse describes one generated and saved card.
type GeneratedCardResponse struct {
	CardID  int64  `json:"card_id"`
	Front   string `json:"front"`
	Back    string `json:"back"`
	Message string `json:"message,omitempty"`
}

// GenerateMultipleResponse lists the cards saved from one request.
type GenerateMultipleResponse struct {
	Cards   []GeneratedCardResponse `json:"cards"`
	Count   int                     `json:"count"`
	Message string                  `json:"message"`
}

// ImproveFlashcardRequest asks the model to rewrite a card.
type ImproveFlashcardRequest struct {
	CardID      int64  `json:"card_id"     validate:"required,gt=0"`
	Instruction string `json:"instruction" validate:"max=1000"`
}

// ImproveFlashcardResponse pairs a card with the suggested rewrite.
type ImproveFlashcardResponse struct {
	CardID          int64  `json:"card_id"`
	OriginalFront   string `json:"original_front"`
	OriginalBack    string `json:"original_back"`
	ImprovedFront   string `json:"improved_front"`
	ImprovedBack    string `json:"improved_back"`
	InstructionUsed string `json:"instruction_used"`
	Message         string `json:"message"`
}

// SuggestTagsRequest asks the model for tags for a card.
type SuggestTagsRequest struct {
	CardID int64 `json:"card_id" validate:"required,gt=0"`
}

// SuggestTagsResponse pairs a card's tags with the suggested ones.
type SuggestTagsResponse struct {
	CardID        int64    `json:"card_id"`
	Front         string   `json:"front"`
	Back          string   `json:"back"`
	CurrentTags   []string `json:"current_tags"`
	SuggestedTags []string `json:"suggested_tags"`
	Message       string   `json:"message"`
}

// Highlights

// CreateHighlightRequest submits text for asynchronous generation.
type CreateHighlightRequest struct {
	DeckName  string `json:"deck_name"  validate:"required"`
	Text      string `json:"text"       validate:"required,max=20000"`
	SourceURL string `json:"source_url" validate:"omitempty,url"`
	Count     int    `json:"count"      validate:"omitempty,min=1,max=10"`
}

// HighlightResponse describes a highlight and its generation status.
type HighlightResponse struct {
	ID           uuid.UUID              `json:"id"`
	DeckID       int64                  `json:"deck_id"`
	Text         string                 `json:"text"`
	SourceURL    string                 `json:"source_url,omitempty"`
	Requested    int                    `json:"requested"`
	Status       domain.HighlightStatus `json:"status"`
	CardCount    int                    `json:"card_count"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	CreatedAt    string                 `json:"created_at"`
	UpdatedAt    string                 `json:"updated_at"`
}

// HighlightListResponse is a page of highlights.
type HighlightListResponse struct {
	Highlights []HighlightResponse `json:"highlights"`
	Count      int                 `json:"count"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}

func highlightResponse(h *domain.Highlight) HighlightResponse {
	return HighlightResponse{
		ID:           h.ID,
		DeckID:       h.DeckID,
		Text:         h.Text,
		SourceURL:    h.SourceURL,
		Requested:    h.Requested,
		Status:       h.Status,
		CardCount:    h.CardCount,
		ErrorMessage: h.ErrorMessage,
		CreatedAt:    h.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt:    h.UpdatedAt.UTC().Format(timeFormat),
	}
}

// reviewResponse flattens a review result.
func reviewResponse(res *service.ReviewResult) ReviewResponse {
	return ReviewResponse{
		CardID:     res.Card.ID,
		TypeID:     int(res.Card.Type),
		QueueID:    int(res.Card.Queue),
		Reps:       res.Card.Reps,
		Lapses:     res.Card.Lapses,
		NewIvl:     res.Card.Ivl,
		NewFactor:  res.Card.Factor,
		RevLogID:   res.RevLog.ID,
		ReviewedAt: res.ReviewedAt.Unix(),
	}
}
