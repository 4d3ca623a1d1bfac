package generation

import (
	"context"
	"strings"
)

// Count bounds for GenerateCards.
const (
	DefaultCardCount = 5
	MaxCardCount     = 10
)

// GeneratedCard is one question and answer suggested by the model.
type GeneratedCard struct {
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Hint  string   `json:"hint,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// Valid reports whether both sides carry text.
func (c GeneratedCard) Valid() bool {
	return strings.TrimSpace(c.Front) != "" && strings.TrimSpace(c.Back) != ""
}

// Generator produces flashcard content from text.
type Generator interface {
	// GenerateCards returns up to count cards about text.
	GenerateCards(ctx context.Context, text string, count int) ([]GeneratedCard, error)

	// ImproveCard rewrites an existing card, following instruction when it is not empty.
	ImproveCard(ctx context.Context, front, back, instruction string) (*GeneratedCard, error)

	// SuggestTags proposes tags for a card.
	SuggestTags(ctx context.Context, front, back string) ([]string, error)
}

// ClampCount maps a requested count onto [1, MaxCardCount], using
// DefaultCardCount for zero or negative values.
func ClampCount(count int) int {
	switch {
	case count <= 0:
		return DefaultCardCount
	case count > MaxCardCount:
		return MaxCardCount
	default:
		return count
	}
}
