package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/flashcard-api/internal/generation"
)

// MockGenerator implements generation.Generator for testing
type MockGenerator struct {
	GenerateCardsFn func(ctx context.Context, text string, count int) ([]generation.GeneratedCard, error)
	ImproveCardFn   func(ctx context.Context, front, back, instruction string) (*generation.GeneratedCard, error)
	SuggestTagsFn   func(ctx context.Context, front, back string) ([]string, error)

	// Default response values
	Cards    []generation.GeneratedCard
	Improved *generation.GeneratedCard
	Tags     []string
	Err      error

	mu sync.Mutex
	// Texts records the text of every GenerateCards call.
	Texts []string
	// Counts records the count of every GenerateCards call.
	Counts []int
}

// GenerateCards implements the generation.Generator interface
func (m *MockGenerator) GenerateCards(ctx context.Context, text string, count int) ([]generation.GeneratedCard, error) {
	m.mu.Lock()
	m.Texts = append(m.Texts, text)
	m.Counts = append(m.Counts, count)
	m.mu.Unlock()

	if m.GenerateCardsFn != nil {
		return m.GenerateCardsFn(ctx, text, count)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if count > 0 && len(m.Cards) > count {
		return m.Cards[:count], nil
	}
	return m.Cards, nil
}

// ImproveCard implements the generation.Generator interface
func (m *MockGenerator) ImproveCard(
	ctx context.Context,
	front, back, instruction string,
) (*generation.GeneratedCard, error) {
	if m.ImproveCardFn != nil {
		return m.ImproveCardFn(ctx, front, back, instruction)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Improved, nil
}

// SuggestTags implements the generation.Generator interface
func (m *MockGenerator) SuggestTags(ctx context.Context, front, back string) ([]string, error) {
	if m.SuggestTagsFn != nil {
		return m.SuggestTagsFn(ctx, front, back)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Tags, nil
}

// CallCount returns how many times GenerateCards was called.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Texts)
}

// NewMockGeneratorWithCards creates a MockGenerator that returns the specified cards
func NewMockGeneratorWithCards(cards ...generation.GeneratedCard) *MockGenerator {
	return &MockGenerator{Cards: cards}
}

// NewMockGeneratorWithError creates a MockGenerator that fails every call with err
func NewMockGeneratorWithError(err error) *MockGenerator {
	return &MockGenerator{Err: err}
}
