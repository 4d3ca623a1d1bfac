package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want int
	}{
		{-1, DefaultCardCount},
		{0, DefaultCardCount},
		{1, 1},
		{7, 7},
		{MaxCardCount, MaxCardCount},
		{50, MaxCardCount},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampCount(tt.in), "ClampCount(%d)", tt.in)
	}
}

func TestGeneratedCardValid(t *testing.T) {
	t.Parallel()

	assert.True(t, GeneratedCard{Front: "Q", Back: "A"}.Valid())
	assert.False(t, GeneratedCard{Front: " ", Back: "A"}.Valid())
	assert.False(t, GeneratedCard{Front: "Q"}.Valid())
}
