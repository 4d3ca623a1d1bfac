package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskRequestEvent(t *testing.T) {
	type payload struct {
		HighlightID uuid.UUID `json:"highlight_id"`
	}
	p := payload{HighlightID: uuid.New()}

	event, err := NewTaskRequestEvent("highlight_generation", p)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, "highlight_generation", event.Type)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	var decoded payload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, p.HighlightID, decoded.HighlightID)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(event.Payload, &raw))
	assert.Contains(t, raw, "highlight_id")
}

func TestNewTaskRequestEvent_BadPayload(t *testing.T) {
	_, err := NewTaskRequestEvent("x", make(chan int))
	assert.Error(t, err)
}

func TestHandlerFunc(t *testing.T) {
	var got *TaskRequestEvent
	h := HandlerFunc(func(_ context.Context, e *TaskRequestEvent) error {
		got = e
		return nil
	})

	event, err := NewTaskRequestEvent("x", nil)
	require.NoError(t, err)
	require.NoError(t, h.HandleEvent(context.Background(), event))
	assert.Same(t, event, got)
}
