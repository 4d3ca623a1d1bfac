package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	err   error
	count int
	last  *TaskRequestEvent
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *TaskRequestEvent) error {
	h.count++
	h.last = event
	return h.err
}

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		event, err := NewTaskRequestEvent("test-event", map[string]string{"key": "value"})
		require.NoError(t, err)
		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("every handler receives the event", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		h1, h2 := &recordingHandler{}, &recordingHandler{}
		emitter.RegisterHandler(h1)
		emitter.RegisterHandler(h2)

		event, err := NewTaskRequestEvent("test-event", nil)
		require.NoError(t, err)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Equal(t, 1, h1.count)
		assert.Equal(t, 1, h2.count)
		assert.Same(t, event, h2.last)
	})

	t.Run("first error returned and delivery continues", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		first := &recordingHandler{err: errors.New("first")}
		second := &recordingHandler{err: errors.New("second")}
		third := &recordingHandler{}
		emitter.RegisterHandler(first)
		emitter.RegisterHandler(second)
		emitter.RegisterHandler(third)

		event, err := NewTaskRequestEvent("test-event", nil)
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		assert.EqualError(t, err, "first")
		assert.Equal(t, 1, third.count)
	})
}
