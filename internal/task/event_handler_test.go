package task

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockTaskCreator struct {
	CreateTaskFn func(highlightID uuid.UUID) (Task, error)
}

func (m *mockTaskCreator) CreateTask(id uuid.UUID) (Task, error) { return m.CreateTaskFn(id) }

type mockSubmitter struct {
	SubmitFn  func(ctx context.Context, task Task) error
	submitted []Task
}

func (m *mockSubmitter) Submit(ctx context.Context, task Task) error {
	m.submitted = append(m.submitted, task)
	if m.SubmitFn != nil {
		return m.SubmitFn(ctx, task)
	}
	return nil
}

func TestTaskFactoryEventHandler_HandleEvent(t *testing.T) {
	t.Parallel()

	highlightID := uuid.New()
	okCreator := &mockTaskCreator{CreateTaskFn: func(id uuid.UUID) (Task, error) {
		assert.Equal(t, highlightID, id)
		return newFuncTask(nil), nil
	}}

	t.Run("submits highlight task", func(t *testing.T) {
		t.Parallel()
		runner := &mockSubmitter{}
		h := NewTaskFactoryEventHandler(okCreator, runner, testLogger())

		ev, err := events.NewTaskRequestEvent(TaskTypeHighlightGeneration, map[string]string{"highlight_id": highlightID.String()})
		require.NoError(t, err)
		require.NoError(t, h.HandleEvent(context.Background(), ev))
		assert.Len(t, runner.submitted, 1)
	})

	t.Run("ignores other types", func(t *testing.T) {
		t.Parallel()
		runner := &mockSubmitter{}
		h := NewTaskFactoryEventHandler(okCreator, runner, testLogger())

		ev, err := events.NewTaskRequestEvent("something_else", map[string]string{})
		require.NoError(t, err)
		require.NoError(t, h.HandleEvent(context.Background(), ev))
		assert.Empty(t, runner.submitted)
	})

	t.Run("rejects bad id", func(t *testing.T) {
		t.Parallel()
		runner := &mockSubmitter{}
		h := NewTaskFactoryEventHandler(okCreator, runner, testLogger())

		ev, err := events.NewTaskRequestEvent(TaskTypeHighlightGeneration, map[string]string{"highlight_id": "nope"})
		require.NoError(t, err)
		assert.Error(t, h.HandleEvent(context.Background(), ev))
		assert.Empty(t, runner.submitted)
	})

	t.Run("propagates submit failure", func(t *testing.T) {
		t.Parallel()
		runner := &mockSubmitter{SubmitFn: func(context.Context, Task) error { return ErrQueueFull }}
		h := NewTaskFactoryEventHandler(okCreator, runner, testLogger())

		ev, err := events.NewTaskRequestEvent(TaskTypeHighlightGeneration, map[string]string{"highlight_id": highlightID.String()})
		require.NoError(t, err)
		assert.ErrorIs(t, h.HandleEvent(context.Background(), ev), ErrQueueFull)
	})

	t.Run("propagates create failure", func(t *testing.T) {
		t.Parallel()
		creator := &mockTaskCreator{CreateTaskFn: func(uuid.UUID) (Task, error) { return nil, errors.New("nope") }}
		h := NewTaskFactoryEventHandler(creator, &mockSubmitter{}, testLogger())

		ev, err := events.NewTaskRequestEvent(TaskTypeHighlightGeneration, map[string]string{"highlight_id": highlightID.String()})
		require.NoError(t, err)
		assert.Error(t, h.HandleEvent(context.Background(), ev))
	})
}
