package task

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue(t *testing.T) {
	t.Parallel()

	t.Run("enqueue until full", func(t *testing.T) {
		t.Parallel()
		q := NewTaskQueue(2, testLogger())

		require.NoError(t, q.Enqueue(newFuncTask(nil)))
		require.NoError(t, q.Enqueue(newFuncTask(nil)))
		err := q.Enqueue(newFuncTask(nil))
		assert.ErrorIs(t, err, ErrQueueFull)
		assert.Len(t, q.Channel(), 2)
	})

	t.Run("enqueue after close", func(t *testing.T) {
		t.Parallel()
		q := NewTaskQueue(1, testLogger())
		q.Close()
		q.Close()

		assert.ErrorIs(t, q.Enqueue(newFuncTask(nil)), ErrQueueClosed)
		_, ok := <-q.Channel()
		assert.False(t, ok)
	})

	t.Run("concurrent enqueue", func(t *testing.T) {
		t.Parallel()
		q := NewTaskQueue(50, testLogger())

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, q.Enqueue(newFuncTask(nil)))
			}()
		}
		wg.Wait()
		assert.Len(t, q.Channel(), 50)
	})
}
