package task

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownTaskType is returned when no restorer is registered for a record's type.
var ErrUnknownTaskType = errors.New("unknown task type")

// RestoreFunc rebuilds an executable task from its persisted record.
type RestoreFunc func(rec Record) (Task, error)

// Registry maps task types to the functions that restore them.
type Registry struct {
	mu        sync.RWMutex
	restorers map[string]RestoreFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{restorers: make(map[string]RestoreFunc)}
}

// Register installs fn for taskType, replacing any earlier registration.
func (r *Registry) Register(taskType string, fn RestoreFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.restorers[taskType] = fn
}

// Restore rebuilds rec into a Task.
func (r *Registry) Restore(rec Record) (Task, error) {
	r.mu.RLock()
	fn, ok := r.restorers[rec.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTaskType, rec.Type)
	}
	t, err := fn(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to restore %s task %s: %w", rec.Type, rec.ID, err)
	}
	return t, nil
}
