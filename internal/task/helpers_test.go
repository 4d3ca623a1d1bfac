package task

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// memoryTaskStore keeps task records in a map.
type memoryTaskStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*Record
	history map[uuid.UUID][]TaskStatus
	saveErr error
}

func newMemoryTaskStore() *memoryTaskStore {
	return &memoryTaskStore{
		records: make(map[uuid.UUID]*Record),
		history: make(map[uuid.UUID][]TaskStatus),
	}
}

func (s *memoryTaskStore) SaveTask(_ context.Context, t Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	now := time.Now()
	s.records[t.ID()] = &Record{
		ID: t.ID(), Type: t.Type(), Payload: t.Payload(), Status: t.Status(),
		CreatedAt: now, UpdatedAt: now,
	}
	return nil
}

func (s *memoryTaskStore) put(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = &rec
}

func (s *memoryTaskStore) UpdateTaskStatus(_ context.Context, id uuid.UUID, status TaskStatus, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[id]; ok {
		rec.Status = status
		rec.ErrorMessage = msg
		rec.UpdatedAt = time.Now()
	}
	s.history[id] = append(s.history[id], status)
	return nil
}

func (s *memoryTaskStore) byStatus(status TaskStatus, olderThan time.Duration) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, rec := range s.records {
		if rec.Status != status {
			continue
		}
		if olderThan > 0 && time.Since(rec.UpdatedAt) < olderThan {
			continue
		}
		out = append(out, *rec)
	}
	return out
}

func (s *memoryTaskStore) GetPendingTasks(_ context.Context) ([]Record, error) {
	return s.byStatus(TaskStatusPending, 0), nil
}

func (s *memoryTaskStore) GetProcessingTasks(_ context.Context, olderThan time.Duration) ([]Record, error) {
	return s.byStatus(TaskStatusProcessing, olderThan), nil
}

func (s *memoryTaskStore) status(id uuid.UUID) TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[id]; ok {
		return rec.Status
	}
	return ""
}

func (s *memoryTaskStore) statusHistory(id uuid.UUID) []TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TaskStatus(nil), s.history[id]...)
}

func (s *memoryTaskStore) errorMessage(id uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[id]; ok {
		return rec.ErrorMessage
	}
	return ""
}

// funcTask is a Task whose Execute runs fn.
type funcTask struct {
	id    uuid.UUID
	typ   string
	fn    func(ctx context.Context) error
	calls atomic.Int32
}

func newFuncTask(fn func(ctx context.Context) error) *funcTask {
	return &funcTask{id: uuid.New(), typ: "test", fn: fn}
}

func (t *funcTask) ID() uuid.UUID      { return t.id }
func (t *funcTask) Type() string       { return t.typ }
func (t *funcTask) Payload() []byte    { return []byte(`{}`) }
func (t *funcTask) Status() TaskStatus { return TaskStatusPending }
func (t *funcTask) Execute(ctx context.Context) error {
	t.calls.Add(1)
	if t.fn == nil {
		return nil
	}
	return t.fn(ctx)
}
