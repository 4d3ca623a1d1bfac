package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/flashcard-api/internal/domain"
)

// NoteStore persists notes.
type NoteStore interface {
	Create(ctx context.Context, note *domain.Note) error

	GetByID(ctx context.Context, id int64) (*domain.Note, error)

	// ExistsBySortField reports whether the notetype already has a note with
	// the same checksum and sort field.
	ExistsBySortField(ctx context.Context, notetypeID int64, csum int64, sortField string) (bool, error)

	// Update rewrites fields, tags and modification time.
	Update(ctx context.Context, note *domain.Note) error

	// DeleteOrphans removes those notes from ids that no longer have cards
	// and returns how many were removed.
	DeleteOrphans(ctx context.Context, ids []int64) (int, error)

	WithTx(tx *sql.Tx) NoteStore
}
