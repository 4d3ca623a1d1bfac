package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCardFilter(t *testing.T) {
	t.Parallel()

	review := domain.CardTypeReview

	tests := []struct {
		name      string
		filter    store.CardFilter
		wantWhere string
		wantArgs  []interface{}
	}{
		{
			name:      "collection only",
			wantWhere: " WHERE d.collection_id = $1",
			wantArgs:  []interface{}{int64(3)},
		},
		{
			name:      "deck and type",
			filter:    store.CardFilter{DeckName: "Spanish", Type: &review},
			wantWhere: " WHERE d.collection_id = $1 AND d.name = $2 AND c.type_id = $3",
			wantArgs:  []interface{}{int64(3), "Spanish", 2},
		},
		{
			name:      "query and tags are escaped",
			filter:    store.CardFilter{Query: " 50%_off ", Tags: []string{"verbs", " ", "a_b"}},
			wantWhere: " WHERE d.collection_id = $1 AND n.flds ILIKE $2 AND n.tags ILIKE $3 AND n.tags ILIKE $4",
			wantArgs:  []interface{}{int64(3), `%50\%\_off%`, "% verbs %", `% a\_b %`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildCardFilter(3, tt.filter)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func cardViewColumns() []string {
	return []string{
		"id", "nid", "did", "ord", "mod", "usn", "type_id", "queue_id", "due",
		"ivl", "factor", "reps", "lapses", "left", "odue", "odid", "flags", "data",
		"n_id", "guid", "mid", "n_mod", "n_usn", "tags", "flds", "sfld", "csum", "n_flags", "n_data",
		"name",
	}
}

func TestPostgresCardStore_GetView(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresCardStore(db, discardLogger())

		mock.ExpectQuery(regexp.QuoteMeta("JOIN notes n ON n.id = c.nid")).
			WithArgs(int64(3), int64(11)).
			WillReturnRows(sqlmock.NewRows(cardViewColumns()).AddRow(
				11, 5, 2, 0, 100, 0, 2, 2, 30, 4, 2500, 3, 0, 0, 0, 0, 0, "{}",
				5, "abc", 1, 100, 0, " verbs ", "hablar\x1fto speak", "hablar", 99, 0, "",
				"Spanish",
			))

		v, err := s.GetView(context.Background(), 3, 11)
		require.NoError(t, err)
		assert.Equal(t, domain.CardTypeReview, v.Card.Type)
		assert.Equal(t, domain.QueueReview, v.Card.Queue)
		assert.Equal(t, "to speak", v.Note.Back())
		assert.Equal(t, "Spanish", v.DeckName)
	})

	t.Run("other collection", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresCardStore(db, discardLogger())

		mock.ExpectQuery("FROM cards c").WillReturnError(sql.ErrNoRows)

		_, err := s.GetView(context.Background(), 4, 11)
		assert.ErrorIs(t, err, store.ErrCardNotFound)
	})
}

func TestPostgresCardStore_List(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresCardStore(db, discardLogger())

	mock.ExpectQuery(regexp.QuoteMeta("d.name = $2 ORDER BY c.id ASC LIMIT $3 OFFSET $4")).
		WithArgs(int64(3), "Spanish", 20, 40).
		WillReturnRows(sqlmock.NewRows(cardViewColumns()))

	views, err := s.List(context.Background(), 3, store.CardFilter{DeckName: "Spanish", Limit: 20, Offset: 40})
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestPostgresCardStore_MaxNewDue(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresCardStore(db, discardLogger())

	mock.ExpectQuery(regexp.QuoteMeta("COALESCE(MAX(due), 0)")).
		WithArgs(int64(2), domain.CardTypeNew, domain.QueueNew).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(17))

	due, err := s.MaxNewDue(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(17), due)
}

func TestPostgresCardStore_Update(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresCardStore(db, discardLogger())

	card := domain.NewCard(5, 2, 0, 1, 100)
	card.ID = 11
	mock.ExpectExec(regexp.QuoteMeta("UPDATE cards")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.Update(context.Background(), card), store.ErrCardNotFound)
}
