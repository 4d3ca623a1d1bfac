package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/generation"
	"github.com/phrazzld/flashcard-api/internal/platform/logger"
	"github.com/phrazzld/flashcard-api/internal/store"
)

// AIGeneratedTag marks cards whose content came from the language model.
const AIGeneratedTag = "ai-generated"

// CreateCardParams describes a note to create. TypeName defaults to the
// Basic notetype.
type CreateCardParams struct {
	TypeName string
	DeckName string
	Front    string
	Back     string
	// Tags is space separated.
	Tags string
	// TimezoneOffsetMinutes shifts the recorded modification time to the
	// client's local clock.
	TimezoneOffsetMinutes int
}

// CreatedCard is a new note with the cards generated from its templates.
type CreatedCard struct {
	Note     domain.Note
	Cards    []domain.Card
	DeckName string
}

// CardUpdate lists the note content to change. Nil fields are kept.
type CardUpdate struct {
	Front *string
	Back  *string
	Tags  *string
}

// CardDeletion reports what deleting a card removed.
type CardDeletion struct {
	CardID      int64
	NoteID      int64
	NoteDeleted bool
}

// CardService manages notes and cards in a user's collection.
type CardService interface {
	// CreateCard creates a note and one card per template of its notetype.
	CreateCard(ctx context.Context, userID uuid.UUID, params CreateCardParams) (*CreatedCard, error)

	// ListCards returns cards matching filter.
	ListCards(ctx context.Context, userID uuid.UUID, filter store.CardFilter) ([]store.CardView, error)

	GetCard(ctx context.Context, userID uuid.UUID, cardID int64) (*store.CardView, error)

	// UpdateCard rewrites the content of the card's note.
	UpdateCard(ctx context.Context, userID uuid.UUID, cardID int64, upd CardUpdate) (*store.CardView, error)

	// DeleteCard removes the card and its note once no card refers to it.
	DeleteCard(ctx context.Context, userID uuid.UUID, cardID int64) (*CardDeletion, error)

	// CreateGeneratedCards saves model output into a deck as Basic notes
	// tagged AIGeneratedTag. Cards that cannot be saved are reported in
	// failed; err is set only when no card could be attempted.
	CreateGeneratedCards(
		ctx context.Context,
		userID uuid.UUID,
		deckID int64,
		cards []generation.GeneratedCard,
	) (created int, failed []error, err error)
}

type cardServiceImpl struct {
	stores Stores
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewCardService creates a CardService.
func NewCardService(db *sql.DB, stores Stores, log *slog.Logger) (CardService, error) {
	if err := stores.require("collections", "decks", "notetypes", "notes", "cards"); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &cardServiceImpl{
		stores: stores,
		db:     db,
		logger: log.With(slog.String("component", "card_service")),
		now:    time.Now,
	}, nil
}

func cardNotFound(op string, cardID int64, err error) error {
	return newPublicError("card", op, fmt.Sprintf("Card with id=%d not found", cardID), err)
}

func duplicateNote(op string) error {
	return newPublicError("card", op,
		"Note with same sort field already exists in this notetype.", store.ErrDuplicateNote)
}

func validateSides(front, back string) error {
	if strings.TrimSpace(front) == "" {
		return domain.NewValidationError("front", "cannot be empty", domain.ErrEmptyContent)
	}
	if strings.TrimSpace(back) == "" {
		return domain.NewValidationError("back", "cannot be empty", domain.ErrEmptyContent)
	}
	return nil
}

func (s *cardServiceImpl) CreateCard(
	ctx context.Context,
	userID uuid.UUID,
	params CreateCardParams,
) (*CreatedCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := validateSides(params.Front, params.Back); err != nil {
		return nil, err
	}
	typeName := strings.TrimSpace(params.TypeName)
	if typeName == "" {
		typeName = domain.NotetypeBasic
	}
	deckName := strings.TrimSpace(params.DeckName)

	var created *CreatedCard
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		st := s.stores.withTx(tx)

		col, err := loadCollection(ctx, st.Collections, userID)
		if err != nil {
			return err
		}
		deck, err := st.Decks.GetByName(ctx, col.ID, deckName)
		if err != nil {
			if errors.Is(err, store.ErrDeckNotFound) {
				return deckNameNotFound("card", "create", deckName, err)
			}
			return err
		}
		nt, err := st.Notetypes.GetByName(ctx, col.ID, typeName)
		if err != nil {
			if errors.Is(err, store.ErrNotetypeNotFound) {
				return newPublicError("card", "create", fmt.Sprintf("No notetype found for %s", typeName), err)
			}
			return err
		}

		mod := modTime(s.now(), params.TimezoneOffsetMinutes)
		created, err = s.createNote(ctx, st, col, deck, nt, []string{params.Front, params.Back}, params.Tags, mod)
		return err
	})
	if err != nil {
		if !store.IsNotFoundError(err) && !store.IsDuplicateError(err) {
			log.Error("failed to create card", slog.String("error", err.Error()))
		}
		return nil, err
	}

	log.Info("card created",
		slog.Int64("note_id", created.Note.ID),
		slog.Int("cards", len(created.Cards)),
		slog.String("deck", created.DeckName))
	return created, nil
}

// createNote stores a note and its cards inside the caller's transaction.
// Sibling cards share one due position after the deck's current maximum.
func (s *cardServiceImpl) createNote(
	ctx context.Context,
	st Stores,
	col *domain.Collection,
	deck *domain.Deck,
	nt *domain.Notetype,
	fields []string,
	tags string,
	mod int64,
) (*CreatedCard, error) {
	if len(nt.Templates) == 0 {
		return nil, fmt.Errorf("%w: notetype %q has no templates", store.ErrInvalidEntity, nt.Name)
	}

	note, err := domain.NewNote(nt.ID, fields, tags, mod)
	if err != nil {
		return nil, err
	}
	exists, err := st.Notes.ExistsBySortField(ctx, nt.ID, note.Csum, note.SortField)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate note: %w", err)
	}
	if exists {
		return nil, duplicateNote("create")
	}
	if err := st.Notes.Create(ctx, note); err != nil {
		if errors.Is(err, store.ErrDuplicateNote) {
			return nil, duplicateNote("create")
		}
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	maxDue, err := st.Cards.MaxNewDue(ctx, deck.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read new card position: %w", err)
	}

	out := &CreatedCard{Note: *note, DeckName: deck.Name}
	for _, tmpl := range nt.Templates {
		card := domain.NewCard(note.ID, deck.ID, tmpl.Ord, maxDue+1, mod)
		if err := st.Cards.Create(ctx, card); err != nil {
			return nil, fmt.Errorf("failed to create card for template %d: %w", tmpl.Ord, err)
		}
		out.Cards = append(out.Cards, *card)
	}

	if err := st.Collections.Touch(ctx, col.ID, mod); err != nil {
		return nil, fmt.Errorf("failed to touch collection: %w", err)
	}
	return out, nil
}

func (s *cardServiceImpl) ListCards(
	ctx context.Context,
	userID uuid.UUID,
	filter store.CardFilter,
) ([]store.CardView, error) {
	col, err := loadCollection(ctx, s.stores.Collections, userID)
	if err != nil {
		return nil, err
	}
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, domain.NewValidationError("type_id", "is not a known card type", domain.ErrValidation)
	}
	filter.Limit, filter.Offset = NormalizePage(filter.Limit, filter.Offset)

	cards, err := s.stores.Cards.List(ctx, col.ID, filter)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list cards",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

func (s *cardServiceImpl) GetCard(ctx context.Context, userID uuid.UUID, cardID int64) (*store.CardView, error) {
	col, err := loadCollection(ctx, s.stores.Collections, userID)
	if err != nil {
		return nil, err
	}
	view, err := s.stores.Cards.GetView(ctx, col.ID, cardID)
	if err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			return nil, cardNotFound("get", cardID, err)
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return view, nil
}

func (s *cardServiceImpl) UpdateCard(
	ctx context.Context,
	userID uuid.UUID,
	cardID int64,
	upd CardUpdate,
) (*store.CardView, error) {
	if upd.Front == nil && upd.Back == nil && upd.Tags == nil {
		return nil, newPublicError("card", "update",
			"At least one field must be provided for update", ErrNoUpdateFields)
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	var view *store.CardView
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		st := s.stores.withTx(tx)

		col, err := loadCollection(ctx, st.Collections, userID)
		if err != nil {
			return err
		}
		current, err := st.Cards.GetView(ctx, col.ID, cardID)
		if err != nil {
			if errors.Is(err, store.ErrCardNotFound) {
				return cardNotFound("update", cardID, err)
			}
			return err
		}

		note := current.Note
		fields := note.FieldList()
		for len(fields) < 2 {
			fields = append(fields, "")
		}
		if upd.Front != nil {
			fields[0] = *upd.Front
		}
		if upd.Back != nil {
			fields[1] = *upd.Back
		}
		if err := validateSides(fields[0], fields[1]); err != nil {
			return err
		}

		oldSort := note.SortField
		note.SetFields(fields)
		if note.SortField != oldSort {
			exists, err := st.Notes.ExistsBySortField(ctx, note.NotetypeID, note.Csum, note.SortField)
			if err != nil {
				return fmt.Errorf("failed to check for duplicate note: %w", err)
			}
			if exists {
				return duplicateNote("update")
			}
		}
		if upd.Tags != nil {
			note.Tags = domain.FormatTags(*upd.Tags)
		}

		mod := s.now().Unix()
		note.Mod = mod
		if err := st.Notes.Update(ctx, &note); err != nil {
			if errors.Is(err, store.ErrDuplicateNote) {
				return duplicateNote("update")
			}
			return fmt.Errorf("failed to update note: %w", err)
		}
		if err := st.Cards.TouchByNote(ctx, note.ID, mod); err != nil {
			return fmt.Errorf("failed to touch cards: %w", err)
		}
		if err := st.Collections.Touch(ctx, col.ID, mod); err != nil {
			return fmt.Errorf("failed to touch collection: %w", err)
		}

		view, err = st.Cards.GetView(ctx, col.ID, cardID)
		return err
	})
	if err != nil {
		log.Debug("card update failed", slog.Int64("card_id", cardID), slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("card updated", slog.Int64("card_id", cardID), slog.Int64("note_id", view.Note.ID))
	return view, nil
}

func (s *cardServiceImpl) DeleteCard(ctx context.Context, userID uuid.UUID, cardID int64) (*CardDeletion, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var res *CardDeletion
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		st := s.stores.withTx(tx)

		col, err := loadCollection(ctx, st.Collections, userID)
		if err != nil {
			return err
		}
		card, err := st.Cards.GetByID(ctx, col.ID, cardID)
		if err != nil {
			if errors.Is(err, store.ErrCardNotFound) {
				return cardNotFound("delete", cardID, err)
			}
			return err
		}
		if err := st.Cards.Delete(ctx, card.ID); err != nil {
			return fmt.Errorf("failed to delete card: %w", err)
		}
		removed, err := st.Notes.DeleteOrphans(ctx, []int64{card.NoteID})
		if err != nil {
			return fmt.Errorf("failed to delete orphaned note: %w", err)
		}
		if err := st.Collections.Touch(ctx, col.ID, s.now().Unix()); err != nil {
			return fmt.Errorf("failed to touch collection: %w", err)
		}
		res = &CardDeletion{CardID: card.ID, NoteID: card.NoteID, NoteDeleted: removed > 0}
		return nil
	})
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to delete card", slog.Int64("card_id", cardID), slog.String("error", err.Error()))
		}
		return nil, err
	}

	log.Info("card deleted",
		slog.Int64("card_id", res.CardID),
		slog.Bool("note_deleted", res.NoteDeleted))
	return res, nil
}

// generatedTags joins AIGeneratedTag with the model's tags. Spaces inside a
// tag become underscores since tags are space separated.
func generatedTags(tags []string) string {
	out := []string{AIGeneratedTag}
	for _, t := range tags {
		t = strings.Join(strings.Fields(t), "_")
		if t != "" && !strings.EqualFold(t, AIGeneratedTag) {
			out = append(out, t)
		}
	}
	return strings.Join(out, " ")
}

func (s *cardServiceImpl) CreateGeneratedCards(
	ctx context.Context,
	userID uuid.UUID,
	deckID int64,
	cards []generation.GeneratedCard,
) (int, []error, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	col, err := loadCollection(ctx, s.stores.Collections, userID)
	if err != nil {
		return 0, nil, err
	}
	deck, err := s.stores.Decks.GetByID(ctx, col.ID, deckID)
	if err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			return 0, nil, deckNotFound("generate", deckID, err)
		}
		return 0, nil, fmt.Errorf("failed to load deck: %w", err)
	}
	nt, err := s.stores.Notetypes.GetByName(ctx, col.ID, domain.NotetypeBasic)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to load notetype: %w", err)
	}

	created := 0
	var failed []error
	for i, gc := range cards {
		if err := ctx.Err(); err != nil {
			return created, failed, err
		}
		if !gc.Valid() {
			failed = append(failed, fmt.Errorf("card %d: %w", i+1, domain.ErrEmptyContent))
			continue
		}

		err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
			_, err := s.createNote(ctx, s.stores.withTx(tx), col, deck, nt,
				[]string{gc.Front, gc.Back}, generatedTags(gc.Tags), s.now().Unix())
			return err
		})
		if err != nil {
			log.Warn("failed to save generated card",
				slog.Int("index", i),
				slog.String("error", err.Error()))
			failed = append(failed, fmt.Errorf("card %d: %w", i+1, err))
			continue
		}
		created++
	}

	log.Info("generated cards saved",
		slog.Int64("deck_id", deckID),
		slog.Int("created", created),
		slog.Int("failed", len(failed)))
	return created, failed, nil
}
