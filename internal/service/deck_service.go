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
	"github.com/phrazzld/flashcard-api/internal/platform/logger"
	"github.com/phrazzld/flashcard-api/internal/store"
)

// DeckUpdate lists the deck attributes to change. Nil fields are kept.
type DeckUpdate struct {
	Name     *string
	ConfigID *int64
}

// DeckUpdateResult describes an applied DeckUpdate.
type DeckUpdateResult struct {
	// OldName is the name before the update.
	OldName string
	Deck    domain.Deck
	// UpdatedName and UpdatedConfigID are set for the attributes that changed.
	UpdatedName     *string
	UpdatedConfigID *int64
}

// DeckDeleteResult reports what deleting a deck removed.
type DeckDeleteResult struct {
	Name         string
	DeletedCards int
	DeletedNotes int
}

// DeckService manages the decks of a user's collection.
type DeckService interface {
	// CreateDeck creates a deck, using the collection's default config when configID is nil.
	CreateDeck(ctx context.Context, userID uuid.UUID, name string, configID *int64) (*domain.Deck, error)
	ListDecks(ctx context.Context, userID uuid.UUID, limit, offset int) ([]store.DeckSummary, error)
	GetDeck(ctx context.Context, userID uuid.UUID, deckID int64) (*store.DeckSummary, error)
	GetDeckByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Deck, error)
	UpdateDeck(ctx context.Context, userID uuid.UUID, deckID int64, upd DeckUpdate) (*DeckUpdateResult, error)
	// DeleteDeck removes the deck, its cards and the notes left without cards.
	DeleteDeck(ctx context.Context, userID uuid.UUID, deckID int64) (*DeckDeleteResult, error)
	// EnsureDeck returns the named deck, creating it when missing.
	EnsureDeck(ctx context.Context, userID uuid.UUID, name string) (deck *domain.Deck, created bool, err error)
}

type deckServiceImpl struct {
	stores Stores
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewDeckService creates a DeckService.
func NewDeckService(db *sql.DB, stores Stores, log *slog.Logger) (DeckService, error) {
	if err := stores.require("collections", "decks", "notes"); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &deckServiceImpl{
		stores: stores,
		db:     db,
		logger: log.With(slog.String("component", "deck_service")),
		now:    time.Now,
	}, nil
}

func deckNotFound(op string, deckID int64, err error) error {
	return newPublicError("deck", op, fmt.Sprintf("Deck with id=%d not found", deckID), err)
}

func deckNameNotFound(service, op, name string, err error) error {
	return newPublicError(service, op, fmt.Sprintf("Deck with name %s not found.", name), err)
}

func deckNameExists(op, name string, err error) error {
	return newPublicError("deck", op, fmt.Sprintf("Deck with name %s already exists", name), err)
}

// resolveConfig returns the config to use for a deck, checking that an
// explicit configID belongs to the collection.
func resolveConfig(ctx context.Context, cols store.CollectionStore, colID int64, configID *int64) (int64, error) {
	if configID == nil {
		cfg, err := cols.GetDefaultDeckConfig(ctx, colID)
		if err != nil {
			return 0, fmt.Errorf("failed to load default deck config: %w", err)
		}
		return cfg.ID, nil
	}
	cfg, err := cols.GetDeckConfig(ctx, colID, *configID)
	if err != nil {
		if errors.Is(err, store.ErrDeckConfigNotFound) {
			return 0, newPublicError("deck", "config",
				fmt.Sprintf("Deck config with id=%d not found", *configID), err)
		}
		return 0, err
	}
	return cfg.ID, nil
}

func (s *deckServiceImpl) CreateDeck(
	ctx context.Context,
	userID uuid.UUID,
	name string,
	configID *int64,
) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var deck *domain.Deck
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		st := s.stores.withTx(tx)
		var err error
		deck, err = s.createDeck(ctx, st, userID, name, configID)
		return err
	})
	if err != nil {
		if !domain.IsValidationError(err) && !store.IsDuplicateError(err) {
			log.Error("failed to create deck", slog.String("error", err.Error()))
		}
		return nil, err
	}

	log.Info("deck created", slog.Int64("deck_id", deck.ID), slog.String("name", deck.Name))
	return deck, nil
}

// createDeck runs inside the caller's transaction.
func (s *deckServiceImpl) createDeck(
	ctx context.Context,
	st Stores,
	userID uuid.UUID,
	name string,
	configID *int64,
) (*domain.Deck, error) {
	now := s.now().UTC()
	col, err := loadCollection(ctx, st.Collections, userID)
	if err != nil {
		return nil, err
	}
	cfgID, err := resolveConfig(ctx, st.Collections, col.ID, configID)
	if err != nil {
		return nil, err
	}
	deck, err := domain.NewDeck(col.ID, cfgID, name, now)
	if err != nil {
		return nil, err
	}
	if err := st.Decks.Create(ctx, deck); err != nil {
		if errors.Is(err, store.ErrDeckNameExists) {
			return nil, deckNameExists("create", deck.Name, err)
		}
		return nil, fmt.Errorf("failed to create deck: %w", err)
	}
	if err := st.Collections.Touch(ctx, col.ID, now.Unix()); err != nil {
		return nil, fmt.Errorf("failed to touch collection: %w", err)
	}
	return deck, nil
}

func (s *deckServiceImpl) ListDecks(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]store.DeckSummary, error) {
	col, err := loadCollection(ctx, s.stores.Collections, userID)
	if err != nil {
		return nil, err
	}
	limit, offset = NormalizePage(limit, offset)
	decks, err := s.stores.Decks.List(ctx, col.ID, limit, offset)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list decks",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	return decks, nil
}

func (s *deckServiceImpl) GetDeck(ctx context.Context, userID uuid.UUID, deckID int64) (*store.DeckSummary, error) {
	col, err := loadCollection(ctx, s.stores.Collections, userID)
	if err != nil {
		return nil, err
	}
	deck, err := s.stores.Decks.GetByID(ctx, col.ID, deckID)
	if err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			return nil, deckNotFound("get", deckID, err)
		}
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	count, err := s.stores.Decks.CountCards(ctx, deck.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count cards: %w", err)
	}
	return &store.DeckSummary{Deck: *deck, CardCount: count}, nil
}

func (s *deckServiceImpl) GetDeckByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Deck, error) {
	col, err := loadCollection(ctx, s.stores.Collections, userID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	deck, err := s.stores.Decks.GetByName(ctx, col.ID, name)
	if err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			return nil, deckNameNotFound("deck", "get", name, err)
		}
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	return deck, nil
}

func (s *deckServiceImpl) UpdateDeck(
	ctx context.Context,
	userID uuid.UUID,
	deckID int64,
	upd DeckUpdate,
) (*DeckUpdateResult, error) {
	if upd.Name == nil && upd.ConfigID == nil {
		return nil, newPublicError("deck", "update",
			"At least one field must be provided for update", ErrNoUpdateFields)
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	var res *DeckUpdateResult
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		st := s.stores.withTx(tx)
		now := s.now().UTC()

		col, err := loadCollection(ctx, st.Collections, userID)
		if err != nil {
			return err
		}
		deck, err := st.Decks.GetByID(ctx, col.ID, deckID)
		if err != nil {
			if errors.Is(err, store.ErrDeckNotFound) {
				return deckNotFound("update", deckID, err)
			}
			return err
		}

		res = &DeckUpdateResult{OldName: deck.Name}
		if upd.Name != nil {
			name := strings.TrimSpace(*upd.Name)
			if err := domain.ValidateDeckName(name); err != nil {
				return err
			}
			deck.Name = name
			res.UpdatedName = &name
		}
		if upd.ConfigID != nil {
			cfgID, err := resolveConfig(ctx, st.Collections, col.ID, upd.ConfigID)
			if err != nil {
				return err
			}
			deck.ConfigID = cfgID
			res.UpdatedConfigID = &cfgID
		}
		deck.MtimeSecs = now.Unix()

		if err := st.Decks.Update(ctx, deck); err != nil {
			if errors.Is(err, store.ErrDeckNameExists) {
				return deckNameExists("update", deck.Name, err)
			}
			return fmt.Errorf("failed to update deck: %w", err)
		}
		if err := st.Collections.Touch(ctx, col.ID, now.Unix()); err != nil {
			return fmt.Errorf("failed to touch collection: %w", err)
		}
		res.Deck = *deck
		return nil
	})
	if err != nil {
		log.Debug("deck update failed", slog.Int64("deck_id", deckID), slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("deck updated", slog.Int64("deck_id", deckID))
	return res, nil
}

func (s *deckServiceImpl) DeleteDeck(ctx context.Context, userID uuid.UUID, deckID int64) (*DeckDeleteResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var res *DeckDeleteResult
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		st := s.stores.withTx(tx)

		col, err := loadCollection(ctx, st.Collections, userID)
		if err != nil {
			return err
		}
		deck, err := st.Decks.GetByID(ctx, col.ID, deckID)
		if err != nil {
			if errors.Is(err, store.ErrDeckNotFound) {
				return deckNotFound("delete", deckID, err)
			}
			return err
		}
		del, err := st.Decks.Delete(ctx, col.ID, deckID)
		if err != nil {
			return fmt.Errorf("failed to delete deck: %w", err)
		}
		notes, err := st.Notes.DeleteOrphans(ctx, del.NoteIDs)
		if err != nil {
			return fmt.Errorf("failed to delete orphaned notes: %w", err)
		}
		if err := st.Collections.Touch(ctx, col.ID, s.now().Unix()); err != nil {
			return fmt.Errorf("failed to touch collection: %w", err)
		}
		res = &DeckDeleteResult{Name: deck.Name, DeletedCards: del.Cards, DeletedNotes: notes}
		return nil
	})
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to delete deck", slog.Int64("deck_id", deckID), slog.String("error", err.Error()))
		}
		return nil, err
	}

	log.Info("deck deleted",
		slog.Int64("deck_id", deckID),
		slog.Int("deleted_cards", res.DeletedCards),
		slog.Int("deleted_notes", res.DeletedNotes))
	return res, nil
}

func (s *deckServiceImpl) EnsureDeck(
	ctx context.Context,
	userID uuid.UUID,
	name string,
) (*domain.Deck, bool, error) {
	deck, err := s.GetDeckByName(ctx, userID, name)
	if err == nil {
		return deck, false, nil
	}
	if !errors.Is(err, store.ErrDeckNotFound) {
		return nil, false, err
	}

	deck, err = s.CreateDeck(ctx, userID, name, nil)
	if errors.Is(err, store.ErrDeckNameExists) {
		// Created concurrently between the lookup and the insert.
		deck, err = s.GetDeckByName(ctx, userID, name)
		return deck, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return deck, true, nil
}
