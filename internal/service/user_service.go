package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/platform/logger"
	"github.com/phrazzld/flashcard-api/internal/store"
)

// UserService provides user-related operations
type UserService interface {
	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// GetUserByEmail retrieves a user by their email address
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// CreateUser registers a user together with their collection, the
	// default deck config and the stock notetypes.
	CreateUser(ctx context.Context, email, password string) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	stores Stores
	logger *slog.Logger
	db     *sql.DB
	now    func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(db *sql.DB, stores Stores, log *slog.Logger) (UserService, error) {
	if err := stores.require("users", "collections", "notetypes"); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &UserServiceImpl{
		stores: stores,
		db:     db,
		logger: log.With(slog.String("component", "user_service")),
		now:    time.Now,
	}, nil
}

// GetUser retrieves a user by their ID
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.stores.Users.GetByID(ctx, userID)
	if err != nil {
		log.Error("failed to retrieve user",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email address
func (s *UserServiceImpl) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.stores.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("user not found by email")
		} else {
			log.Error("failed to retrieve user by email", slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to retrieve user by email: %w", err)
	}

	log.Debug("retrieved user by email", slog.String("user_id", user.ID.String()))
	return user, nil
}

// CreateUser creates the user and seeds their collection in one transaction.
func (s *UserServiceImpl) CreateUser(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, password)
	if err != nil {
		log.Debug("invalid registration", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	now := s.now().UTC()
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		st := s.stores.withTx(tx)

		if err := st.Users.Create(ctx, user); err != nil {
			return err
		}

		col := domain.NewCollection(user.ID, now)
		if err := st.Collections.Create(ctx, col); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}

		cfg, err := domain.NewDefaultDeckConfig(col.ID, now)
		if err != nil {
			return err
		}
		if err := st.Collections.CreateDeckConfig(ctx, cfg); err != nil {
			return fmt.Errorf("failed to create default deck config: %w", err)
		}

		for _, nt := range domain.StockNotetypes(col.ID, now) {
			if err := st.Notetypes.Create(ctx, nt); err != nil {
				return fmt.Errorf("failed to create notetype %q: %w", nt.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to create user with existing email")
			return nil, newPublicError("user", "create", "Email already exists", err)
		}
		log.Error("failed to create user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user created", slog.String("user_id", user.ID.String()))
	return user, nil
}
