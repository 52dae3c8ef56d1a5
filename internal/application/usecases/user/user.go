package user

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hilthontt/devtea/internal/domain"
	"github.com/hilthontt/devtea/internal/infrastructure/logging"
	nanoid "github.com/jaevor/go-nanoid"
)

const (
	userCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	userCodeLength   = 6

	searchLimit = 10
)

type CreateInput struct {
	Email  string
	Name   string
	Avatar string
}

type UserUseCase interface {
	Create(ctx context.Context, in CreateInput) (*domain.Identity, error)
	Search(ctx context.Context, query string) ([]domain.Identity, error)
	Delete(ctx context.Context, userID string) error
}

type userUseCase struct {
	repository  domain.IdentityRepository
	logger      logging.Logger
	newUserCode func() string
}

func NewUserUseCase(repository domain.IdentityRepository, logger logging.Logger) (UserUseCase, error) {
	generator, err := nanoid.CustomASCII(userCodeAlphabet, userCodeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create user code generator: %w", err)
	}

	return &userUseCase{
		repository:  repository,
		logger:      logger,
		newUserCode: generator,
	}, nil
}

// Create issues a new identity. The username is the display name lowercased
// with whitespace removed; collisions get a numeric suffix starting at 1.
func (uc *userUseCase) Create(ctx context.Context, in CreateInput) (*domain.Identity, error) {
	base, err := domain.BaseUsername(in.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if base == "" {
		return nil, fmt.Errorf("%w: name has no usable characters", domain.ErrInvalidInput)
	}
	if in.Email != "" {
		if err := domain.ValidateEmail(in.Email); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
	}

	identity := &domain.Identity{
		ID:        uuid.NewString(),
		Email:     in.Email,
		Name:      in.Name,
		Avatar:    in.Avatar,
		UserCode:  uc.newUserCode(),
		CreatedAt: time.Now(),
	}

	for counter := 0; ; counter++ {
		identity.Username = base
		if counter > 0 {
			identity.Username = base + strconv.Itoa(counter)
		}

		err := uc.repository.Create(ctx, identity)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrUsernameTaken) {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	uc.logger.Info(logging.Internal, logging.Identity, "user created", map[logging.ExtraKey]any{
		logging.UserID: identity.ID,
		"Username":     identity.Username,
	})
	return identity, nil
}

// Search returns at most ten identities. An empty query matches nothing.
func (uc *userUseCase) Search(ctx context.Context, query string) ([]domain.Identity, error) {
	if strings.TrimSpace(query) == "" {
		return []domain.Identity{}, nil
	}

	results, err := uc.repository.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	if len(results) > searchLimit {
		results = results[:searchLimit]
	}
	return results, nil
}

func (uc *userUseCase) Delete(ctx context.Context, userID string) error {
	if err := uc.repository.Delete(ctx, userID); err != nil {
		return err
	}

	uc.logger.Info(logging.Internal, logging.Identity, "user deleted", map[logging.ExtraKey]any{
		logging.UserID: userID,
	})
	return nil
}
