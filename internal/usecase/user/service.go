package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/pkg/validator"
)

// ProfileInput is the editable part of a user profile
type ProfileInput struct {
	Email string  `json:"email" validate:"required,email,max=255"`
	Name  string  `json:"name" validate:"max=200"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,e164"`
}

// Service manages local user profiles
type Service struct {
	repo   domain.UserRepository
	logger *logger.Logger
}

// NewService creates a new user service
func NewService(repo domain.UserRepository, log *logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// Get returns the profile of the user
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpsertProfile creates or updates the profile of an authenticated identity.
// The role always comes from the token, never from the request body.
func (s *Service) UpsertProfile(ctx context.Context, id uuid.UUID, role string, in ProfileInput) (*domain.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if in.Phone != nil {
		p := strings.TrimSpace(*in.Phone)
		in.Phone = &p
		if p == "" {
			in.Phone = nil
		}
	}

	if details, err := validator.Struct(in); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, err, "invalid profile").WithDetails(details)
	}

	if role == "" {
		role = domain.RoleCustomer
	}

	u := &domain.User{
		ID:    id,
		Email: in.Email,
		Name:  in.Name,
		Phone: in.Phone,
		Role:  role,
	}
	if err := s.repo.Upsert(ctx, u); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.WrapError(domain.ErrConflict, err, "email is already in use")
		}
		s.logger.Error("Failed to upsert user profile", err)
		return nil, err
	}
	return u, nil
}
