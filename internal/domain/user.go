package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Roles understood by the authorization layer
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is the local profile of an authenticated identity
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email" validate:"required,email,max=255"`
	Name      string    `json:"name" db:"name" validate:"max=200"`
	Phone     *string   `json:"phone,omitempty" db:"phone" validate:"omitempty,e164"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UserRepository defines the interface for user profile data access
type UserRepository interface {
	// GetByID retrieves a user
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// Upsert creates or updates the profile for the identity
	Upsert(ctx context.Context, user *User) error
}
