// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"usersvc/internal/domain/entity"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the standard operations for user persistence.
// The application layer will depend on this interface, not the concrete implementation.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uint64) (*entity.User, error)

	// FindByUsername retrieves a single user by exact (case-sensitive) username.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// FindAll returns every user ordered by ID.
	FindAll(ctx context.Context) ([]*entity.User, error)

	// Create persists a new user and fills in the generated ID and timestamps.
	Create(ctx context.Context, user *entity.User) error

	// Update overwrites username, email and password hash of an existing user.
	Update(ctx context.Context, user *entity.User) error

	// DeleteByID removes a user. Returns ErrUserNotFound when no row matched.
	DeleteByID(ctx context.Context, id uint64) error

	// DeleteAll removes every user.
	DeleteAll(ctx context.Context) error
}
