// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"usersvc/internal/domain/entity"
)

// --- Input DTOs ---

// CreateUserInput defines the data required to create a user.
type CreateUserInput struct {
	Username string `json:"username" validate:"required,max=20"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=50,bcryptmax"`
}

// UpdateUserInput carries a partial update. Nil fields are left untouched;
// a supplied password is re-hashed.
type UpdateUserInput struct {
	Username *string `json:"username,omitempty" validate:"omitnil,min=1,max=20"`
	Email    *string `json:"email,omitempty" validate:"omitnil,email"`
	Password *string `json:"password,omitempty" validate:"omitnil,min=6,max=50,bcryptmax"`
}

// UserUsecase defines the interface for user-related business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type UserUsecase interface {
	Create(ctx context.Context, input *CreateUserInput) (*entity.User, error)
	// CreateMany persists every input or none of them.
	CreateMany(ctx context.Context, inputs []*CreateUserInput) ([]*entity.User, error)
	FindByID(ctx context.Context, id uint64) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	ListAll(ctx context.Context) ([]*entity.User, error)
	Update(ctx context.Context, id uint64, input *UpdateUserInput) (*entity.User, error)
	DeleteByID(ctx context.Context, id uint64) error
	DeleteAll(ctx context.Context) error
}
