package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"usersvc/config"
	"usersvc/internal/domain/entity"
	domainerrors "usersvc/internal/domain/errors"
	"usersvc/internal/domain/repository"
	"usersvc/internal/domain/service"
	logs "usersvc/internal/infra/log"
	"usersvc/internal/usecase"
	"usersvc/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// userService implements the UserUsecase interface.
type userService struct {
	txManager   repository.TransactionManager
	userRepo    repository.UserRepository
	hasher      service.PasswordHasher
	validate    *validator.Validate
	hashTimeout time.Duration
	logger      *slog.Logger
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	UserRepo  repository.UserRepository
	Hasher    service.PasswordHasher
	Config    *config.Config
	Logger    *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		txManager:   params.TxManager,
		userRepo:    params.UserRepo,
		hasher:      params.Hasher,
		validate:    validation.Default(),
		hashTimeout: hashTimeoutFrom(params.Config),
		logger:      params.Logger,
	}
}

func hashTimeoutFrom(cfg *config.Config) time.Duration {
	if cfg == nil || cfg.Auth == nil {
		return 0
	}

	return cfg.Auth.HashTimeout
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return logs.FromContext(ctx, srv.logger)
}

// Create validates the input, hashes the password and stores the new user.
func (srv *userService) Create(ctx context.Context, input *usecase.CreateUserInput) (*entity.User, error) {
	if err := srv.validateInput(input); err != nil {
		return nil, err
	}

	user, err := srv.buildUser(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := srv.userRepo.Create(ctx, user); err != nil {
		srv.log(ctx).Warn("Failed to create user", slog.String("username", input.Username), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create user")
	}

	srv.log(ctx).Info("User created", slog.Uint64("userID", user.ID), slog.String("username", user.Username))

	return user, nil
}

// CreateMany validates and hashes every input before opening the transaction,
// then inserts them all or none.
func (srv *userService) CreateMany(ctx context.Context, inputs []*usecase.CreateUserInput) ([]*entity.User, error) {
	if len(inputs) == 0 {
		return []*entity.User{}, nil
	}

	var problems []string
	for i, input := range inputs {
		if err := srv.validateInput(input); err != nil {
			problems = append(problems, fmt.Sprintf("[%d] %s", i, detailsOf(err)))
		}
	}
	if len(problems) > 0 {
		return nil, domainerrors.ErrValidationFailed.WithDetails(strings.Join(problems, "; "))
	}

	users := make([]*entity.User, 0, len(inputs))
	for _, input := range inputs {
		user, err := srv.buildUser(ctx, input)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		for _, user := range users {
			if err := userRepo.Create(ctx, user); err != nil {
				return errors.Wrapf(err, "failed to create user %q", user.Username)
			}
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Batch user creation rolled back", slog.Int("count", len(users)), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create users")
	}

	srv.log(ctx).Info("Users created", slog.Int("count", len(users)))

	return users, nil
}

// FindByID returns the user with the given ID.
func (srv *userService) FindByID(ctx context.Context, id uint64) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to find user by id")
	}

	return user, nil
}

// FindByUsername returns the user with exactly this username.
func (srv *userService) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	user, err := srv.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to find user by username")
	}

	return user, nil
}

// ListAll returns every user ordered by ID.
func (srv *userService) ListAll(ctx context.Context) ([]*entity.User, error) {
	users, err := srv.userRepo.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	return users, nil
}

// Update applies the supplied fields to an existing user.
func (srv *userService) Update(ctx context.Context, id uint64, input *usecase.UpdateUserInput) (*entity.User, error) {
	if input == nil {
		input = &usecase.UpdateUserInput{}
	}
	if err := srv.validate.Struct(input); err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails(validation.Describe(err))
	}

	user, err := srv.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to load user for update")
	}

	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Password != nil {
		hash, err := srv.hashPassword(ctx, *input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := srv.userRepo.Update(ctx, user); err != nil {
		return nil, mapRepositoryError(err, "failed to update user")
	}

	srv.log(ctx).Info("User updated", slog.Uint64("userID", user.ID), slog.Bool("passwordChanged", input.Password != nil))

	return user, nil
}

// DeleteByID removes one user.
func (srv *userService) DeleteByID(ctx context.Context, id uint64) error {
	if err := srv.userRepo.DeleteByID(ctx, id); err != nil {
		return mapRepositoryError(err, "failed to delete user")
	}

	srv.log(ctx).Info("User deleted", slog.Uint64("userID", id))

	return nil
}

// DeleteAll removes every user.
func (srv *userService) DeleteAll(ctx context.Context) error {
	if err := srv.userRepo.DeleteAll(ctx); err != nil {
		return errors.Wrap(err, "failed to delete all users")
	}

	srv.log(ctx).Warn("All users deleted")

	return nil
}

func (srv *userService) validateInput(input *usecase.CreateUserInput) error {
	if input == nil {
		return domainerrors.ErrValidationFailed.WithDetails("request body is required")
	}
	if err := srv.validate.Struct(input); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(validation.Describe(err))
	}

	return nil
}

func (srv *userService) buildUser(ctx context.Context, input *usecase.CreateUserInput) (*entity.User, error) {
	hash, err := srv.hashPassword(ctx, input.Password)
	if err != nil {
		return nil, err
	}

	return &entity.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
	}, nil
}

// hashPassword is the only place plaintext passwords are turned into hashes.
func (srv *userService) hashPassword(ctx context.Context, plain string) (string, error) {
	hash, err := runBounded(ctx, srv.hashTimeout, "password hashing", func() (string, error) {
		return srv.hasher.Hash(plain)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrServiceUnavailable) {
			srv.log(ctx).Warn("Password hashing did not finish in time", slog.Duration("timeout", srv.hashTimeout))

			return "", err
		}
		srv.log(ctx).Error("Failed to hash password", slog.Any("error", err))

		return "", errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	return hash, nil
}

func mapRepositoryError(err error, msg string) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return errors.Wrap(domainerrors.ErrUserNotFound, msg)
	}

	return errors.Wrap(err, msg)
}

// detailsOf extracts the details of a validation failure.
func detailsOf(err error) string {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) && appErr.Details() != "" {
		return appErr.Details()
	}

	return err.Error()
}
