package postgres

import (
	"context"
	"time"

	"usersvc/config"
	"usersvc/internal/domain/entity"
	"usersvc/internal/domain/repository"
	"usersvc/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository implements repository.UserRepository using GORM.
type userRepository struct {
	db           *gorm.DB
	queryTimeout time.Duration
}

// NewUserRepository is the constructor for userRepository.
// Every statement runs under the configured store query timeout.
func NewUserRepository(db *gorm.DB, cfg *config.Config) repository.UserRepository {
	return newUserRepository(db, queryTimeoutFrom(cfg))
}

func newUserRepository(db *gorm.DB, queryTimeout time.Duration) *userRepository {
	return &userRepository{db: db, queryTimeout: queryTimeout}
}

func queryTimeoutFrom(cfg *config.Config) time.Duration {
	if cfg == nil || cfg.Store == nil {
		return 0
	}

	return cfg.Store.QueryTimeout
}

// withTimeout bounds a single round trip. A zero timeout leaves ctx untouched.
func (repo *userRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if repo.queryTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, repo.queryTimeout)
}

// FindByID retrieves a single user by ID.
func (repo *userRepository) FindByID(ctx context.Context, id uint64) (*entity.User, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	var userM model.UserModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, translateError(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// FindByUsername retrieves a single user by exact username.
func (repo *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	var userM model.UserModel
	if err := repo.db.WithContext(ctx).Where("username = ?", username).First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, translateError(err, "failed to find user by username")
	}

	return toUserDomain(&userM), nil
}

// FindAll returns every user ordered by ID.
func (repo *userRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	var userMs []*model.UserModel
	if err := repo.db.WithContext(ctx).Order("id ASC").Find(&userMs).Error; err != nil {
		return nil, translateError(err, "failed to list users")
	}

	users := make([]*entity.User, 0, len(userMs))
	for _, userM := range userMs {
		users = append(users, toUserDomain(userM))
	}

	return users, nil
}

// Create persists a new user and copies the generated ID and timestamps back onto it.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	userM := fromUserDomain(user)
	userM.ID = 0

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		return translateError(err, "failed to create user")
	}

	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// Update overwrites the mutable columns of an existing user.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	now := time.Now()
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", user.ID).
		Select("username", "email", "password", "updated_at").
		Updates(&model.UserModel{
			Username:  user.Username,
			Email:     user.Email,
			Password:  user.PasswordHash,
			UpdatedAt: now,
		})
	if result.Error != nil {
		return translateError(result.Error, "failed to update user")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	user.UpdatedAt = now

	return nil
}

// DeleteByID removes a user, reporting ErrUserNotFound when nothing matched.
func (repo *userRepository) DeleteByID(ctx context.Context, id uint64) error {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.UserModel{})
	if result.Error != nil {
		return translateError(result.Error, "failed to delete user")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// DeleteAll removes every user.
func (repo *userRepository) DeleteAll(ctx context.Context) error {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	err := repo.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.UserModel{}).Error
	if err != nil {
		return translateError(err, "failed to delete all users")
	}

	return nil
}

func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:           data.ID,
		Username:     data.Username,
		Email:        data.Email,
		PasswordHash: data.Password,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:        data.ID,
		Username:  data.Username,
		Email:     data.Email,
		Password:  data.PasswordHash,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}
