package impl

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"usersvc/config"
	"usersvc/internal/domain/entity"
	domainerrors "usersvc/internal/domain/errors"
	"usersvc/internal/domain/repository"
	mockRepo "usersvc/internal/mocks/repository"
	mockSvc "usersvc/internal/mocks/service"
	"usersvc/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// userServiceFixtures holds all test dependencies for user service tests.
type userServiceFixtures struct {
	service   usecase.UserUsecase
	txManager *mockRepo.MockTransactionManager
	userRepo  *mockRepo.MockUserRepository
	hasher    *mockSvc.MockPasswordHasher
}

func newTestConfig(hashTimeout time.Duration) *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{HashTimeout: hashTimeout},
	}
}

func createTestUserService(t *testing.T) userServiceFixtures {
	return createTestUserServiceWithConfig(t, newTestConfig(time.Second))
}

func createTestUserServiceWithConfig(t *testing.T, cfg *config.Config) userServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	userRepo := mockRepo.NewMockUserRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := NewUserService(UserServiceParams{
		TxManager: txManager,
		UserRepo:  userRepo,
		Hasher:    hasher,
		Config:    cfg,
		Logger:    logger,
	})

	return userServiceFixtures{
		service:   service,
		txManager: txManager,
		userRepo:  userRepo,
		hasher:    hasher,
	}
}

func validCreateInput(username string) *usecase.CreateUserInput {
	return &usecase.CreateUserInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret-" + username,
	}
}

func strPtr(s string) *string {
	return &s
}

func TestUserService_Create_Success(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()
	input := validCreateInput("alice")

	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)
	fx.userRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Run(func(_ context.Context, user *entity.User) {
			user.ID = 7
		}).
		Return(nil)

	user, err := fx.service.Create(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, uint64(7), user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "hashed_password", user.PasswordHash)
}

func TestUserService_Create_ValidationFailed(t *testing.T) {
	tests := []struct {
		name  string
		input *usecase.CreateUserInput
	}{
		{name: "nil input", input: nil},
		{name: "empty username", input: &usecase.CreateUserInput{Email: "a@example.com", Password: "secret1"}},
		{name: "username too long", input: &usecase.CreateUserInput{Username: strings.Repeat("u", 21), Email: "a@example.com", Password: "secret1"}},
		{name: "invalid email", input: &usecase.CreateUserInput{Username: "alice", Email: "alice", Password: "secret1"}},
		{name: "short password", input: &usecase.CreateUserInput{Username: "alice", Email: "a@example.com", Password: "123"}},
		{name: "long password", input: &usecase.CreateUserInput{Username: "alice", Email: "a@example.com", Password: strings.Repeat("p", 51)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestUserService(t)

			_, err := fx.service.Create(context.Background(), tt.input)

			require.ErrorIs(t, err, domainerrors.ErrValidationFailed)
			fx.hasher.AssertNotCalled(t, "Hash", mock.Anything)
		})
	}
}

func TestUserService_Create_Conflict(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()
	input := validCreateInput("alice")

	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)
	fx.userRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Return(domainerrors.ErrUserAlreadyExists.WrapMessage("username or email already exists"))

	_, err := fx.service.Create(ctx, input)

	assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)
}

func TestUserService_Create_HashFailure(t *testing.T) {
	fx := createTestUserService(t)
	input := validCreateInput("alice")

	fx.hasher.EXPECT().Hash(input.Password).Return("", errors.New("bcrypt exploded"))

	_, err := fx.service.Create(context.Background(), input)

	assert.ErrorIs(t, err, domainerrors.ErrPasswordHashFailed)
}

func TestUserService_Create_HashTimeout(t *testing.T) {
	fx := createTestUserServiceWithConfig(t, newTestConfig(10*time.Millisecond))
	input := validCreateInput("alice")

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	fx.hasher.EXPECT().Hash(input.Password).RunAndReturn(func(string) (string, error) {
		<-release

		return "late", nil
	})

	_, err := fx.service.Create(context.Background(), input)

	assert.ErrorIs(t, err, domainerrors.ErrServiceUnavailable)
	fx.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_CreateMany_Success(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()
	inputs := []*usecase.CreateUserInput{validCreateInput("alice"), validCreateInput("bob")}

	fx.hasher.EXPECT().Hash(inputs[0].Password).Return("hash-alice", nil).Once()
	fx.hasher.EXPECT().Hash(inputs[1].Password).Return("hash-bob", nil).Once()

	txRepo := mockRepo.NewMockUserRepository(t)
	var nextID uint64
	txRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Run(func(_ context.Context, user *entity.User) {
			nextID++
			user.ID = nextID
		}).
		Return(nil).
		Times(2)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(_ context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			factory.EXPECT().UserRepo().Return(txRepo)

			return fn(factory)
		})

	users, err := fx.service.CreateMany(ctx, inputs)

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, uint64(1), users[0].ID)
	assert.Equal(t, "hash-alice", users[0].PasswordHash)
	assert.Equal(t, uint64(2), users[1].ID)
	assert.Equal(t, "hash-bob", users[1].PasswordHash)
}

func TestUserService_CreateMany_RollsBackOnConflict(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()
	inputs := []*usecase.CreateUserInput{validCreateInput("alice"), validCreateInput("bob")}

	fx.hasher.EXPECT().Hash(mock.Anything).Return("hash", nil).Times(2)

	txRepo := mockRepo.NewMockUserRepository(t)
	txRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.User")).Return(nil).Once()
	txRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.User")).Return(domainerrors.ErrUserAlreadyExists).Once()

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(_ context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			factory.EXPECT().UserRepo().Return(txRepo)

			return fn(factory)
		})

	users, err := fx.service.CreateMany(ctx, inputs)

	assert.Nil(t, users)
	assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)
}

func TestUserService_CreateMany_ValidatesEveryInputFirst(t *testing.T) {
	fx := createTestUserService(t)

	inputs := []*usecase.CreateUserInput{
		validCreateInput("alice"),
		{Username: "bob", Email: "not-an-email", Password: "secret1"},
	}

	_, err := fx.service.CreateMany(context.Background(), inputs)

	require.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Details(), "[1] email")
	fx.hasher.AssertNotCalled(t, "Hash", mock.Anything)
	fx.txManager.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestUserService_CreateMany_Empty(t *testing.T) {
	fx := createTestUserService(t)

	users, err := fx.service.CreateMany(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserService_FindByID(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().FindByID(ctx, uint64(1)).Return(&entity.User{ID: 1, Username: "alice"}, nil)
	fx.userRepo.EXPECT().FindByID(ctx, uint64(2)).Return(nil, repository.ErrUserNotFound)

	user, err := fx.service.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = fx.service.FindByID(ctx, 2)
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestUserService_FindByUsername_NotFound(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().FindByUsername(ctx, "ghost").Return(nil, repository.ErrUserNotFound)

	_, err := fx.service.FindByUsername(ctx, "ghost")

	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestUserService_ListAll(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().FindAll(ctx).Return([]*entity.User{{ID: 1}, {ID: 2}}, nil)

	users, err := fx.service.ListAll(ctx)

	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUserService_Update_RehashesSuppliedPassword(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	existing := &entity.User{ID: 1, Username: "alice", Email: "alice@example.com", PasswordHash: "old-hash"}
	fx.userRepo.EXPECT().FindByID(ctx, uint64(1)).Return(existing, nil)
	fx.hasher.EXPECT().Hash("new-secret").Return("new-hash", nil)
	fx.userRepo.EXPECT().
		Update(ctx, mock.MatchedBy(func(u *entity.User) bool {
			return u.PasswordHash == "new-hash" && u.Email == "alice@example.com"
		})).
		Return(nil)

	user, err := fx.service.Update(ctx, 1, &usecase.UpdateUserInput{Password: strPtr("new-secret")})

	require.NoError(t, err)
	assert.Equal(t, "new-hash", user.PasswordHash)
	assert.Equal(t, "alice", user.Username)
}

func TestUserService_Update_PartialWithoutPassword(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	existing := &entity.User{ID: 1, Username: "alice", Email: "alice@example.com", PasswordHash: "old-hash"}
	fx.userRepo.EXPECT().FindByID(ctx, uint64(1)).Return(existing, nil)
	fx.userRepo.EXPECT().Update(ctx, existing).Return(nil)

	user, err := fx.service.Update(ctx, 1, &usecase.UpdateUserInput{Email: strPtr("alice@new.example.com")})

	require.NoError(t, err)
	assert.Equal(t, "alice@new.example.com", user.Email)
	assert.Equal(t, "old-hash", user.PasswordHash)
	fx.hasher.AssertNotCalled(t, "Hash", mock.Anything)
}

func TestUserService_Update_Errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		fx := createTestUserService(t)
		ctx := context.Background()

		fx.userRepo.EXPECT().FindByID(ctx, uint64(9)).Return(nil, repository.ErrUserNotFound)

		_, err := fx.service.Update(ctx, 9, &usecase.UpdateUserInput{Email: strPtr("x@example.com")})
		assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
	})

	t.Run("invalid email", func(t *testing.T) {
		fx := createTestUserService(t)

		_, err := fx.service.Update(context.Background(), 1, &usecase.UpdateUserInput{Email: strPtr("nope")})
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	})

	t.Run("empty username", func(t *testing.T) {
		fx := createTestUserService(t)

		_, err := fx.service.Update(context.Background(), 1, &usecase.UpdateUserInput{Username: strPtr("")})
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	})

	t.Run("conflict", func(t *testing.T) {
		fx := createTestUserService(t)
		ctx := context.Background()

		fx.userRepo.EXPECT().FindByID(ctx, uint64(2)).Return(&entity.User{ID: 2, Username: "bob"}, nil)
		fx.userRepo.EXPECT().Update(ctx, mock.AnythingOfType("*entity.User")).Return(domainerrors.ErrUserAlreadyExists)

		_, err := fx.service.Update(ctx, 2, &usecase.UpdateUserInput{Username: strPtr("alice")})
		assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)
	})
}

func TestUserService_DeleteByID(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().DeleteByID(ctx, uint64(1)).Return(nil)
	fx.userRepo.EXPECT().DeleteByID(ctx, uint64(2)).Return(repository.ErrUserNotFound)

	require.NoError(t, fx.service.DeleteByID(ctx, 1))
	assert.ErrorIs(t, fx.service.DeleteByID(ctx, 2), domainerrors.ErrUserNotFound)
}

func TestUserService_DeleteAll(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().DeleteAll(ctx).Return(nil)

	require.NoError(t, fx.service.DeleteAll(ctx))
}
