package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"usersvc/config"
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

// authService implements the AuthUsecase interface. It holds no per-call state.
type authService struct {
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	validate     *validator.Validate
	hashTimeout  time.Duration
	logger       *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// dummyPassword is hashed once so unknown usernames pay the same bcrypt cost as wrong passwords.
const dummyPassword = "usersvc-dummy-password"

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		validate:     validation.Default(),
		hashTimeout:  hashTimeoutFrom(params.Config),
		logger:       params.Logger,
	}
}

func (srv *authService) log(ctx context.Context) *slog.Logger {
	return logs.FromContext(ctx, srv.logger)
}

// SignIn looks the user up, verifies the password and issues an access token.
// An unknown username and a wrong password both end in ErrInvalidCredentials.
func (srv *authService) SignIn(ctx context.Context, input *usecase.SignInInput) (*usecase.SignInOutput, error) {
	if input == nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("request body is required")
	}
	if err := srv.validate.Struct(input); err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails(validation.Describe(err))
	}

	user, err := srv.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.burnCheck(ctx, input.Password)
			srv.log(ctx).Info("Sign-in rejected")

			return nil, domainerrors.ErrInvalidCredentials
		}

		return nil, errors.Wrap(err, "failed to find user for sign-in")
	}

	ok, err := runBounded(ctx, srv.hashTimeout, "password verification", func() (bool, error) {
		return srv.hasher.Check(input.Password, user.PasswordHash)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrServiceUnavailable) {
			return nil, err
		}
		srv.log(ctx).Error("Stored password hash is unusable", slog.Uint64("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrInternalError, "failed to verify password")
	}
	if !ok {
		srv.log(ctx).Info("Sign-in rejected")

		return nil, domainerrors.ErrInvalidCredentials
	}

	token, err := srv.tokenService.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		srv.log(ctx).Error("Failed to sign access token", slog.Uint64("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrInternalError, "failed to issue access token")
	}

	srv.log(ctx).Info("User signed in", slog.Uint64("userID", user.ID))

	return &usecase.SignInOutput{AccessToken: token}, nil
}

// burnCheck runs a password check against a throwaway hash. The outcome is ignored.
func (srv *authService) burnCheck(ctx context.Context, password string) {
	srv.dummyOnce.Do(func() {
		hash, err := srv.hasher.Hash(dummyPassword)
		if err != nil {
			srv.log(ctx).Warn("Failed to prepare dummy password hash", slog.Any("error", err))

			return
		}
		srv.dummyHash = hash
	})
	if srv.dummyHash == "" {
		return
	}

	_, _ = runBounded(ctx, srv.hashTimeout, "password verification", func() (bool, error) {
		return srv.hasher.Check(password, srv.dummyHash)
	})
}
