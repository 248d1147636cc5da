package usecase

import "context"

// SignInInput defines the credentials presented at sign-in.
type SignInInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignInOutput returns the issued access token.
type SignInOutput struct {
	AccessToken string `json:"accessToken"`
}

// AuthUsecase verifies credentials and issues tokens.
type AuthUsecase interface {
	// SignIn returns ErrInvalidCredentials for an unknown username and for a wrong
	// password alike.
	SignIn(ctx context.Context, input *SignInInput) (*SignInOutput, error)
}
