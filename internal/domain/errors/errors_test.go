package errors

import (
	"net/http"
	"testing"

	"usersvc/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestBaseError_WithDetailsStillMatchesSentinel(t *testing.T) {
	detailed := ErrValidationFailed.WithDetails("email: must be a valid email address")

	assert.True(t, errors.Is(detailed, ErrValidationFailed))
	assert.False(t, errors.Is(detailed, ErrUserAlreadyExists))
	assert.Equal(t, "email: must be a valid email address", detailed.Details())
	assert.Empty(t, ErrValidationFailed.Details())
}

func TestBaseError_WrapMessageKeepsAppError(t *testing.T) {
	err := ErrUserAlreadyExists.WrapMessage("create user")

	var appErr AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusConflict, appErr.HTTPCode())
	assert.Equal(t, "USER_ALREADY_EXISTS", appErr.ErrorCode())
	assert.True(t, errors.Is(err, ErrUserAlreadyExists))
}

func TestDatabaseExecuteError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewDatabaseExecuteError(cause, "failed to list users")

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, http.StatusInternalServerError, err.HTTPCode())
	assert.Contains(t, err.Error(), "database execution failed")
	assert.Equal(t, "failed to list users", err.Details())
}
