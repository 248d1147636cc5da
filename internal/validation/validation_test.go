package validation

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signUp struct {
	Username string  `json:"username" validate:"required,max=20"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6,max=50,bcryptmax"`
	Nickname *string `json:"nickname,omitempty" validate:"omitnil,min=1,max=20"`
}

func TestValidator_Rules(t *testing.T) {
	empty := ""
	tests := []struct {
		name    string
		input   signUp
		wantErr string
	}{
		{
			name:  "valid",
			input: signUp{Username: "alice", Email: "alice@example.com", Password: "secret1"},
		},
		{
			name:    "missing username",
			input:   signUp{Email: "alice@example.com", Password: "secret1"},
			wantErr: "username: is required",
		},
		{
			name:    "username too long",
			input:   signUp{Username: strings.Repeat("a", 21), Email: "alice@example.com", Password: "secret1"},
			wantErr: "username: must be at most 20 characters",
		},
		{
			name:    "bad email",
			input:   signUp{Username: "alice", Email: "not-an-email", Password: "secret1"},
			wantErr: "email: must be a valid email address",
		},
		{
			name:    "short password",
			input:   signUp{Username: "alice", Email: "alice@example.com", Password: "12345"},
			wantErr: "password: must be at least 6 characters",
		},
		{
			// 25 three-byte runes: 25 characters but 75 bytes.
			name:    "password over bcrypt limit",
			input:   signUp{Username: "alice", Email: "alice@example.com", Password: strings.Repeat("€", 25)},
			wantErr: "password: must be at most 72 bytes",
		},
		{
			name:    "supplied empty optional field",
			input:   signUp{Username: "alice", Email: "alice@example.com", Password: "secret1", Nickname: &empty},
			wantErr: "nickname: must be at least 1 characters",
		},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}
			require.Error(t, err)
			assert.Contains(t, Describe(err), tt.wantErr)
		})
	}
}

func TestDescribe_NonValidationError(t *testing.T) {
	assert.Equal(t, "boom", Describe(errors.New("boom")))
}

func TestDefault_IsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}
