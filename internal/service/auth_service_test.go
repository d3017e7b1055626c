package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginRefreshLogout(t *testing.T) {
	f := newFixture(t)
	auth := f.svc.Auth

	user, access, refresh, err := auth.Register(f.ctx, "Ada Lovelace", "ada", "Ada@Example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEqual(t, "correct horse", user.Password)
	assert.NotEmpty(t, refresh)

	token, err := auth.ValidateToken(access)
	require.NoError(t, err)
	sub, err := auth.GetUserIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, sub)

	_, _, _, err = auth.Login(f.ctx, "ada@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, _, loginRefresh, err := auth.Login(f.ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	_, rotated, err := auth.RefreshToken(f.ctx, loginRefresh)
	require.NoError(t, err)
	assert.NotEqual(t, loginRefresh, rotated)

	// The presented token is consumed.
	_, _, err = auth.RefreshToken(f.ctx, loginRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, auth.Logout(f.ctx, rotated))
	_, _, err = auth.RefreshToken(f.ctx, rotated)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	auth := f.svc.Auth

	_, _, _, err := auth.Register(f.ctx, "Ada", "ada", "ada@example.com", "secret-pass")
	require.NoError(t, err)

	tests := []struct {
		name, fullName, username, email, password string
		wantErr                                   error
	}{
		{"short password", "Bob", "bob", "bob@example.com", "short", ErrInvalidInput},
		{"bad email", "Bob", "bob", "not-an-email", "secret-pass", ErrInvalidInput},
		{"missing username", "Bob", "", "bob@example.com", "secret-pass", ErrInvalidInput},
		{"duplicate email", "Bob", "bob", "ada@example.com", "secret-pass", ErrUserExists},
		{"duplicate username", "Bob", "ada", "bob@example.com", "secret-pass", ErrUserExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := auth.Register(f.ctx, tt.fullName, tt.username, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	f := newFixture(t)
	_, access, _, err := f.svc.Auth.Register(f.ctx, "Ada", "ada", "ada@example.com", "secret-pass")
	require.NoError(t, err)

	other := testConfig()
	other.JWTSecret = "another-secret"
	foreign := NewAuthService(other, f.repos.UserRepo)

	_, err = foreign.ValidateToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = f.svc.Auth.ValidateToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
