package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectAndResolve(t *testing.T) {
	f := newFixture(t)
	user := f.registerUser(t, "bob@example.com")

	token, err := f.authService.Connect("bob@example.com", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := f.authService.UserID(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	resolved, err := f.authService.User(token)
	require.NoError(t, err)
	assert.Equal(t, user.Email, resolved.Email)
}

func TestConnectRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	f.registerUser(t, "bob@example.com")

	_, err := f.authService.Connect("bob@example.com", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.authService.Connect("nobody@example.com", "hunter2")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestDisconnectRevokes(t *testing.T) {
	f := newFixture(t)
	f.registerUser(t, "bob@example.com")

	token, err := f.authService.Connect("bob@example.com", "hunter2")
	require.NoError(t, err)

	require.NoError(t, f.authService.Disconnect(token))

	_, err = f.authService.UserID(token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Revoking twice fails like an unknown token.
	assert.ErrorIs(t, f.authService.Disconnect(token), ErrUnauthorized)
}

func TestEmptyTokenIsUnauthorized(t *testing.T) {
	f := newFixture(t)

	_, err := f.authService.UserID("")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
