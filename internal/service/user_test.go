package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)

	user, err := f.userService.Register("bob@example.com", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "hunter2", user.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.userService.Register("", "hunter2")
	assert.ErrorIs(t, err, ErrMissingEmail)

	_, err = f.userService.Register("bob@example.com", "")
	assert.ErrorIs(t, err, ErrMissingPassword)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.registerUser(t, "bob@example.com")

	_, err := f.userService.Register("bob@example.com", "other")
	assert.ErrorIs(t, err, ErrEmailTaken)
}
