package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecobazaar/internal/models"
	"ecobazaar/internal/repository"
)

func TestTokenIssuerDefaults(t *testing.T) {
	issuer := NewTokenIssuer(newMemoryUsers(), 0, nil)
	assert.Equal(t, DefaultResetTokenTTL, issuer.ttl)
	assert.NotNil(t, issuer.now)
}

func TestTokenIssuerIssueValidateConsume(t *testing.T) {
	users := newMemoryUsers()
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	issuer := NewTokenIssuer(users, 15*time.Minute, clock.Now)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, models.User{ID: "u1", Email: "a@x.com", PasswordHash: []byte("old")}))
	user, _ := users.GetByID(ctx, "u1")

	token, expiry, err := issuer.Issue(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, clock.t.Add(15*time.Minute), expiry)

	found, err := issuer.Validate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", found.ID)

	// validation alone changes nothing
	again, err := issuer.Validate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, found.ResetTokenHash, again.ResetTokenHash)

	saved, err := issuer.Consume(ctx, found, []byte("new"))
	require.NoError(t, err)
	assert.False(t, saved.HasResetToken())
	assert.Equal(t, []byte("new"), saved.PasswordHash)

	_, err = issuer.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenIssuerEmptyToken(t *testing.T) {
	issuer := NewTokenIssuer(newMemoryUsers(), time.Minute, nil)
	_, err := issuer.Validate(context.Background(), "")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenIssuerIssueStoreFailure(t *testing.T) {
	users := newMemoryUsers()
	users.saveErr = errors.New("db down")
	issuer := NewTokenIssuer(users, time.Minute, nil)

	_, _, err := issuer.Issue(context.Background(), models.User{ID: "u1"})
	assert.ErrorContains(t, err, "db down")
}

func TestTokenIssuerIssueKeepsNewerPassword(t *testing.T) {
	users := newMemoryUsers()
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	issuer := NewTokenIssuer(users, 15*time.Minute, clock.Now)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, models.User{ID: "u1", Email: "a@x.com", PasswordHash: []byte("old")}))
	// a forgot-password request read the user before the reset below committed
	stale, _ := users.GetByID(ctx, "u1")

	token, _, err := issuer.Issue(ctx, stale)
	require.NoError(t, err)
	found, err := issuer.Validate(ctx, token)
	require.NoError(t, err)
	_, err = issuer.Consume(ctx, found, []byte("new"))
	require.NoError(t, err)

	second, _, err := issuer.Issue(ctx, stale)
	require.NoError(t, err)

	current, _ := users.GetByID(ctx, "u1")
	assert.Equal(t, []byte("new"), current.PasswordHash)

	_, err = issuer.Validate(ctx, second)
	assert.NoError(t, err)
}

func TestTokenIssuerIssueUnknownUser(t *testing.T) {
	issuer := NewTokenIssuer(newMemoryUsers(), time.Minute, nil)

	_, _, err := issuer.Issue(context.Background(), models.User{ID: "ghost"})
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
