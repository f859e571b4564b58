package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecobazaar/internal/models"
	"ecobazaar/internal/repository"
	"ecobazaar/internal/security"
)

const DefaultResetTokenTTL = 15 * time.Minute

// TokenIssuer binds single-use reset tokens to users. Only the SHA-256 digest
// of a token is stored. Expiry is checked when a token is presented; nothing
// sweeps expired tokens.
type TokenIssuer struct {
	users UserStore
	ttl   time.Duration
	now   func() time.Time
}

func NewTokenIssuer(users UserStore, ttl time.Duration, now func() time.Time) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{users: users, ttl: ttl, now: now}
}

// Issue replaces any outstanding token of user with a fresh one. Only the
// token columns are written, so a stale copy of user cannot roll back a
// password changed in the meantime.
func (i *TokenIssuer) Issue(ctx context.Context, user models.User) (string, time.Time, error) {
	token, digest, err := security.GenerateResetToken()
	if err != nil {
		return "", time.Time{}, err
	}

	expiry := i.now().Add(i.ttl)
	if err := i.users.SetResetToken(ctx, user.ID, digest, expiry); err != nil {
		return "", time.Time{}, fmt.Errorf("store reset token: %w", err)
	}
	return token, expiry, nil
}

// Validate resolves token to its user without changing anything. A token is
// usable strictly before its expiry.
func (i *TokenIssuer) Validate(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, ErrTokenNotFound
	}

	user, err := i.users.FindByResetToken(ctx, security.HashResetToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrTokenNotFound
		}
		return models.User{}, err
	}
	if !user.HasResetToken() {
		return models.User{}, ErrTokenNotFound
	}
	if !i.now().Before(*user.ResetTokenExpiry) {
		return models.User{}, ErrTokenExpired
	}
	return user, nil
}

// Consume stores the new password hash and retires the token in one write.
func (i *TokenIssuer) Consume(ctx context.Context, user models.User, passwordHash []byte) (models.User, error) {
	saved, err := i.users.Save(ctx, user.WithPassword(passwordHash))
	if err != nil {
		return models.User{}, fmt.Errorf("store new password: %w", err)
	}
	return saved, nil
}
