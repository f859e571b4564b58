package models

import "time"

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	ID               string
	Email            string
	PasswordHash     []byte
	FullName         string
	Role             UserRole
	ResetTokenHash   []byte
	ResetTokenExpiry *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasResetToken reports whether a reset request is outstanding.
func (u User) HasResetToken() bool {
	return len(u.ResetTokenHash) > 0 && u.ResetTokenExpiry != nil
}

// WithResetToken returns a copy of u bound to a new reset token. Any earlier
// token is replaced.
func (u User) WithResetToken(tokenHash []byte, expiry time.Time) User {
	u.ResetTokenHash = append([]byte(nil), tokenHash...)
	u.ResetTokenExpiry = &expiry
	return u
}

// WithPassword returns a copy of u with the password replaced and the reset
// token cleared, so both land in the same write.
func (u User) WithPassword(passwordHash []byte) User {
	u.PasswordHash = append([]byte(nil), passwordHash...)
	u.ResetTokenHash = nil
	u.ResetTokenExpiry = nil
	return u
}
