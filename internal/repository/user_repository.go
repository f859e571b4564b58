package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"ecobazaar/internal/database"
	"ecobazaar/internal/models"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

const userColumns = `id, email, password_hash, full_name, role, reset_token_hash, reset_token_expiry, created_at, updated_at`

type UserRepository struct {
	db database.DB
}

func NewUserRepository(db database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	const query = `
		INSERT INTO users (
			id, email, password_hash, full_name, role, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, NOW(), NOW()
		)
	`

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Role,
	)
	if isUniqueViolation(err, "users_email_key") {
		return ErrDuplicateEmail
	}
	return err
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// FindByResetToken looks a user up by the digest of an outstanding reset
// token. Expiry is not checked here.
func (r *UserRepository) FindByResetToken(ctx context.Context, tokenHash []byte) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE reset_token_hash = $1`
	return scanUser(r.db.QueryRow(ctx, query, tokenHash))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// Save writes the mutable columns of user in a single statement, so a
// password change and the clearing of the reset token are applied together.
func (r *UserRepository) Save(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		UPDATE users
		SET password_hash = $2,
		    full_name = $3,
		    role = $4,
		    reset_token_hash = $5,
		    reset_token_expiry = $6,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	return scanUser(r.db.QueryRow(ctx, query,
		user.ID,
		user.PasswordHash,
		user.FullName,
		user.Role,
		user.ResetTokenHash,
		user.ResetTokenExpiry,
	))
}

// SetResetToken binds a new reset token to the user, replacing any earlier
// one. Other columns are left untouched.
func (r *UserRepository) SetResetToken(ctx context.Context, userID string, tokenHash []byte, expiry time.Time) error {
	const query = `
		UPDATE users
		SET reset_token_hash = $2,
		    reset_token_expiry = $3,
		    updated_at = NOW()
		WHERE id = $1
	`

	cmd, err := r.db.Exec(ctx, query, userID, tokenHash, expiry)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row rowScanner) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.Role,
		&user.ResetTokenHash,
		&user.ResetTokenExpiry,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
