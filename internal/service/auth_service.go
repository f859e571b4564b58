package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ecobazaar/internal/config"
	"ecobazaar/internal/ids"
	"ecobazaar/internal/mailer"
	"ecobazaar/internal/models"
	"ecobazaar/internal/repository"
	"ecobazaar/internal/security"
	"ecobazaar/internal/validation"
)

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByResetToken(ctx context.Context, tokenHash []byte) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	Save(ctx context.Context, user models.User) (models.User, error)
	SetResetToken(ctx context.Context, userID string, tokenHash []byte, expiry time.Time) error
}

type PasswordHasher interface {
	Hash(password string) ([]byte, error)
	Verify(password string, encodedHash []byte) (bool, error)
}

type AuthService struct {
	users    UserStore
	hasher   PasswordHasher
	tokens   *TokenIssuer
	sender   mailer.ResetLinkSender
	validate *validation.Validator
	security config.SecurityConfig
	now      func() time.Time
	log      zerolog.Logger
}

func NewAuthService(
	users UserStore,
	hasher PasswordHasher,
	tokens *TokenIssuer,
	sender mailer.ResetLinkSender,
	validate *validation.Validator,
	sec config.SecurityConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		sender:   sender,
		validate: validate,
		security: sec,
		now:      tokens.now,
		log:      log,
	}
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	FullName string `json:"fullName" validate:"required,min=3,max=50"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin ROLE_USER ROLE_ADMIN"`
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.FullName = strings.TrimSpace(input.FullName)
	if err := s.validate.Struct(input); err != nil {
		return models.User{}, err
	}

	exists, err := s.users.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, ErrDuplicateEmail
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Email:        input.Email,
		PasswordHash: passwordHash,
		FullName:     input.FullName,
		Role:         normalizeRole(input.Role),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return user, nil
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login checks credentials only. It creates no session; see IssueAccessToken.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (models.User, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := s.validate.Struct(input); err != nil {
		return models.User{}, err
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	ok, err := s.hasher.Verify(input.Password, user.PasswordHash)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("stored password hash unreadable")
		return models.User{}, ErrInvalidCredentials
	}
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

type AccessToken struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

func (s *AuthService) IssueAccessToken(ctx context.Context, input LoginInput) (AccessToken, error) {
	user, err := s.Login(ctx, input)
	if err != nil {
		return AccessToken{}, err
	}

	token, expiresAt, err := security.GenerateAccessToken(
		s.security.JWTAccessSecret,
		user.ID,
		user.Email,
		string(user.Role),
		s.security.JWTAccessTTL,
		s.now(),
	)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword issues a reset token and mails it. The token is stored
// before delivery is attempted and stays valid if delivery fails.
func (s *AuthService) ForgotPassword(ctx context.Context, input ForgotPasswordInput) error {
	input.Email = strings.TrimSpace(input.Email)
	if err := s.validate.Struct(input); err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	token, expiry, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return err
	}
	s.log.Info().Str("user_id", user.ID).Time("expires_at", expiry).Msg("reset token issued")

	if err := s.sender.SendResetLink(ctx, user.Email, token); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("reset link delivery failed")
		return fmt.Errorf("%w: %v", ErrSendFailure, err)
	}
	return nil
}

type ResetPasswordInput struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,password"`
}

func (s *AuthService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	if err := s.validate.Struct(input); err != nil {
		return err
	}

	user, err := s.tokens.Validate(ctx, input.Token)
	if err != nil {
		return err
	}

	passwordHash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	if _, err := s.tokens.Consume(ctx, user, passwordHash); err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset")
	return nil
}

// Authenticate resolves a bearer token to the caller's identity.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (Identity, error) {
	claims, err := security.ParseAccessToken(accessToken, s.security.JWTAccessSecret)
	if err != nil {
		return Identity{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, err
	}
	return Identity{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}

func normalizeRole(role string) models.UserRole {
	switch strings.ToLower(strings.TrimPrefix(strings.ToUpper(role), "ROLE_")) {
	case "admin":
		return models.UserRoleAdmin
	default:
		return models.UserRoleUser
	}
}
