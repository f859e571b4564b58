package service

import "errors"

var (
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenNotFound      = errors.New("reset token invalid")
	ErrTokenExpired       = errors.New("reset token expired")
	ErrSendFailure        = errors.New("reset email could not be sent")
	ErrProductNotFound    = errors.New("product not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidUpload      = errors.New("invalid upload")
)
