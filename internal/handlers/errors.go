package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ecobazaar/internal/middleware"
	"ecobazaar/internal/service"
	"ecobazaar/internal/validation"
)

// Messages shown to the client. They follow the wording the storefront expects.
const (
	msgDuplicateEmail     = "Error: Email is already in use!"
	msgUserNotFound       = "User not found"
	msgInvalidCredentials = "Invalid Credentials"
	msgTokenInvalid       = "Invalid or already used reset token"
	msgTokenExpired       = "Reset token has expired"
	msgSendFailure        = "Failed to send reset email"
	msgProductNotFound    = "Product not found"
)

func respondError(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "fields": verrs})
	case errors.Is(err, service.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgDuplicateEmail})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgUserNotFound})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgInvalidCredentials})
	case errors.Is(err, service.ErrTokenNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgTokenInvalid})
	case errors.Is(err, service.ErrTokenExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgTokenExpired})
	case errors.Is(err, service.ErrSendFailure):
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgSendFailure})
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgProductNotFound})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, service.ErrInvalidUpload):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
	}
}

func badBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body"})
}

func identity(c *gin.Context) (service.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return id, ok
}
