package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ecobazaar/internal/service"
)

type loginResponse struct {
	Message string `json:"message"`
	Role    string `json:"role"`
	Name    string `json:"name"`
}

type tokenResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Role        string    `json:"role"`
	Name        string    `json:"name"`
}

func (h HandlerSet) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	if _, err := h.auth.Register(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User registered successfully!"})
}

func (h HandlerSet) Login(c *gin.Context) {
	var req service.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Message: "Login Successful",
		Role:    string(user.Role),
		Name:    user.FullName,
	})
}

func (h HandlerSet) Token(c *gin.Context) {
	var req service.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	tok, err := h.auth.IssueAccessToken(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: tok.Token,
		ExpiresAt:   tok.ExpiresAt,
		Role:        string(tok.User.Role),
		Name:        tok.User.FullName,
	})
}

func (h HandlerSet) ForgotPassword(c *gin.Context) {
	var req service.ForgotPasswordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	if err := h.auth.ForgotPassword(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset link sent to your email"})
}

func (h HandlerSet) ResetPassword(c *gin.Context) {
	var req service.ResetPasswordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset successfully"})
}
