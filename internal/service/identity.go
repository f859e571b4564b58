package service

import "ecobazaar/internal/models"

// Identity is the authenticated caller, resolved once per request.
type Identity struct {
	UserID string
	Email  string
	Role   models.UserRole
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.UserRoleAdmin
}
