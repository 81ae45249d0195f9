package models

import "github.com/golang-jwt/jwt/v5"

// Access roles, in decreasing privilege.
const (
	RoleAdmin     = "admin"
	RoleScheduler = "scheduler"
	RoleViewer    = "viewer"
)

// TokenClaims carries the authenticated principal through the request
// context. Role is one of admin|scheduler|viewer.
type TokenClaims struct {
	UserID         string `json:"uid"`
	OrganizationID string `json:"org"`
	Role           string `json:"role"`
	jwt.RegisteredClaims
}
