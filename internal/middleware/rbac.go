package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/camp-ops-api/internal/models"
	appErrors "github.com/noah-isme/camp-ops-api/pkg/errors"
	"github.com/noah-isme/camp-ops-api/pkg/response"
)

// RBAC enforces role-based access control for routes. Roles are the flat
// admin|scheduler|viewer set carried in the token.
func RBAC(allowed ...string) gin.HandlerFunc {
	allowedRoles := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		allowedRoles[role] = struct{}{}
	}
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.TokenClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// Writers allows the roles permitted to mutate schedules.
func Writers() gin.HandlerFunc {
	return RBAC(models.RoleAdmin, models.RoleScheduler)
}

// Readers allows any authenticated role.
func Readers() gin.HandlerFunc {
	return RBAC(models.RoleAdmin, models.RoleScheduler, models.RoleViewer)
}
