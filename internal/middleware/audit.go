package middleware

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/camp-ops-api/internal/models"
	"github.com/noah-isme/camp-ops-api/internal/repository"
)

// Audit records mutating calls after they succeed. The resource id is taken
// from the route's id parameter when present.
func Audit(repo *repository.AuditRepository, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if repo == nil || c.Writer.Status() >= 400 {
			return
		}

		var userID *string
		var organizationID string
		if value, ok := c.Get(ContextUserKey); ok {
			if claims, ok := value.(*models.TokenClaims); ok {
				userID = &claims.UserID
				organizationID = claims.OrganizationID
			}
		}

		var resourceID *string
		if id := c.Param("id"); id != "" {
			resourceID = &id
		}

		detail, _ := json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		_ = repo.Create(c.Request.Context(), &models.AuditLog{
			UserID:         userID,
			OrganizationID: organizationID,
			Action:         action,
			Resource:       resource,
			ResourceID:     resourceID,
			Detail:         detail,
			IPAddress:      c.ClientIP(),
			UserAgent:      c.GetHeader("User-Agent"),
		})
	}
}
