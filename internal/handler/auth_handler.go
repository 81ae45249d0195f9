package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/camp-ops-api/internal/service"
	appErrors "github.com/noah-isme/camp-ops-api/pkg/errors"
	"github.com/noah-isme/camp-ops-api/pkg/response"
)

// AuthHandler mints scoped service tokens and reports the caller identity.
// There is no login flow; operators bootstrap with a token issued out of
// band and mint narrower tokens from there.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs the auth handler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// IssueToken godoc
// @Summary Mint a scoped access token
// @Description Issue a JWT for a user within an organization; admin only
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body object true "Token request"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /auth/tokens [post]
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req struct {
		UserID         string `json:"userId" binding:"required"`
		OrganizationID string `json:"organizationId" binding:"required"`
		Role           string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid token payload"))
		return
	}

	token, expiresAt, err := h.auth.IssueToken(req.UserID, req.OrganizationID, req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"accessToken": token,
		"expiresAt":   expiresAt,
	}, nil)
}

// Me godoc
// @Summary Current principal
// @Description Returns the claims of the presented token
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"userId":         claims.UserID,
		"organizationId": claims.OrganizationID,
		"role":           claims.Role,
	}, nil)
}
