package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/camp-ops-api/internal/models"
	appErrors "github.com/noah-isme/camp-ops-api/pkg/errors"
)

// AuthConfig defines token issuance settings.
type AuthConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

var validRoles = map[string]bool{
	models.RoleAdmin:     true,
	models.RoleScheduler: true,
	models.RoleViewer:    true,
}

// AuthService issues and validates access tokens. Identity management lives
// outside this API; tokens arrive from the organization's SSO bridge or are
// minted here for service accounts.
type AuthService struct {
	config AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(config AuthConfig) *AuthService {
	if config.Expiration <= 0 {
		config.Expiration = time.Hour
	}
	return &AuthService{config: config}
}

// IssueToken mints a signed access token for a user within an organization.
func (s *AuthService) IssueToken(userID, organizationID, role string) (string, time.Time, error) {
	if userID == "" || organizationID == "" {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrValidation, "userId and organizationId are required")
	}
	if !validRoles[role] {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown role %q", role))
	}

	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.Expiration)
	claims := &models.TokenClaims{
		UserID:         userID,
		OrganizationID: organizationID,
		Role:           role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	return signed, expiresAt, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if !validRoles[claims.Role] {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unknown role in token")
	}
	return claims, nil
}
