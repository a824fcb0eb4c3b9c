package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/fgiubilesi-cpu/sgic/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

var jwtConfig *config.JWTConfig

// TenantClaims extends the registered claims with user and tenant context.
// OrganizationID is nil for users whose profile is not linked to a tenant.
type TenantClaims struct {
	Email            string `json:"email"`
	UserID           uint   `json:"user_id"`
	OrganizationID   *uint  `json:"organization_id,omitempty"`
	OrganizationSlug string `json:"organization_slug,omitempty"`
	jwt.RegisteredClaims
}

// Initialize sets up the JWT utility with configuration
func Initialize(cfg *config.JWTConfig) {
	jwtConfig = cfg
}

// GenerateToken creates a new JWT token for a user without tenant context
func GenerateToken(email string, userID uint) (string, error) {
	return generateTokenWithClaims(email, userID, nil, "")
}

// GenerateTokenWithOrganization creates a new JWT token with tenant context
func GenerateTokenWithOrganization(email string, userID uint, organizationID *uint, organizationSlug string) (string, error) {
	return generateTokenWithClaims(email, userID, organizationID, organizationSlug)
}

func generateTokenWithClaims(email string, userID uint, organizationID *uint, organizationSlug string) (string, error) {
	if jwtConfig == nil {
		return "", errors.New("JWT configuration not initialized")
	}

	claims := &TenantClaims{
		Email:            email,
		UserID:           userID,
		OrganizationID:   organizationID,
		OrganizationSlug: organizationSlug,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(jwtConfig.ExpirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtConfig.SigningKey))
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*TenantClaims, error) {
	if jwtConfig == nil {
		return nil, errors.New("JWT configuration not initialized")
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&TenantClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtConfig.SigningKey), nil
		},
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*TenantClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
