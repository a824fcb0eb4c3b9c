package jwtutil

import (
	"testing"

	"github.com/fgiubilesi-cpu/sgic/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTripWithOrganization(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	orgID := uint(42)
	token, err := GenerateTokenWithOrganization("auditor@example.com", 7, &orgID, "acme-quality")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "auditor@example.com", claims.Email)
	assert.Equal(t, uint(7), claims.UserID)
	require.NotNil(t, claims.OrganizationID)
	assert.Equal(t, uint(42), *claims.OrganizationID)
	assert.Equal(t, "acme-quality", claims.OrganizationSlug)
}

func TestTokenWithoutOrganization(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	token, err := GenerateToken("new-user@example.com", 3)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, claims.OrganizationID)
	assert.Empty(t, claims.OrganizationSlug)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "first-key", ExpirationHours: 1})
	token, err := GenerateToken("auditor@example.com", 7)
	require.NoError(t, err)

	Initialize(&config.JWTConfig{SigningKey: "second-key", ExpirationHours: 1})
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)
}
