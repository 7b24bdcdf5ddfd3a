package utils

import (
	"testing"

	"github.com/questforge/questforge-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	config.AppConfig = &config.Config{JWTSecret: "test-secret"}

	token, err := GenerateToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.AdventurerID)
	assert.Equal(t, "questforge-backend", claims.Issuer)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	config.AppConfig = &config.Config{JWTSecret: "test-secret"}
	token, err := GenerateToken(42)
	require.NoError(t, err)

	config.AppConfig.JWTSecret = "different-secret"
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	config.AppConfig = &config.Config{JWTSecret: "test-secret"}
	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "onboarding-trail", Slugify("Onboarding Trail"))
	assert.Equal(t, "kilo-xp", Slugify("Kilo-XP"))
	assert.Equal(t, "legend-of-the-forge", Slugify("Legend of the Forge"))
}
