package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayops/backend/internal/infrastructure/config"
)

func testService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:     "0123456789abcdef0123456789abcdef",
		Expiration: time.Hour,
		Issuer:     "stayops-ledger",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := testService()
	propertyID := uuid.New()
	userID := uuid.New()

	token, expiresAt, err := svc.GenerateToken(GenerateTokenInput{
		PropertyID: propertyID,
		UserID:     userID,
		Username:   "frontdesk",
	})
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, propertyID.String(), claims.PropertyID)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "frontdesk", claims.Username)
}

func TestValidateTokenErrors(t *testing.T) {
	svc := testService()

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:     "another-secret-another-secret-00",
			Expiration: time.Hour,
			Issuer:     "stayops-ledger",
		})
		token, _, err := other.GenerateToken(GenerateTokenInput{
			PropertyID: uuid.New(),
			UserID:     uuid.New(),
		})
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		short := NewJWTService(config.JWTConfig{
			Secret:     "0123456789abcdef0123456789abcdef",
			Expiration: -time.Minute,
			Issuer:     "stayops-ledger",
		})
		token, _, err := short.GenerateToken(GenerateTokenInput{
			PropertyID: uuid.New(),
			UserID:     uuid.New(),
		})
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestToAccessScope(t *testing.T) {
	svc := testService()
	propertyID := uuid.New()
	userID := uuid.New()

	t.Run("no allowlist means unrestricted", func(t *testing.T) {
		token, _, err := svc.GenerateToken(GenerateTokenInput{
			PropertyID: propertyID,
			UserID:     userID,
		})
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)

		scope, err := claims.ToAccessScope()
		require.NoError(t, err)
		assert.Equal(t, propertyID, scope.PropertyID)
		assert.Equal(t, userID, scope.ActorID)
		assert.True(t, scope.CanAccessInvoice(uuid.New()))
	})

	t.Run("allowlist restricts scope", func(t *testing.T) {
		allowed := uuid.New()
		token, _, err := svc.GenerateToken(GenerateTokenInput{
			PropertyID: propertyID,
			UserID:     userID,
			InvoiceIDs: []uuid.UUID{allowed},
		})
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)

		scope, err := claims.ToAccessScope()
		require.NoError(t, err)
		assert.True(t, scope.CanAccessInvoice(allowed))
		assert.False(t, scope.CanAccessInvoice(uuid.New()))
	})
}
