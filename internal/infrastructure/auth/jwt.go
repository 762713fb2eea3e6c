package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/stayops/backend/internal/domain/ledger"
	"github.com/stayops/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrExpiredToken      = errors.New("token has expired")
	ErrInvalidClaims     = errors.New("invalid token claims")
	ErrTokenNotYetValid  = errors.New("token is not yet valid")
	ErrMissingPropertyID = errors.New("missing property_id in claims")
	ErrMissingUserID     = errors.New("missing user_id in claims")
)

// Claims represents the token issued by the identity collaborator. Besides
// the actor and property it may carry an explicit invoice allowlist; an
// absent list means the actor may act on all of the property's invoices.
type Claims struct {
	jwt.RegisteredClaims
	PropertyID string   `json:"property_id"`
	UserID     string   `json:"user_id"`
	Username   string   `json:"username"`
	InvoiceIDs []string `json:"invoice_ids,omitempty"`
}

// GetPropertyUUID extracts and parses the property ID from claims
func (c *Claims) GetPropertyUUID() (uuid.UUID, error) {
	return uuid.Parse(c.PropertyID)
}

// GetUserUUID extracts and parses the user ID from claims
func (c *Claims) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// ToAccessScope resolves the claims into the capability object every
// ledger operation takes
func (c *Claims) ToAccessScope() (ledger.AccessScope, error) {
	propertyID, err := c.GetPropertyUUID()
	if err != nil {
		return ledger.AccessScope{}, ErrInvalidClaims
	}
	userID, err := c.GetUserUUID()
	if err != nil {
		return ledger.AccessScope{}, ErrInvalidClaims
	}

	scope := ledger.NewAccessScope(userID, propertyID)
	if c.InvoiceIDs == nil {
		return scope, nil
	}

	allowed := make([]uuid.UUID, 0, len(c.InvoiceIDs))
	for _, raw := range c.InvoiceIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return ledger.AccessScope{}, ErrInvalidClaims
		}
		allowed = append(allowed, id)
	}
	return scope.Restrict(allowed), nil
}

// JWTService handles JWT token operations
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.Expiration,
		issuer:     cfg.Issuer,
	}
}

// GenerateTokenInput contains input for token generation
type GenerateTokenInput struct {
	PropertyID uuid.UUID
	UserID     uuid.UUID
	Username   string
	InvoiceIDs []uuid.UUID
}

// GenerateToken generates a signed access token
func (s *JWTService) GenerateToken(input GenerateTokenInput) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiration)

	var invoiceIDs []string
	if input.InvoiceIDs != nil {
		invoiceIDs = make([]string, len(input.InvoiceIDs))
		for i, id := range input.InvoiceIDs {
			invoiceIDs[i] = id.String()
		}
	}

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   input.UserID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		PropertyID: input.PropertyID.String(),
		UserID:     input.UserID.String(),
		Username:   input.Username,
		InvoiceIDs: invoiceIDs,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken validates a token and returns its claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	if claims.PropertyID == "" {
		return nil, ErrMissingPropertyID
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}

	return claims, nil
}
