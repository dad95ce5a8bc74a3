package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Pesokrava/storefront/internal/config"
)

var signingMethod = jwt.SigningMethodHS256

// Identity is the authenticated caller extracted from a token
type Identity struct {
	UserID uuid.UUID
	Role   string
}

// IsAdmin reports whether the caller holds the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == "admin"
}

// Claims is the JWT payload issued by the identity provider
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// MintToken signs a token for the identity; used by tooling and tests
func MintToken(cfg config.AuthConfig, now time.Time, ttl time.Duration, id Identity) (string, error) {
	if cfg.JWTSecret == "" {
		return "", errors.New("jwt secret is required")
	}
	claims := Claims{
		Role: id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			Issuer:    cfg.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseToken validates the token string and returns the caller identity
func ParseToken(cfg config.AuthConfig, tokenString string) (Identity, error) {
	if cfg.JWTSecret == "" {
		return Identity{}, errors.New("jwt secret is required")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != signingMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(cfg.JWTIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid subject: %w", err)
	}

	role := claims.Role
	if role == "" {
		role = "customer"
	}
	return Identity{UserID: userID, Role: role}, nil
}
