// Package service validates access tokens minted by the external auth provider
package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the authorization level carried in an access token
type Role int

const (
	RoleUser  Role = 1
	RoleAdmin Role = 2
)

// Identity is the current user as described by a validated access token
type Identity struct {
	UserID int
	Role   Role
}

// IsAdmin reports whether the identity may use the admin endpoints
func (i Identity) IsAdmin() bool {
	return i.Role >= RoleAdmin
}

// TokenVerifier validates HS256 access tokens shared with the auth provider
type TokenVerifier struct {
	secret []byte
}

// NewTokenVerifier creates a verifier for the shared secret
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// IssueAccessToken signs an access token. The production issuer is the auth provider;
// this exists for local tooling and tests that need a token the verifier accepts.
func (v *TokenVerifier) IssueAccessToken(userID int, role Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    int(role),
		"exp":     now.Add(ttl).Unix(),
		"iat":     now.Unix(),
		"type":    "access",
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, nil
}

// Verify validates an access token and returns the identity it carries
func (v *TokenVerifier) Verify(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("token is invalid")
	}

	if tokenType, _ := claims["type"].(string); tokenType != "access" {
		return Identity{}, fmt.Errorf("token is not an access token")
	}

	// JWT numbers decode as float64
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return Identity{}, fmt.Errorf("user_id not found in token")
	}
	role, ok := claims["role"].(float64)
	if !ok {
		return Identity{}, fmt.Errorf("role not found in token")
	}

	return Identity{UserID: int(userID), Role: Role(role)}, nil
}
