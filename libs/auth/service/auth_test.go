package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "b8a3c2267dc85f855dea9b46b452bf20"

func TestTokenVerifier_IssueAndVerify(t *testing.T) {
	v := NewTokenVerifier(testSecret)

	tests := []struct {
		name    string
		userID  int
		role    Role
		isAdmin bool
	}{
		{name: "admin", userID: 7, role: RoleAdmin, isAdmin: true},
		{name: "regular user", userID: 42, role: RoleUser, isAdmin: false},
		{name: "user id zero", userID: 0, role: RoleUser, isAdmin: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := v.IssueAccessToken(tt.userID, tt.role, time.Hour)
			require.NoError(t, err)

			identity, err := v.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, identity.UserID)
			assert.Equal(t, tt.role, identity.Role)
			assert.Equal(t, tt.isAdmin, identity.IsAdmin())
		})
	}
}

func TestTokenVerifier_VerifyRejects(t *testing.T) {
	v := NewTokenVerifier(testSecret)

	sign := func(t *testing.T, claims jwt.MapClaims, secret string) string {
		t.Helper()
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return token
	}
	future := time.Now().Add(time.Hour).Unix()

	t.Run("empty token", func(t *testing.T) {
		_, err := v.Verify("")
		assert.Error(t, err)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := v.Verify("header.payload")
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := sign(t, jwt.MapClaims{"user_id": 1, "role": 2, "exp": future, "type": "access"}, "other-secret")
		_, err := v.Verify(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := v.IssueAccessToken(1, RoleAdmin, -time.Minute)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.Error(t, err)
	})

	t.Run("missing expiry", func(t *testing.T) {
		token := sign(t, jwt.MapClaims{"user_id": 1, "role": 2, "type": "access"}, testSecret)
		_, err := v.Verify(token)
		assert.Error(t, err)
	})

	t.Run("refresh token", func(t *testing.T) {
		token := sign(t, jwt.MapClaims{"user_id": 1, "role": 2, "exp": future, "type": "refresh"}, testSecret)
		_, err := v.Verify(token)
		assert.ErrorContains(t, err, "not an access token")
	})

	t.Run("missing user id", func(t *testing.T) {
		token := sign(t, jwt.MapClaims{"role": 2, "exp": future, "type": "access"}, testSecret)
		_, err := v.Verify(token)
		assert.ErrorContains(t, err, "user_id not found")
	})

	t.Run("missing role", func(t *testing.T) {
		token := sign(t, jwt.MapClaims{"user_id": 1, "exp": future, "type": "access"}, testSecret)
		_, err := v.Verify(token)
		assert.ErrorContains(t, err, "role not found")
	})

	t.Run("none signing method", func(t *testing.T) {
		claims := jwt.MapClaims{"user_id": 1, "role": 2, "exp": future, "type": "access"}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorContains(t, err, "unexpected signing method")
	})
}
