package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/case-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/case-dashboard-api/pkg/errors"
)

func TestAuthServiceIssueAndValidate(t *testing.T) {
	svc := NewAuthService(AuthConfig{Secret: "test-secret"}, nil)

	token, err := svc.IssueToken("ops@example.com", time.Minute)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Subject)
	assert.Equal(t, models.ScopeAdmin, claims.Scope)
	assert.NotEmpty(t, claims.ID)
}

func TestAuthServiceRejectsBadTokens(t *testing.T) {
	svc := NewAuthService(AuthConfig{Secret: "test-secret"}, nil)
	other := NewAuthService(AuthConfig{Secret: "other-secret"}, nil)

	foreign, err := other.IssueToken("ops", time.Minute)
	require.NoError(t, err)
	_, err = svc.ValidateToken(foreign)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	past := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return past }
	expired, err := svc.IssueToken("ops", time.Minute)
	require.NoError(t, err)
	svc.now = time.Now
	_, err = svc.ValidateToken(expired)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	_, err = svc.ValidateToken("not-a-token")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	_, err = svc.IssueToken("  ", time.Minute)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestAuthServiceRequiresAdminScope(t *testing.T) {
	svc := NewAuthService(AuthConfig{Secret: "test-secret"}, nil)
	claims := models.OperatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   "viewer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		Scope: "dashboard:read",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "admin scope")
}
