package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/case-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/case-dashboard-api/pkg/errors"
)

const tokenIssuer = "case-dashboard"

// AuthConfig holds the HMAC secret for operator tokens.
type AuthConfig struct {
	Secret string
	TTL    time.Duration
}

// AuthService issues and validates operator tokens guarding admin routes.
type AuthService struct {
	config AuthConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(config AuthConfig, logger *zap.Logger) *AuthService {
	if config.TTL <= 0 {
		config.TTL = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{config: config, logger: logger, now: time.Now}
}

// IssueToken signs an admin token for subject.
func (s *AuthService) IssueToken(subject string, ttl time.Duration) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "subject is required")
	}
	if ttl <= 0 {
		ttl = s.config.TTL
	}
	now := s.now()
	claims := models.OperatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Scope: models.ScopeAdmin,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	s.logger.Info("operator token issued", zap.String("subject", subject), zap.Duration("ttl", ttl))
	return signed, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.OperatorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.OperatorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.OperatorClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.Scope != models.ScopeAdmin {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token lacks admin scope")
	}

	return claims, nil
}
