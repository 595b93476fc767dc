package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/legalease-app/backend/internal/core/domain"
)

const (
	tokenIssuer = "legalease"

	useAccess  = "access"
	useRefresh = "refresh"
)

type claims struct {
	Username string `json:"username,omitempty"`
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies stateless HS256 token pairs. Refresh
// tokens are plain JWTs with a longer TTL and a distinct token_use claim,
// so an access token can never be replayed as a refresh token.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("auth: jwt secret is required")
	}
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

func (m *TokenManager) Issue(user *domain.User) (*domain.TokenPair, error) {
	now := time.Now().UTC()

	access, err := m.sign(user, useAccess, now, m.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := m.sign(user, useRefresh, now, m.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(m.accessTTL.Seconds()),
	}, nil
}

func (m *TokenManager) VerifyAccess(token string) (string, error) {
	return m.verify(token, useAccess)
}

func (m *TokenManager) VerifyRefresh(token string) (string, error) {
	return m.verify(token, useRefresh)
}

func (m *TokenManager) AccessTTL() time.Duration {
	return m.accessTTL
}

func (m *TokenManager) sign(user *domain.User, use string, now time.Time, ttl time.Duration) (string, error) {
	c := claims{
		Username: user.Username,
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}

func (m *TokenManager) verify(token, use string) (string, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", domain.WrapError(domain.ErrUnauthorized, "verify token", err)
	}
	if !parsed.Valid || c.Subject == "" {
		return "", domain.WrapError(domain.ErrUnauthorized, "verify token", errors.New("invalid claims"))
	}
	if c.TokenUse != use {
		return "", domain.WrapError(domain.ErrUnauthorized, "verify token", fmt.Errorf("token_use %q, want %q", c.TokenUse, use))
	}
	return c.Subject, nil
}
