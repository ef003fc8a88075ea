package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/config"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

type JWTCustomClaims struct {
	UserID    uint            `json:"user_id"`
	Username  string          `json:"username"`
	Role      models.UserRole `json:"role"`
	TokenType string          `json:"token_type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func IssueTokens(cfg *config.Config, user *models.User) (TokenPair, error) {
	access, err := GenerateToken(cfg.JWTSecret, user, TokenAccess, cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := GenerateToken(cfg.JWTSecret, user, TokenRefresh, cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// The role claim is informational; requests re-resolve the role from the store.
func GenerateToken(secret string, user *models.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &JWTCustomClaims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      ResolveRole(user),
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(secret, tokenStr, wantType string) (*JWTCustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token: %w", err)
	}

	claims, ok := token.Claims.(*JWTCustomClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("expected %s token, got %q", wantType, claims.TokenType)
	}
	return claims, nil
}
