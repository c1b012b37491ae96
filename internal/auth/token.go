package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/deskhub/internal/model"
)

const (
	// TokenTypeAccess はアクセストークンを示す。
	TokenTypeAccess = "access"
	// TokenTypeRefresh はリフレッシュトークンを示す。
	TokenTypeRefresh = "refresh"
)

// TokenClaims はアクセス・リフレッシュトークンのJWTクレーム。
type TokenClaims struct {
	UserID    string `json:"uid"`
	Email     string `json:"email"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService はフラグメント型リダイレクトで使用するトークンペアの発行と検証を行う。
// HMAC-SHA256で署名し、アクセストークンとリフレッシュトークンを種別クレームで区別する。
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService はTokenServiceを生成する。
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueTokenPair はユーザーに対するアクセス・リフレッシュトークンの組を発行する。
func (s *TokenService) IssueTokenPair(user *model.User) (*model.TokenPair, error) {
	access, err := s.issue(user, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh, err := s.issue(user, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Verify はトークンを検証し、署名・有効期限・種別が正しい場合にクレームを返す。
func (s *TokenService) Verify(tokenString, wantType string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("unexpected token type: %s (want %s)", claims.TokenType, wantType)
	}

	return claims, nil
}

// issue は指定種別・有効期間のトークンを1つ発行する。
func (s *TokenService) issue(user *model.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &TokenClaims{
		UserID:    user.ID,
		Email:     user.Email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
