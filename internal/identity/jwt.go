package identity

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims mirrors the claims minted by the hosted auth frontend.
type TokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

type jwtProvider struct {
	secretKey []byte
}

// NewJWTProvider builds a Provider that verifies HS256 bearer tokens.
func NewJWTProvider(secret string) Provider {
	return &jwtProvider{secretKey: []byte(secret)}
}

func (p *jwtProvider) Resolve(ctx context.Context, credential string) (Identity, error) {
	_ = ctx

	credential = strings.TrimSpace(credential)
	if credential == "" {
		return Identity{}, ErrMissingCredential
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(credential, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidCredential
		}
		return p.secretKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithLeeway(30*time.Second))
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidCredential
	}

	if claims.Type != "" && claims.Type != "access" {
		return Identity{}, ErrInvalidCredential
	}

	userID, err := snowflake.ParseString(strings.TrimSpace(claims.UserID))
	if err != nil || userID == 0 {
		return Identity{}, ErrInvalidCredential
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		return Identity{}, ErrInvalidCredential
	}

	return Identity{UserID: userID, Email: email}, nil
}
