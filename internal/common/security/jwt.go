package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todo_api/internal/common"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

const (
	claimUserID = "user_id"
	claimRole   = "role"
)

// Claims is the identity a verified token binds.
type Claims struct {
	SubjectID string
	Role      string
}

// TokenIssuer mints and verifies HS256 tokens with a fixed lifetime.
type TokenIssuer struct {
	auth   *jwtauth.JWTAuth
	expiry time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret []byte, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{
		auth:   jwtauth.New("HS256", secret, nil),
		expiry: expiry,
		now:    time.Now,
	}
}

// JWTAuth exposes the underlying verifier for jwtauth middleware.
func (t *TokenIssuer) JWTAuth() *jwtauth.JWTAuth {
	return t.auth
}

func (t *TokenIssuer) Issue(subjectID, role string) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		claimUserID: subjectID,
		claimRole:   role,
		"exp":       now.Add(t.expiry).Unix(),
		"iat":       now.Unix(),
	}
	_, tokenString, err := t.auth.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks signature and expiry. Every failure wraps common.ErrInvalidToken.
func (t *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	token, err := jwtauth.VerifyToken(t.auth, tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	raw, err := token.AsMap(context.Background())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	return ClaimsFromMap(raw)
}

// ClaimsFromMap reads the identity claims from a decoded claim set.
func ClaimsFromMap(claims jwt.MapClaims) (*Claims, error) {
	id, err := GetUserIDFromClaims(claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	role, err := GetUserRoleFromClaims(claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	return &Claims{SubjectID: id, Role: role}, nil
}

func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims[claimUserID].(string)
	if !ok || id == "" {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}

func GetUserRoleFromClaims(claims jwt.MapClaims) (string, error) {
	role, ok := claims[claimRole].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}
