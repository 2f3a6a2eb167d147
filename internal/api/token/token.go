// Package token contains utilities for http tokens.
package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/matt-dz/recetario/internal/env"
	"github.com/matt-dz/recetario/internal/jwt"
)

const (
	AuthorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
	accessTokenLifetime = int(jwt.JWTDuration / time.Second)
)

var (
	ErrMissingToken       = errors.New("no access token provided")
	ErrMalformedBearer    = errors.New("malformed authorization header")
	ErrMissingSecret      = errors.New("app secret not configured")
	ErrUserIDNotInContext = errors.New("user id not found in context")
	ErrClaimsNotInContext = errors.New("claims not found in context")
)

func AccessTokenName(e *env.Env) string {
	if e.Production() {
		return "__Host-Http-access"
	}
	return "access"
}

func NewAccessToken(params jwt.JWTParams, e *env.Env) (string, error) {
	secret := e.AppSecret()
	if len(secret) == 0 {
		return "", ErrMissingSecret
	}
	version := e.AppSecretVersion()
	if version == "" {
		version = jwt.DefaultKID
	}
	token, err := jwt.GenerateJWT(params, secret, version)
	if err != nil {
		return "", fmt.Errorf("generating access token: %w", err)
	}
	return token, nil
}

func NewAccessTokenCookie(token string, e *env.Env) *http.Cookie {
	return &http.Cookie{
		Name:     AccessTokenName(e),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   accessTokenLifetime,
		SameSite: http.SameSiteLaxMode,
		Secure:   e.Production(),
	}
}

// ClearAccessTokenCookie expires the access token cookie.
func ClearAccessTokenCookie(e *env.Env) *http.Cookie {
	c := NewAccessTokenCookie("", e)
	c.MaxAge = -1
	return c
}

// ExtractAccessToken returns the access token from the cookie, falling
// back to a bearer Authorization header.
func ExtractAccessToken(r *http.Request, e *env.Env) (string, error) {
	if c, err := r.Cookie(AccessTokenName(e)); err == nil && c.Value != "" {
		return c.Value, nil
	}
	header := r.Header.Get(AuthorizationHeader)
	if header == "" {
		return "", ErrMissingToken
	}
	raw, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || strings.TrimSpace(raw) == "" {
		return "", ErrMalformedBearer
	}
	return strings.TrimSpace(raw), nil
}

// ValidateAccessToken checks raw against the configured app secret.
func ValidateAccessToken(raw string, e *env.Env) (*jwt.Claims, error) {
	secret := e.AppSecret()
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	version := e.AppSecretVersion()
	if version == "" {
		version = jwt.DefaultKID
	}
	return jwt.ValidateJWT(raw, version, secret)
}

type userIDKeyType struct{}

var userIDKey userIDKeyType

func UserIDWithCtx(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromCtx(ctx context.Context) (string, error) {
	if v, ok := ctx.Value(userIDKey).(string); ok && v != "" {
		return v, nil
	}
	return "", ErrUserIDNotInContext
}

type claimsKeyType struct{}

var claimsKey claimsKeyType

func ClaimsWithCtx(ctx context.Context, claims *jwt.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ClaimsFromCtx(ctx context.Context) (*jwt.Claims, error) {
	if v, ok := ctx.Value(claimsKey).(*jwt.Claims); ok && v != nil {
		return v, nil
	}
	return nil, ErrClaimsNotInContext
}
