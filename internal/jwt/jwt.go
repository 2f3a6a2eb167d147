// Package jwt provides functions for generating and validating JWTs
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultKID  = "1"
	JWTDuration = time.Hour
	issuer      = "recetario"
)

var (
	ErrMissingKID = errors.New("missing/invalid kid value")
	ErrUnknownKID = errors.New("unknown kid value")
)

type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type JWTParams struct {
	UserID   string
	Email    string
	Duration time.Duration
}

func GenerateJWT(params JWTParams, secret []byte, version string) (string, error) {
	duration := params.Duration
	if duration <= 0 {
		duration = JWTDuration
	}
	now := time.Now()
	claims := Claims{
		Email: params.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   params.UserID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = version

	signedKey, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signedKey, nil
}

// ValidateJWT parses rawToken and checks its signature, expiry and key
// version.
func ValidateJWT(rawToken, version string, secret []byte) (*Claims, error) {
	keyFunc := func(token *jwt.Token) (any, error) {
		kidVal, ok := token.Header["kid"].(string)
		if !ok {
			return nil, ErrMissingKID
		}
		if kidVal != version {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKID, kidVal)
		}
		return secret, nil
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(rawToken, &claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidSubject
	}
	return &claims, nil
}
