package auth

import (
	"fmt"
	"strings"

	"github.com/fintrack/fintrack/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

type TokenValidator interface {
	Validate(token string) (*Claims, error)
}

// JwtValidator checks HS256 session tokens signed with the auth service secret.
type JwtValidator struct {
	secret []byte
	issuer string
}

func NewJwtValidator(cfg config.Auth) *JwtValidator {
	return &JwtValidator{
		secret: []byte(cfg.JwtSecret),
		issuer: Issuer(cfg.BaseUrl),
	}
}

func Issuer(baseUrl string) string {
	return strings.TrimSuffix(baseUrl, "/") + "/auth/v1"
}

func (v *JwtValidator) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		if len(v.secret) == 0 {
			return nil, fmt.Errorf("jwt secret is not configured")
		}
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
