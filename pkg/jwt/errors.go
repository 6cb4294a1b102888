package jwt

import "errors"

var (
	ErrInvalidToken      = errors.New("jwt: invalid token")
	ErrExpiredToken      = errors.New("jwt: token is expired")
	ErrMissingToken      = errors.New("jwt: missing token")
	ErrInvalidSigningKey = errors.New("jwt: invalid signing key")
	ErrInvalidClaims     = errors.New("jwt: invalid claims")
	ErrForbiddenRole     = errors.New("jwt: role not allowed")
)
