package auth

import "errors"

// Token validation errors
var (
	ErrInvalidToken        = errors.New("invalid authentication token")
	ErrExpiredToken        = errors.New("authentication token has expired")
	ErrTokenNotYetValid    = errors.New("authentication token not yet valid")
	ErrMissingToken        = errors.New("authentication token is missing")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrExpiredRefreshToken = errors.New("refresh token has expired")

	// ErrWrongTokenType is returned when an access token is presented where
	// a refresh token is expected, or the reverse.
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrWeakSecret is returned by NewJWTService for secrets under 32 characters.
	ErrWeakSecret = errors.New("jwt secret must be at least 32 characters")
)
