package auth

import "errors"

var (
	// ErrInvalidCredentials is returned on login when the username or
	// password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned on registration of a taken username.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUnauthenticated is returned when an operation requiring an
	// identity is reached without one.
	ErrUnauthenticated = errors.New("unauthenticated")
)
