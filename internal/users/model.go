// Package users holds the persistent user records behind the credential
// verifier. The authentication core never reads password hashes directly;
// it goes through [Repository].
package users

import "time"

// User is a stored account record.
type User struct {
	ID           string
	UserName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FormView is the projection returned by the user-form listing.
type FormView struct {
	ID        string    `json:"id"`
	UserName  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createTime"`
	UpdatedAt time.Time `json:"updateTime"`
}
