package users

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

// Repository is the storage contract for account records.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByUserName(ctx context.Context, userName string) (*User, error)
	ListForm(ctx context.Context) ([]FormView, error)
}
