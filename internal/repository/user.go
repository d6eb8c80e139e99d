package repository

import (
	"context"
	"errors"

	"tarvee/internal/model"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines data access for accounts.
type UserRepository interface {
	// Create inserts a user; a taken email yields ErrDuplicate.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByEmail looks up a user by lower-cased email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByID looks up a user by ID.
	FindByID(ctx context.Context, id string) (*model.User, error)
}
