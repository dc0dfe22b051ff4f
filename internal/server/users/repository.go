package users

import (
	"context"
)

// Repository is the persistence boundary for user records. Implementations
// must enforce email uniqueness atomically and be safe for concurrent use.
type Repository interface {
	// Create inserts a new user. A duplicate email yields
	// common.ErrorConflict and leaves no partial record behind.
	Create(ctx context.Context, user *User) (*User, error)

	// GetByEmail finds a user by their (lowercased) email, or returns
	// common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID finds a user by id, or returns common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*User, error)
}
