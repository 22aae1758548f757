package store

import (
	"context"
	"errors"

	"github.com/cardwatch/server/internal/cardwatch/types"
)

// ErrDuplicateIdentity is returned by Create when the registration number
// or email is already taken. Implementations must report it even when two
// creations race: at most one of them may succeed.
var ErrDuplicateIdentity = errors.New("identity already exists")

// NewIdentity carries the fields of an identity to be created. The store
// assigns the id and creation time.
type NewIdentity struct {
	RegNumber    string
	Name         string
	Email        string
	PasswordHash string
}

type IdentityStore interface {
	// FindByRegNumber returns the identity or (nil, nil) when absent.
	FindByRegNumber(ctx context.Context, regNumber string) (*types.Identity, error)

	// FindByRegNumberOrEmail returns any identity matching either field,
	// or (nil, nil) when neither is taken.
	FindByRegNumberOrEmail(ctx context.Context, regNumber, email string) (*types.Identity, error)

	Create(ctx context.Context, n NewIdentity) (*types.Identity, error)
}
