package accounts

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("account not found")

type Store interface {
	// FindByID fetches an account by its id.
	FindByID(ctx context.Context, id string) (Account, error)
	// FindByIdentity fetches an account by its linked login-identity id.
	FindByIdentity(ctx context.Context, identityID string) (Account, error)
	// SetActiveShop records the account's shop preference ("" clears it).
	SetActiveShop(ctx context.Context, accountID, shopID string) error
	// AddToGroup / RemoveFromGroup mutate group membership.
	AddToGroup(ctx context.Context, accountID, groupID string) error
	RemoveFromGroup(ctx context.Context, accountID, groupID string) error
	// Upsert creates or replaces an account.
	Upsert(ctx context.Context, a Account) error
}
