package groups

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("group not found")

type Store interface {
	// FindByIDs resolves groups by id. Unknown ids are skipped, not errors.
	FindByIDs(ctx context.Context, ids []string) ([]Group, error)
	// ListByShop returns all groups scoped to the given shop.
	ListByShop(ctx context.Context, shopID string) ([]Group, error)
	// Upsert creates or replaces a group.
	Upsert(ctx context.Context, g Group) error
}
