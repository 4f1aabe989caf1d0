package shops

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("shop not found")

type Store interface {
	// FindByID fetches a shop by its id.
	FindByID(ctx context.Context, id string) (Shop, error)
	// FindByDomain fetches a shop whose domain list contains host.
	FindByDomain(ctx context.Context, host string) (Shop, error)
	// FindPrimary fetches the shop flagged primary.
	FindPrimary(ctx context.Context) (Shop, error)
	// List returns all shops.
	List(ctx context.Context) ([]Shop, error)
	// Upsert creates or replaces a shop.
	Upsert(ctx context.Context, s Shop) error
}
