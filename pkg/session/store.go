package session

import "context"

// Store is the backing key/value store for session cache slots.
// Get reports presence explicitly so a stored empty value is
// distinguishable from an absent key.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
