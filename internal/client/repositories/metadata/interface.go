// Package metadata is the local key/value store underlying session
// persistence and one-shot notices.
package metadata

import "context"

// Repository is a small key/value store over the local database.
// Get returns (nil, nil) for an absent key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
