// Package searches remembers recent zoo search queries locally.
package searches

import "context"

// Repository stores recent search queries, newest first, deduplicated.
type Repository interface {
	Add(ctx context.Context, query string) error
	Recent(ctx context.Context, limit int) ([]string, error)
	Clear(ctx context.Context) error
}
