// Package session owns the durable session record and the state machine
// that keeps it alive: hydration, login, logout, and scheduled refresh.
package session

import (
	"context"

	"github.com/zootrail/zootrail/internal/client/models"
)

// Store persists the one session record of this client context.
//
// Read returns (nil, nil) when no record exists or the stored record cannot
// be decoded; callers treat both exactly like "no session". Subscribers are
// notified on every local write/clear and whenever an external mutation of
// the backing store is detected, so independent consumers converge without
// polling the network.
type Store interface {
	Read(ctx context.Context) (*models.Session, error)
	Write(ctx context.Context, s *models.Session) error
	Clear(ctx context.Context) error

	// Subscribe registers a change callback and returns its cancel func.
	// Callbacks must be brief and must not call back into the Store.
	Subscribe(fn func()) (cancel func())

	Close() error
}
