// Package inbox passes one-shot notices between app runs, e.g. "password
// changed, sign in again" written by the reset flow and shown at the next
// startup.
package inbox

import (
	"context"

	"github.com/zootrail/zootrail/internal/client/repositories/metadata"
)

const keyNotice = "inbox_notice"

// Inbox stores at most one pending notice in the local metadata table.
type Inbox struct {
	repo metadata.Repository
}

func New(repo metadata.Repository) *Inbox {
	return &Inbox{repo: repo}
}

// Post replaces any pending notice with msg.
func (i *Inbox) Post(ctx context.Context, msg string) error {
	return i.repo.Set(ctx, keyNotice, []byte(msg))
}

// Consume returns the pending notice and removes it, so it is shown exactly
// once. Returns "" when nothing is pending.
func (i *Inbox) Consume(ctx context.Context) (string, error) {
	data, err := i.repo.Get(ctx, keyNotice)
	if err != nil {
		return "", err
	}
	if data == nil {
		return "", nil
	}
	if err := i.repo.Delete(ctx, keyNotice); err != nil {
		return "", err
	}
	return string(data), nil
}
