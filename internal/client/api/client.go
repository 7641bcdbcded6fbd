package api

import (
	"context"

	"github.com/zootrail/zootrail/internal/client/models"
)

// CallResult is the raw material handed to the classifier: the status code
// and the (size-limited) response body.
type CallResult struct {
	Status int
	Body   []byte
}

// OK reports whether the response status is 2xx.
func (r *CallResult) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// TokenSource supplies the current bearer token for outbound requests.
// An empty string means no credential is attached.
type TokenSource interface {
	Token() string
}

// Client is the remote ZooTrail API surface used by the rest of the client.
//
// Auth-flow methods return a *CallResult so the caller can run the outcome
// through Classify; a non-nil error means no response was received at all.
// Read methods decode the payload directly and surface non-2xx statuses as
// *APIError.
type Client interface {
	// Login exchanges credentials for a grant. A nil grant with a non-nil
	// result means the server answered with a classifiable failure.
	Login(ctx context.Context, username, password string) (*models.Grant, *CallResult, error)

	// Refresh renews the grant using the ambient bearer credential.
	Refresh(ctx context.Context) (*models.Grant, *CallResult, error)

	// Logout invalidates the token server-side. Best effort by contract.
	Logout(ctx context.Context) error

	Register(ctx context.Context, email, password string) (*CallResult, error)
	ForgotPassword(ctx context.Context, email string) (*CallResult, error)
	ResetStatus(ctx context.Context, token string) (string, error)
	ResetPassword(ctx context.Context, token, password, confirmPassword string) (*CallResult, error)
	ResendVerification(ctx context.Context, email string) (*CallResult, error)

	Dashboard(ctx context.Context) (*models.Dashboard, error)
	Visits(ctx context.Context, page int) ([]models.Visit, error)
	LogVisit(ctx context.Context, zooID, note string) (*models.Visit, error)
	SearchZoos(ctx context.Context, query string) ([]models.Zoo, error)
	Achievements(ctx context.Context) ([]models.Achievement, error)

	Close() error
}
