// Package models holds the value types shared by the ZooTrail client layers.
package models

import "time"

// User is the account identity attached to a session.
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// Session is the authenticated identity for the current client context.
// The token is an opaque bearer credential; ExpiresAt is derived from the
// server-supplied expires_in at login/refresh time.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session must be treated as invalid at the
// given instant.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Valid reports whether the session carries a token and has not expired.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.Token != "" && !s.Expired(now)
}

// Grant is the renewable credential material returned by the login and
// refresh endpoints, before it is projected into a Session.
type Grant struct {
	Token     string
	User      User
	ExpiresIn time.Duration
}

// NewSession projects a grant into a session anchored at now.
func NewSession(g Grant, now time.Time) *Session {
	return &Session{
		Token:     g.Token,
		User:      g.User,
		ExpiresAt: now.Add(g.ExpiresIn),
	}
}
