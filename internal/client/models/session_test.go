package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	s := &Session{Token: "t1", ExpiresAt: now.Add(time.Hour)}

	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(time.Hour)))
	assert.True(t, s.Expired(now.Add(2*time.Hour)))
}

func TestSession_Valid(t *testing.T) {
	now := time.Now()

	var nilSession *Session
	assert.False(t, nilSession.Valid(now))

	noToken := &Session{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, noToken.Valid(now))

	ok := &Session{Token: "t1", ExpiresAt: now.Add(time.Hour)}
	assert.True(t, ok.Valid(now))
	assert.False(t, ok.Valid(now.Add(2*time.Hour)))
}

func TestNewSession_DerivesExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := Grant{
		Token:     "t1",
		User:      User{ID: "u1", Email: "a@b.cz", EmailVerified: true},
		ExpiresIn: 3600 * time.Second,
	}

	s := NewSession(g, now)
	require.Equal(t, "t1", s.Token)
	require.Equal(t, "u1", s.User.ID)
	require.Equal(t, now.Add(time.Hour), s.ExpiresAt)
}
