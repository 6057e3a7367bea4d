package landing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-navigator/internal/session"
)

func TestSessionFollower(t *testing.T) {
	identity := uuid.New()
	f := &sessionFollower{id: "sess-b"}

	_, ok := f.apply(session.Event{Type: session.EventSignedOut, IdentityID: identity, SessionID: "sess-a"})
	assert.False(t, ok, "another device signing out leaves this session alone")

	_, ok = f.apply(session.Event{Type: session.EventSignedIn, IdentityID: identity, SessionID: "sess-c",
		Session: &session.Session{ID: "sess-c"}})
	assert.False(t, ok, "another device signing in is not adopted")

	_, ok = f.apply(session.Event{Type: session.EventTokenRefreshed, IdentityID: identity, SessionID: "sess-a",
		Session: &session.Session{ID: "sess-a2"}})
	assert.False(t, ok)

	next, ok := f.apply(session.Event{Type: session.EventTokenRefreshed, IdentityID: identity, SessionID: "sess-b",
		Session: &session.Session{ID: "sess-b2"}})
	require.True(t, ok)
	assert.Equal(t, "sess-b2", next.ID)

	_, ok = f.apply(session.Event{Type: session.EventSignedOut, IdentityID: identity, SessionID: "sess-b"})
	assert.False(t, ok, "the replaced id no longer matches")

	next, ok = f.apply(session.Event{Type: session.EventSignedOut, IdentityID: identity, SessionID: "sess-b2"})
	assert.True(t, ok)
	assert.Nil(t, next)
}
