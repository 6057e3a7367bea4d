package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository/repotest"
	"github.com/jwalitptl/health-navigator/pkg/auth"
	"github.com/jwalitptl/health-navigator/pkg/messaging"
)

type fixture struct {
	store    *Store
	repos    *repotest.Store
	broker   *messaging.MemoryBroker
	identity *model.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := repotest.NewStore()
	broker := messaging.NewMemoryBroker()
	t.Cleanup(func() { broker.Close() })

	identity := &model.Identity{Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, repos.Identities().Create(context.Background(), identity))

	store := NewStore(auth.NewJWTService("test-secret", "test"), NewMemoryKV(), repos.Identities(), broker,
		Config{TTL: time.Hour, ConfirmTTL: time.Hour})
	return &fixture{store: store, repos: repos, broker: broker, identity: identity}
}

func TestCreateAndCurrentSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.store.Create(ctx, f.identity)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)

	current, err := f.store.CurrentSession(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, current.ID)
	assert.Equal(t, f.identity.ID, current.Identity.ID)
	assert.Equal(t, "alice@example.com", current.Identity.Email)
}

func TestCurrentSession_Absent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.CurrentSession(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = f.store.CurrentSession(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrNoSession)

	other := NewStore(auth.NewJWTService("other-secret", "test"), NewMemoryKV(), f.repos.Identities(), nil, Config{})
	foreign, err := other.Create(ctx, f.identity)
	require.NoError(t, err)
	_, err = f.store.CurrentSession(ctx, foreign.Token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCurrentSession_ConfirmTokenRejected(t *testing.T) {
	f := newFixture(t)

	token, err := f.store.IssueConfirmToken(f.identity)
	require.NoError(t, err)

	_, err = f.store.CurrentSession(context.Background(), token)
	assert.ErrorIs(t, err, ErrNoSession)

	id, err := f.store.ParseConfirmToken(token)
	require.NoError(t, err)
	assert.Equal(t, f.identity.ID, id)
}

func TestRevoke(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.store.Create(ctx, f.identity)
	require.NoError(t, err)
	require.NoError(t, f.store.Revoke(ctx, sess.Token))

	_, err = f.store.CurrentSession(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNoSession)

	assert.ErrorIs(t, f.store.Revoke(ctx, "garbage"), ErrNoSession)
}

func TestRefresh_InvalidatesOldToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.store.Create(ctx, f.identity)
	require.NoError(t, err)

	next, err := f.store.Refresh(ctx, sess.Token)
	require.NoError(t, err)
	assert.NotEqual(t, sess.ID, next.ID)

	_, err = f.store.CurrentSession(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = f.store.CurrentSession(ctx, next.Token)
	assert.NoError(t, err)
}

func TestCurrentSession_IdentityLookupFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.store.Create(ctx, f.identity)
	require.NoError(t, err)

	f.repos.Fail("identities.get", errors.New("connection reset"), 1)
	_, err = f.store.CurrentSession(ctx, sess.Token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSession)
}

func TestOnSessionChange(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan Event, 4)
	unsubscribe, err := f.store.OnSessionChange(ctx, f.identity.ID, func(ev Event) { events <- ev })
	require.NoError(t, err)
	defer unsubscribe()

	sess, err := f.store.Create(ctx, f.identity)
	require.NoError(t, err)
	require.NoError(t, f.store.Revoke(ctx, sess.Token))

	first := receive(t, events)
	assert.Equal(t, EventSignedIn, first.Type)
	require.NotNil(t, first.Session)
	assert.Equal(t, sess.ID, first.Session.ID)
	assert.Equal(t, sess.ID, first.SessionID)
	assert.Empty(t, first.Session.Token)

	second := receive(t, events)
	assert.Equal(t, EventSignedOut, second.Type)
	assert.Nil(t, second.Session)
	assert.Equal(t, f.identity.ID, second.IdentityID)
	assert.Equal(t, sess.ID, second.SessionID)
}

func TestOnSessionChange_EventsNameTheirSession(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan Event, 8)
	unsubscribe, err := f.store.OnSessionChange(ctx, f.identity.ID, func(ev Event) { events <- ev })
	require.NoError(t, err)
	defer unsubscribe()

	phone, err := f.store.Create(ctx, f.identity)
	require.NoError(t, err)
	laptop, err := f.store.Create(ctx, f.identity)
	require.NoError(t, err)
	next, err := f.store.Refresh(ctx, laptop.Token)
	require.NoError(t, err)
	require.NoError(t, f.store.Revoke(ctx, phone.Token))

	assert.Equal(t, phone.ID, receive(t, events).SessionID)
	assert.Equal(t, laptop.ID, receive(t, events).SessionID)

	refreshed := receive(t, events)
	assert.Equal(t, EventTokenRefreshed, refreshed.Type)
	assert.Equal(t, laptop.ID, refreshed.SessionID)
	require.NotNil(t, refreshed.Session)
	assert.Equal(t, next.ID, refreshed.Session.ID)

	out := receive(t, events)
	assert.Equal(t, EventSignedOut, out.Type)
	assert.Equal(t, phone.ID, out.SessionID)

	_, err = f.store.CurrentSession(ctx, next.Token)
	assert.NoError(t, err, "signing out one device leaves the other signed in")
}

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session event")
		return Event{}
	}
}
