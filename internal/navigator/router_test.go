package navigator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/session"
)

type fakeResolver struct {
	mu      sync.Mutex
	role    model.Role
	err     error
	started chan struct{}
	release chan struct{}
	ctxErr  error
}

func (f *fakeResolver) Resolve(ctx context.Context, identity *model.Identity) (*model.Profile, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctxErr = ctx.Err()
	if f.err != nil {
		return nil, f.err
	}
	return &model.Profile{Base: model.Base{ID: uuid.New()}, IdentityID: identity.ID, Username: "u", Role: f.role}, nil
}

func liveSession() *session.Session {
	return &session.Session{ID: uuid.NewString(), Identity: &model.Identity{ID: uuid.New(), Email: "a@example.com"}}
}

func TestRouter_RoutesByRole(t *testing.T) {
	cases := []struct {
		role  model.Role
		state State
		route string
	}{
		{model.RolePatient, StatePatientDashboard, "/home"},
		{model.RoleHospital, StateHospitalDashboard, "/home"},
		{model.RoleAdmin, StateAdmin, "/"},
	}
	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			r := NewRouter(&fakeResolver{role: tc.role}, NewMemoryPreference("en"))
			snap := r.HandleSession(context.Background(), liveSession())
			assert.Equal(t, tc.state, snap.State)
			assert.Equal(t, tc.route, snap.Route)
			require.NotNil(t, snap.Profile)
			assert.Equal(t, tc.role, snap.Profile.Role)
		})
	}
}

func TestRouter_StartsCheckingSession(t *testing.T) {
	r := NewRouter(&fakeResolver{}, NewMemoryPreference(""))
	assert.Equal(t, StateCheckingSession, r.Snapshot().State)
	assert.False(t, StateCheckingSession.Protected())
	assert.True(t, StateHospitalDashboard.Protected())
}

func TestRouter_NoSessionGoesToLoginFromAnyState(t *testing.T) {
	r := NewRouter(&fakeResolver{role: model.RolePatient}, NewMemoryPreference("en"))
	ctx := context.Background()

	snap := r.HandleSession(ctx, nil)
	assert.Equal(t, StateLogin, snap.State)
	assert.Equal(t, "/auth", snap.Route)

	r.HandleSession(ctx, liveSession())
	snap = r.HandleSession(ctx, nil)
	assert.Equal(t, StateLogin, snap.State)
	assert.Nil(t, snap.Profile)

	failing := NewRouter(&fakeResolver{err: errors.New("down")}, NewMemoryPreference("en"))
	require.Equal(t, StateResolutionFailed, failing.HandleSession(ctx, liveSession()).State)
	assert.Equal(t, StateLogin, failing.HandleSession(ctx, nil).State)
}

func TestRouter_LanguageGate(t *testing.T) {
	prefs := NewMemoryPreference("")
	r := NewRouter(&fakeResolver{role: model.RoleHospital}, prefs)

	snap := r.HandleSession(context.Background(), liveSession())
	assert.Equal(t, StateLanguageSelect, snap.State)

	_, err := r.SelectLanguage("fr")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
	assert.Equal(t, StateLanguageSelect, r.Snapshot().State)

	snap, err = r.SelectLanguage("ta")
	require.NoError(t, err)
	assert.Equal(t, StateHospitalDashboard, snap.State)
	assert.Equal(t, "ta", snap.Language)

	again := NewRouter(&fakeResolver{role: model.RoleHospital}, prefs)
	assert.Equal(t, StateHospitalDashboard, again.HandleSession(context.Background(), liveSession()).State)
}

func TestRouter_ResolutionFailureIsRetryable(t *testing.T) {
	resolver := &fakeResolver{role: model.RolePatient, err: errors.New("write failed")}
	r := NewRouter(resolver, NewMemoryPreference("en"))
	ctx := context.Background()

	snap := r.HandleSession(ctx, liveSession())
	assert.Equal(t, StateResolutionFailed, snap.State)
	assert.True(t, snap.Retryable)
	assert.Contains(t, snap.Error, "write failed")
	assert.Nil(t, snap.Profile)

	resolver.mu.Lock()
	resolver.err = nil
	resolver.mu.Unlock()

	snap, err := r.Retry(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatePatientDashboard, snap.State)

	_, err = r.Retry(ctx)
	assert.ErrorIs(t, err, ErrNothingToRetry)
}

func TestRouter_StaleResolutionDiscarded(t *testing.T) {
	resolver := &fakeResolver{
		role:    model.RolePatient,
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	r := NewRouter(resolver, NewMemoryPreference("en"))
	ctx := context.Background()

	done := make(chan Snapshot, 1)
	go func() { done <- r.HandleSession(ctx, liveSession()) }()

	select {
	case <-resolver.started:
	case <-time.After(2 * time.Second):
		t.Fatal("resolution never started")
	}

	assert.Equal(t, StateLogin, r.HandleSession(ctx, nil).State)
	close(resolver.release)

	stale := <-done
	assert.Equal(t, StateLogin, stale.State)
	assert.Equal(t, StateLogin, r.Snapshot().State)
	assert.Nil(t, r.Snapshot().Profile)

	resolver.mu.Lock()
	defer resolver.mu.Unlock()
	assert.ErrorIs(t, resolver.ctxErr, context.Canceled)
}

func TestRouter_ObserversSeeEveryTransition(t *testing.T) {
	r := NewRouter(&fakeResolver{role: model.RolePatient}, NewMemoryPreference(""))

	var mu sync.Mutex
	var states []State
	remove := r.OnTransition(func(s Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, s.State)
	})

	ctx := context.Background()
	r.HandleSession(ctx, liveSession())
	_, err := r.SelectLanguage("hi")
	require.NoError(t, err)
	r.HandleSession(ctx, nil)

	remove()
	r.HandleSession(ctx, nil)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{
		StateResolvingProfile,
		StateLanguageSelect,
		StatePatientDashboard,
		StateLogin,
	}, states)
}
