// Package navigator decides which screen a client lands on, given its
// session, its resolved profile and its stored language preference.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/health-navigator/internal/i18n"
	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/session"
)

type State string

const (
	StateCheckingSession   State = "checking-session"
	StateLogin             State = "login"
	StateResolvingProfile  State = "resolving-profile"
	StateResolutionFailed  State = "resolution-failed"
	StateLanguageSelect    State = "language-select"
	StatePatientDashboard  State = "patient-dashboard"
	StateHospitalDashboard State = "hospital-dashboard"
	// StateAdmin has no dashboard.
	StateAdmin State = "admin"
)

// Route is the client path rendered for the state.
func (s State) Route() string {
	switch s {
	case StateLogin:
		return "/auth"
	case StatePatientDashboard, StateHospitalDashboard:
		return "/home"
	default:
		return "/"
	}
}

// Protected states require a live session.
func (s State) Protected() bool {
	return s != StateLogin && s != StateCheckingSession
}

var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrNothingToRetry      = errors.New("no failed resolution to retry")
)

type ProfileResolver interface {
	Resolve(ctx context.Context, identity *model.Identity) (*model.Profile, error)
}

// Preference stores the client's chosen language.
type Preference interface {
	Language() (string, bool)
	SetLanguage(code string) error
}

type Snapshot struct {
	State      State          `json:"state"`
	Route      string         `json:"route"`
	Generation uint64         `json:"generation"`
	Profile    *model.Profile `json:"profile,omitempty"`
	Language   string         `json:"language,omitempty"`
	Error      string         `json:"error,omitempty"`
	Retryable  bool           `json:"retryable,omitempty"`
}

type observer struct {
	id int
	fn func(Snapshot)
}

// Router is safe for concurrent use. The most recent HandleSession call
// wins: results of older resolutions are dropped when they arrive.
type Router struct {
	resolver ProfileResolver
	prefs    Preference

	mu        sync.Mutex
	state     State
	gen       uint64
	cancel    context.CancelFunc
	session   *session.Session
	profile   *model.Profile
	lastErr   error
	observers []observer
	nextObs   int
}

func NewRouter(resolver ProfileResolver, prefs Preference) *Router {
	return &Router{
		resolver: resolver,
		prefs:    prefs,
		state:    StateCheckingSession,
	}
}

// OnTransition registers fn to receive every snapshot. The returned func
// removes it.
func (r *Router) OnTransition(fn func(Snapshot)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextObs++
	id := r.nextObs
	r.observers = append(r.observers, observer{id: id, fn: fn})
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, o := range r.observers {
			if o.id == id {
				r.observers = append(r.observers[:i], r.observers[i+1:]...)
				return
			}
		}
	}
}

func (r *Router) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Router) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:      r.state,
		Route:      r.state.Route(),
		Generation: r.gen,
		Profile:    r.profile,
	}
	if lang, ok := r.prefs.Language(); ok {
		snap.Language = lang
	}
	if r.state == StateResolutionFailed && r.lastErr != nil {
		snap.Error = r.lastErr.Error()
		snap.Retryable = true
	}
	return snap
}

// transitionLocked must be called with mu held. It returns the snapshot and
// the observers to notify once the lock is released.
func (r *Router) transitionLocked(to State) (Snapshot, []func(Snapshot)) {
	if r.state != to {
		log.Debug().Str("from", string(r.state)).Str("to", string(to)).Uint64("generation", r.gen).Msg("navigator transition")
	}
	r.state = to
	snap := r.snapshotLocked()
	fns := make([]func(Snapshot), len(r.observers))
	for i, o := range r.observers {
		fns[i] = o.fn
	}
	return snap, fns
}

func notify(snap Snapshot, fns []func(Snapshot)) {
	for _, fn := range fns {
		fn(snap)
	}
}

// HandleSession applies the latest known session. A nil session sends the
// client to login from any state. Otherwise the profile is resolved and the
// client is routed by role, unless a newer call superseded this one.
func (r *Router) HandleSession(ctx context.Context, sess *session.Session) Snapshot {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.session = sess
	r.profile = nil
	r.lastErr = nil

	if sess == nil || sess.Identity == nil {
		snap, fns := r.transitionLocked(StateLogin)
		r.mu.Unlock()
		notify(snap, fns)
		return snap
	}

	resolveCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	snap, fns := r.transitionLocked(StateResolvingProfile)
	r.mu.Unlock()
	notify(snap, fns)

	profile, err := r.resolver.Resolve(resolveCtx, sess.Identity)

	r.mu.Lock()
	if gen != r.gen {
		cur := r.snapshotLocked()
		r.mu.Unlock()
		cancel()
		log.Debug().Uint64("generation", gen).Uint64("current", cur.Generation).Msg("discarding stale profile resolution")
		return cur
	}
	r.cancel = nil
	cancel()

	if err != nil {
		r.lastErr = err
		snap, fns = r.transitionLocked(StateResolutionFailed)
	} else {
		r.profile = profile
		snap, fns = r.transitionLocked(r.afterResolveLocked())
	}
	r.mu.Unlock()
	notify(snap, fns)
	return snap
}

// afterResolveLocked inserts the language gate before the role destination.
func (r *Router) afterResolveLocked() State {
	if _, ok := r.prefs.Language(); !ok {
		return StateLanguageSelect
	}
	return destination(r.profile.Role)
}

// destination is the single place a role picks a screen.
func destination(role model.Role) State {
	switch role {
	case model.RolePatient:
		return StatePatientDashboard
	case model.RoleHospital:
		return StateHospitalDashboard
	case model.RoleAdmin:
		return StateAdmin
	}
	return StateResolutionFailed
}

// SelectLanguage persists code and, when the router is waiting on the
// language gate, moves on to the dashboard.
func (r *Router) SelectLanguage(code string) (Snapshot, error) {
	if !i18n.IsSupported(code) {
		return r.Snapshot(), fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
	if err := r.prefs.SetLanguage(code); err != nil {
		return r.Snapshot(), fmt.Errorf("failed to store language: %w", err)
	}

	r.mu.Lock()
	if r.state != StateLanguageSelect || r.profile == nil {
		snap := r.snapshotLocked()
		r.mu.Unlock()
		return snap, nil
	}
	snap, fns := r.transitionLocked(destination(r.profile.Role))
	r.mu.Unlock()
	notify(snap, fns)
	return snap, nil
}

// Retry re-runs resolution for the current session after a failure.
func (r *Router) Retry(ctx context.Context) (Snapshot, error) {
	r.mu.Lock()
	if r.state != StateResolutionFailed || r.session == nil {
		snap := r.snapshotLocked()
		r.mu.Unlock()
		return snap, ErrNothingToRetry
	}
	sess := r.session
	r.mu.Unlock()
	return r.HandleSession(ctx, sess), nil
}

// Close cancels any in-flight resolution.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}
