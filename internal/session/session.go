// Package session issues, checks and revokes login sessions and publishes
// every sign-in, sign-out and refresh to subscribers.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository"
	"github.com/jwalitptl/health-navigator/pkg/auth"
	"github.com/jwalitptl/health-navigator/pkg/messaging"
)

// ErrNoSession covers a missing, expired, revoked or unreadable token.
// Callers treat it as "signed out", not as a failure.
var ErrNoSession = errors.New("no live session")

type Session struct {
	ID        string          `json:"id"`
	Token     string          `json:"-"`
	Identity  *model.Identity `json:"identity"`
	ExpiresAt time.Time       `json:"expires_at"`
}

type EventType string

const (
	EventSignedIn       EventType = "signed_in"
	EventSignedOut      EventType = "signed_out"
	EventTokenRefreshed EventType = "token_refreshed"
)

// Event is delivered on every auth transition of an identity. SessionID
// names the session the transition happened to: the new session for
// signed_in, the ended one for signed_out and the replaced one for
// token_refreshed. Session is the session now live, nil after sign-out.
type Event struct {
	Type       EventType `json:"type"`
	IdentityID uuid.UUID `json:"identity_id"`
	SessionID  string    `json:"session_id"`
	Session    *Session  `json:"session,omitempty"`
}

type Source interface {
	CurrentSession(ctx context.Context, token string) (*Session, error)
	// OnSessionChange calls fn for every transition of identityID until the
	// returned func is called or ctx ends.
	OnSessionChange(ctx context.Context, identityID uuid.UUID, fn func(Event)) (func(), error)
}

type Config struct {
	TTL        time.Duration
	ConfirmTTL time.Duration
}

type Store struct {
	tokens     auth.JWTService
	kv         KV
	identities repository.IdentityRepository
	broker     messaging.Broker
	cfg        Config
	now        func() time.Time
}

var _ Source = (*Store)(nil)

func NewStore(tokens auth.JWTService, kv KV, identities repository.IdentityRepository, broker messaging.Broker, cfg Config) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.ConfirmTTL <= 0 {
		cfg.ConfirmTTL = 48 * time.Hour
	}
	return &Store{
		tokens:     tokens,
		kv:         kv,
		identities: identities,
		broker:     broker,
		cfg:        cfg,
		now:        time.Now,
	}
}

func key(sessionID string) string {
	return "session:" + sessionID
}

// Create starts a new session for identity and announces it.
func (s *Store) Create(ctx context.Context, identity *model.Identity) (*Session, error) {
	sess, err := s.issue(ctx, identity)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, Event{Type: EventSignedIn, IdentityID: identity.ID, SessionID: sess.ID, Session: sess})
	return sess, nil
}

func (s *Store) issue(ctx context.Context, identity *model.Identity) (*Session, error) {
	id := uuid.NewString()
	expiresAt := s.now().Add(s.cfg.TTL)

	token, err := s.tokens.GenerateAccessToken(identity.ID, identity.Email, id, expiresAt)
	if err != nil {
		return nil, err
	}
	if err := s.kv.Set(ctx, key(id), identity.ID.String(), s.cfg.TTL); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return &Session{ID: id, Token: token, Identity: identity, ExpiresAt: expiresAt}, nil
}

// CurrentSession returns ErrNoSession for any token that does not belong to
// a live session. Storage failures are returned as errors.
func (s *Store) CurrentSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	claims, err := s.tokens.ValidateToken(token, auth.PurposeAccess)
	if err != nil {
		return nil, ErrNoSession
	}

	live, err := s.kv.Exists(ctx, key(claims.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if !live {
		return nil, ErrNoSession
	}

	identityID, _ := claims.IdentityID()
	identity, err := s.identities.GetByID(ctx, identityID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}

	return &Session{
		ID:        claims.ID,
		Token:     token,
		Identity:  identity,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke ends the session behind token. Expired tokens are accepted so a
// client can always sign out.
func (s *Store) Revoke(ctx context.Context, token string) error {
	claims, err := s.tokens.ParseIgnoringExpiry(token, auth.PurposeAccess)
	if err != nil {
		return ErrNoSession
	}
	if err := s.kv.Delete(ctx, key(claims.ID)); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	identityID, _ := claims.IdentityID()
	s.publish(ctx, Event{Type: EventSignedOut, IdentityID: identityID, SessionID: claims.ID})
	return nil
}

// Refresh replaces a live session with a new one carrying a fresh expiry.
func (s *Store) Refresh(ctx context.Context, token string) (*Session, error) {
	current, err := s.CurrentSession(ctx, token)
	if err != nil {
		return nil, err
	}

	next, err := s.issue(ctx, current.Identity)
	if err != nil {
		return nil, err
	}
	if err := s.kv.Delete(ctx, key(current.ID)); err != nil {
		log.Warn().Err(err).Str("session_id", current.ID).Msg("failed to drop refreshed session")
	}

	s.publish(ctx, Event{Type: EventTokenRefreshed, IdentityID: current.Identity.ID, SessionID: current.ID, Session: next})
	return next, nil
}

func (s *Store) IssueConfirmToken(identity *model.Identity) (string, error) {
	return s.tokens.GenerateConfirmToken(identity.ID, identity.Email, s.now().Add(s.cfg.ConfirmTTL))
}

func (s *Store) ParseConfirmToken(token string) (uuid.UUID, error) {
	claims, err := s.tokens.ValidateToken(token, auth.PurposeConfirm)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.IdentityID()
}

func (s *Store) publish(ctx context.Context, ev Event) {
	if s.broker == nil {
		return
	}
	if err := s.broker.Publish(ctx, messaging.SessionChannel(ev.IdentityID.String()), ev); err != nil {
		log.Warn().Err(err).
			Str("identity_id", ev.IdentityID.String()).
			Str("event", string(ev.Type)).
			Msg("failed to publish session event")
	}
}

func (s *Store) OnSessionChange(ctx context.Context, identityID uuid.UUID, fn func(Event)) (func(), error) {
	if s.broker == nil {
		return nil, errors.New("session events are not available")
	}

	subCtx, cancel := context.WithCancel(ctx)
	msgs, err := s.broker.Subscribe(subCtx, messaging.SessionChannel(identityID.String()))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to subscribe to session events: %w", err)
	}

	go func() {
		for payload := range msgs {
			var ev Event
			if err := json.Unmarshal(payload, &ev); err != nil {
				log.Warn().Err(err).Msg("dropping malformed session event")
				continue
			}
			fn(ev)
		}
	}()

	return cancel, nil
}
