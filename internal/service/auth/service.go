package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/health-navigator/internal/email"
	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository"
	"github.com/jwalitptl/health-navigator/internal/session"
	apperrors "github.com/jwalitptl/health-navigator/pkg/errors"
	"github.com/jwalitptl/health-navigator/pkg/security"
	"github.com/jwalitptl/health-navigator/pkg/validator"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotConfirmed  = errors.New("email address has not been confirmed")
)

// Sessions is the part of session.Store the auth flows drive.
type Sessions interface {
	Create(ctx context.Context, identity *model.Identity) (*session.Session, error)
	CurrentSession(ctx context.Context, token string) (*session.Session, error)
	Revoke(ctx context.Context, token string) error
	Refresh(ctx context.Context, token string) (*session.Session, error)
	IssueConfirmToken(identity *model.Identity) (string, error)
	ParseConfirmToken(token string) (uuid.UUID, error)
}

type Options struct {
	RequireEmailConfirmation bool
}

type Service struct {
	identities repository.IdentityRepository
	sessions   Sessions
	hasher     security.PasswordHasher
	emailSvc   email.Service
	validator  validator.Validator
	opts       Options
}

func NewService(identities repository.IdentityRepository, sessions Sessions, hasher security.PasswordHasher,
	emailSvc email.Service, v validator.Validator, opts Options) *Service {
	return &Service{
		identities: identities,
		sessions:   sessions,
		hasher:     hasher,
		emailSvc:   emailSvc,
		validator:  v,
		opts:       opts,
	}
}

func invalidCredentials() error {
	return &apperrors.AppError{Code: apperrors.ErrUnauthorized, Message: ErrInvalidCredentials.Error(), Err: ErrInvalidCredentials}
}

// SignUp stores a new identity with its profile metadata. The profile row
// itself is created on first sign-in by the profile resolver.
func (s *Service) SignUp(ctx context.Context, req *model.SignUpRequest) (*model.Identity, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validator.AsAppError(err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	identity := &model.Identity{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Metadata: model.IdentityMetadata{
			Username:   strings.TrimSpace(req.Username),
			FullName:   strings.TrimSpace(req.FullName),
			Phone:      strings.TrimSpace(req.Phone),
			UserType:   req.UserType,
			LocationID: req.LocationID,
		},
	}

	if err := s.identities.Create(ctx, identity); err != nil {
		if repository.IsConstraint(err, repository.ConstraintIdentityEmail) {
			return nil, apperrors.Conflict("email already registered", err)
		}
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	// The account exists at this point; a lost confirmation mail is not fatal.
	if err := s.sendConfirmation(ctx, identity); err != nil {
		log.Warn().Err(err).Str("identity_id", identity.ID.String()).Msg("failed to send confirmation email")
	}

	log.Info().Str("identity_id", identity.ID.String()).Str("user_type", req.UserType).Msg("identity signed up")
	return identity, nil
}

func (s *Service) sendConfirmation(ctx context.Context, identity *model.Identity) error {
	token, err := s.sessions.IssueConfirmToken(identity)
	if err != nil {
		return err
	}
	name := identity.Metadata.FullName
	if name == "" {
		name = identity.Email
	}
	return s.emailSvc.SendConfirmation(ctx, identity.Email, name, token)
}

func (s *Service) ConfirmEmail(ctx context.Context, token string) error {
	identityID, err := s.sessions.ParseConfirmToken(token)
	if err != nil {
		return apperrors.BadRequest("invalid or expired confirmation token", err)
	}

	err = s.identities.MarkConfirmed(ctx, identityID, time.Now())
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("identity", err)
	}
	if err != nil {
		return fmt.Errorf("failed to confirm email: %w", err)
	}
	return nil
}

// SignIn answers the same error for an unknown email and a wrong password.
func (s *Service) SignIn(ctx context.Context, req *model.SignInRequest) (*model.AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validator.AsAppError(err)
	}

	identity, err := s.identities.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}

	if err := s.hasher.Compare(identity.PasswordHash, req.Password); err != nil {
		return nil, invalidCredentials()
	}
	if s.opts.RequireEmailConfirmation && !identity.Confirmed() {
		return nil, &apperrors.AppError{Code: apperrors.ErrForbidden, Message: ErrEmailNotConfirmed.Error(), Err: ErrEmailNotConfirmed}
	}

	sess, err := s.sessions.Create(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return authResponse(sess), nil
}

// SignOut is idempotent: signing out without a session succeeds.
func (s *Service) SignOut(ctx context.Context, token string) error {
	err := s.sessions.Revoke(ctx, token)
	if err != nil && !errors.Is(err, session.ErrNoSession) {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

func (s *Service) Refresh(ctx context.Context, token string) (*model.AuthResponse, error) {
	sess, err := s.sessions.Refresh(ctx, token)
	if errors.Is(err, session.ErrNoSession) {
		return nil, apperrors.Unauthorized(err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}
	return authResponse(sess), nil
}

func (s *Service) CurrentSession(ctx context.Context, token string) (*session.Session, error) {
	return s.sessions.CurrentSession(ctx, token)
}

func authResponse(sess *session.Session) *model.AuthResponse {
	return &model.AuthResponse{
		AccessToken: sess.Token,
		ExpiresAt:   sess.ExpiresAt,
		Identity:    sess.Identity,
	}
}
