package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository"
	"github.com/jwalitptl/health-navigator/pkg/metrics"
)

// ErrResolutionFailed wraps every failure to read or create the profile of a
// live identity. The caller must not guess a role when it sees it.
var ErrResolutionFailed = errors.New("profile resolution failed")

type Resolver struct {
	profiles repository.ProfileRepository
	patients repository.PatientRepository
	metrics  *metrics.Metrics
}

func NewResolver(profiles repository.ProfileRepository, patients repository.PatientRepository, m *metrics.Metrics) *Resolver {
	return &Resolver{profiles: profiles, patients: patients, metrics: m}
}

func (r *Resolver) observe(outcome string) {
	if r.metrics != nil {
		r.metrics.ProfileResolutions.WithLabelValues(outcome).Inc()
	}
}

func failed(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrResolutionFailed, step, err)
}

// Resolve returns the identity's profile, creating it (and, for patients,
// the patient row) on first sign-in. Repeated calls return the same profile.
func (r *Resolver) Resolve(ctx context.Context, identity *model.Identity) (*model.Profile, error) {
	profile, err := r.profiles.GetByIdentityID(ctx, identity.ID)
	switch {
	case err == nil:
		// A previous attempt may have stopped between the two inserts.
		if profile.Role == model.RolePatient {
			if _, _, err := r.EnsurePatient(ctx, profile); err != nil {
				r.observe("failed")
				return nil, failed("ensure patient", err)
			}
		}
		r.observe("found")
		return profile, nil
	case !errors.Is(err, repository.ErrNotFound):
		r.observe("failed")
		return nil, failed("lookup", err)
	}

	profile, err = r.create(ctx, identity)
	if err != nil {
		r.observe("failed")
		log.Error().Err(err).Str("identity_id", identity.ID.String()).Msg("profile resolution failed")
		return nil, err
	}

	if profile.Role == model.RolePatient {
		if _, _, err := r.EnsurePatient(ctx, profile); err != nil {
			r.observe("failed")
			return nil, failed("ensure patient", err)
		}
	}

	r.observe("created")
	log.Info().
		Str("identity_id", identity.ID.String()).
		Str("profile_id", profile.ID.String()).
		Str("role", profile.Role.String()).
		Msg("profile created on first sign-in")
	return profile, nil
}

func (r *Resolver) create(ctx context.Context, identity *model.Identity) (*model.Profile, error) {
	profile, err := Synthesize(identity)
	if err != nil {
		return nil, failed("synthesize", err)
	}

	err = r.profiles.Create(ctx, profile)
	if repository.IsConstraint(err, repository.ConstraintProfileUsername) {
		profile.Username = profile.Username + "_" + idPrefix(identity.ID)
		err = r.profiles.Create(ctx, profile)
	}
	if repository.IsConstraint(err, repository.ConstraintProfileIdentity) {
		// A concurrent first sign-in won the race.
		winner, rerr := r.profiles.GetByIdentityID(ctx, identity.ID)
		if rerr != nil {
			return nil, failed("re-read", rerr)
		}
		return winner, nil
	}
	if err != nil {
		return nil, failed("create", err)
	}
	return profile, nil
}

// Synthesize builds the first profile of identity from its sign-up metadata.
// A missing user type means patient; an unknown one is an error.
func Synthesize(identity *model.Identity) (*model.Profile, error) {
	md := identity.Metadata

	role := model.RolePatient
	if md.UserType != "" {
		parsed, err := model.ParseRole(md.UserType)
		if err != nil {
			return nil, err
		}
		role = parsed
	}

	username := strings.TrimSpace(md.Username)
	if username == "" {
		username = emailLocalPart(identity.Email)
	}
	if username == "" {
		username = "user_" + idPrefix(identity.ID)
	}

	fullName := strings.TrimSpace(md.FullName)
	if fullName == "" {
		fullName = username
	}

	profile := &model.Profile{
		IdentityID: identity.ID,
		Username:   username,
		FullName:   fullName,
		Role:       role,
	}
	if phone := strings.TrimSpace(md.Phone); phone != "" {
		profile.Phone = &phone
	}
	if loc, err := uuid.Parse(md.LocationID); err == nil {
		profile.LocationID = &loc
	}
	return profile, nil
}

func emailLocalPart(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return ""
	}
	return email[:at]
}

func idPrefix(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}

// EnsurePatient finds or creates the single patient row of profile. created
// reports whether this call wrote it.
func (r *Resolver) EnsurePatient(ctx context.Context, profile *model.Profile) (patient *model.Patient, created bool, err error) {
	patient, err = r.patients.GetByProfileID(ctx, profile.ID)
	if err == nil {
		return patient, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to look up patient: %w", err)
	}

	patient = &model.Patient{ProfileID: profile.ID}
	err = r.patients.Create(ctx, patient)
	if repository.IsConstraint(err, repository.ConstraintPatientProfile) {
		patient, err = r.patients.GetByProfileID(ctx, profile.ID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to re-read patient: %w", err)
		}
		return patient, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, true, nil
}
