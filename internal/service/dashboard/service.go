package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository"
	"github.com/jwalitptl/health-navigator/pkg/metrics"
)

const unavailable = "temporarily unavailable"

type Options struct {
	// RetryAttempts counts the first try; 2 means one retry.
	RetryAttempts int
	RetryDelay    time.Duration
	LoaderTimeout time.Duration
	// Location decides which calendar day counts as today.
	Location *time.Location
}

type Repositories struct {
	Patients     repository.PatientRepository
	Hospitals    repository.HospitalRepository
	Doctors      repository.DoctorRepository
	Appointments repository.AppointmentRepository
	Emergencies  repository.EmergencyRepository
}

// Service loads dashboard widgets. Every widget is loaded on its own and a
// failing widget is reported as unknown instead of failing the page.
type Service struct {
	repos   Repositories
	opts    Options
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(repos Repositories, opts Options, m *metrics.Metrics) *Service {
	if opts.RetryAttempts < 1 {
		opts.RetryAttempts = 1
	}
	if opts.LoaderTimeout <= 0 {
		opts.LoaderTimeout = 5 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Service{repos: repos, opts: opts, metrics: m, now: time.Now}
}

// retry runs fn up to opts.RetryAttempts times, each under its own timeout.
// It stops early when ctx ends.
func retry[T any](ctx context.Context, opts Options, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 1; attempt <= opts.RetryAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(opts.RetryDelay):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, opts.LoaderTimeout)
		v, err := fn(attemptCtx)
		cancel()
		if err == nil {
			return v, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
	}
	return zero, lastErr
}

func (s *Service) observe(loader, outcome string) {
	if s.metrics != nil {
		s.metrics.DashboardLoaderResults.WithLabelValues(loader, outcome).Inc()
	}
}

func (s *Service) count(ctx context.Context, loader string, fn func(context.Context) (int, error)) model.CountSlot {
	v, err := retry(ctx, s.opts, fn)
	if err != nil {
		if ctx.Err() == nil {
			s.observe(loader, "unknown")
			log.Warn().Err(err).Str("loader", loader).Msg("dashboard count unavailable")
		}
		return model.CountSlot{Status: model.SlotUnknown, Error: unavailable}
	}
	s.observe(loader, "ok")
	return model.CountSlot{Status: model.SlotOK, Value: v}
}

// Hospital loads the four hospital counts concurrently. It returns an error
// only when ctx ends before they finish; the caller then discards the page.
func (s *Service) Hospital(ctx context.Context, profile *model.Profile) (*model.HospitalDashboard, error) {
	hospital, hospitalErr := retry(ctx, s.opts, func(ctx context.Context) (*model.Hospital, error) {
		h, err := s.repos.Hospitals.GetByProfileID(ctx, profile.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return h, err
	})
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if hospitalErr != nil {
		log.Warn().Err(hospitalErr).Str("profile_id", profile.ID.String()).Msg("hospital lookup failed")
	}

	dash := &model.HospitalDashboard{Hospital: hospital}
	today := s.now().In(s.opts.Location).Format("2006-01-02")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dash.Patients = s.count(gctx, "patients", s.repos.Patients.Count)
		return gctx.Err()
	})
	g.Go(func() error {
		dash.ActiveEmergencies = s.count(gctx, "active_emergencies", s.repos.Emergencies.CountActive)
		return gctx.Err()
	})
	g.Go(func() error {
		dash.Doctors = s.hospitalCount(gctx, "doctors", hospital, hospitalErr, func(ctx context.Context) (int, error) {
			return s.repos.Doctors.CountByHospital(ctx, hospital.ID)
		})
		return gctx.Err()
	})
	g.Go(func() error {
		dash.AppointmentsToday = s.hospitalCount(gctx, "appointments_today", hospital, hospitalErr, func(ctx context.Context) (int, error) {
			return s.repos.Appointments.CountByHospitalOnDate(ctx, hospital.ID, today)
		})
		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dash, nil
}

// hospitalCount covers counts scoped to the caller's hospital. An
// unregistered hospital has nothing to count.
func (s *Service) hospitalCount(ctx context.Context, loader string, hospital *model.Hospital, lookupErr error,
	fn func(context.Context) (int, error)) model.CountSlot {
	switch {
	case lookupErr != nil:
		s.observe(loader, "unknown")
		return model.CountSlot{Status: model.SlotUnknown, Error: unavailable}
	case hospital == nil:
		return model.CountSlot{Status: model.SlotOK}
	}
	return s.count(ctx, loader, fn)
}

// Patient loads the caller's appointments, newest first. A patient without a
// patient row simply has none; nothing is written.
func (s *Service) Patient(ctx context.Context, profile *model.Profile) (*model.PatientDashboard, error) {
	items, err := retry(ctx, s.opts, func(ctx context.Context) ([]*model.AppointmentDetails, error) {
		patient, err := s.repos.Patients.GetByProfileID(ctx, profile.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up patient: %w", err)
		}
		return s.repos.Appointments.List(ctx, model.AppointmentFilter{PatientID: &patient.ID})
	})
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	dash := &model.PatientDashboard{Profile: profile}
	if err != nil {
		s.observe("appointments", "unknown")
		log.Warn().Err(err).Str("profile_id", profile.ID.String()).Msg("patient appointments unavailable")
		dash.Appointments = model.AppointmentsSlot{Status: model.SlotUnknown, Items: []model.AppointmentDetails{}, Error: unavailable}
		return dash, nil
	}

	s.observe("appointments", "ok")
	list := make([]model.AppointmentDetails, 0, len(items))
	for _, a := range items {
		list = append(list, *a)
	}
	dash.Appointments = model.AppointmentsSlot{Status: model.SlotOK, Items: list}
	return dash, nil
}
