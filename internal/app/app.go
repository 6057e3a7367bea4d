// Package app wires repositories, services and handlers into the API
// router. The binaries supply the storage and messaging backends.
package app

import (
	"fmt"
	"time"

	"github.com/jwalitptl/health-navigator/internal/config"
	"github.com/jwalitptl/health-navigator/internal/email"
	appointmenthandler "github.com/jwalitptl/health-navigator/internal/handler/appointment"
	authhandler "github.com/jwalitptl/health-navigator/internal/handler/auth"
	dashboardhandler "github.com/jwalitptl/health-navigator/internal/handler/dashboard"
	doctorhandler "github.com/jwalitptl/health-navigator/internal/handler/doctor"
	emergencyhandler "github.com/jwalitptl/health-navigator/internal/handler/emergency"
	"github.com/jwalitptl/health-navigator/internal/handler/health"
	hospitalhandler "github.com/jwalitptl/health-navigator/internal/handler/hospital"
	"github.com/jwalitptl/health-navigator/internal/handler/landing"
	locationhandler "github.com/jwalitptl/health-navigator/internal/handler/location"
	medicalhandler "github.com/jwalitptl/health-navigator/internal/handler/medical"
	patienthandler "github.com/jwalitptl/health-navigator/internal/handler/patient"
	profilehandler "github.com/jwalitptl/health-navigator/internal/handler/profile"
	"github.com/jwalitptl/health-navigator/internal/handler/reference"
	speechhandler "github.com/jwalitptl/health-navigator/internal/handler/speech"
	"github.com/jwalitptl/health-navigator/internal/repository/postgres"
	"github.com/jwalitptl/health-navigator/internal/router"
	appointmentService "github.com/jwalitptl/health-navigator/internal/service/appointment"
	authService "github.com/jwalitptl/health-navigator/internal/service/auth"
	dashboardService "github.com/jwalitptl/health-navigator/internal/service/dashboard"
	doctorService "github.com/jwalitptl/health-navigator/internal/service/doctor"
	emergencyService "github.com/jwalitptl/health-navigator/internal/service/emergency"
	hospitalService "github.com/jwalitptl/health-navigator/internal/service/hospital"
	locationService "github.com/jwalitptl/health-navigator/internal/service/location"
	medicalService "github.com/jwalitptl/health-navigator/internal/service/medical"
	patientService "github.com/jwalitptl/health-navigator/internal/service/patient"
	profileService "github.com/jwalitptl/health-navigator/internal/service/profile"
	"github.com/jwalitptl/health-navigator/internal/session"
	"github.com/jwalitptl/health-navigator/internal/speech"
	"github.com/jwalitptl/health-navigator/pkg/auth"
	"github.com/jwalitptl/health-navigator/pkg/messaging"
	"github.com/jwalitptl/health-navigator/pkg/metrics"
	"github.com/jwalitptl/health-navigator/pkg/security"
	"github.com/jwalitptl/health-navigator/pkg/validator"
)

const tokenIssuer = "health-navigator"

type Dependencies struct {
	Repos   *postgres.Repositories
	KV      session.KV
	Broker  messaging.Broker
	Mailer  email.Service
	Checks  map[string]health.Check
	Metrics *metrics.Metrics
}

func hours(n int) time.Duration {
	return time.Duration(n) * time.Hour
}

// NewRouter builds the full API. The returned router is already set up.
func NewRouter(cfg *config.Config, deps Dependencies) (*router.Router, error) {
	repos := deps.Repos
	m := deps.Metrics
	v := validator.New()

	cipher, err := security.NewFieldCipher(cfg.Medical.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid medical encryption key: %w", err)
	}

	sessions := session.NewStore(auth.NewJWTService(cfg.JWT.Secret, tokenIssuer), deps.KV, repos.Identities, deps.Broker,
		session.Config{TTL: hours(cfg.JWT.ExpiryHours), ConfirmTTL: hours(cfg.JWT.ConfirmExpiryHours)})
	authSvc := authService.NewService(repos.Identities, sessions, security.NewBcryptHasher(cfg.Auth.BcryptCost), deps.Mailer, v,
		authService.Options{RequireEmailConfirmation: cfg.Auth.RequireEmailConfirmation})

	resolver := profileService.NewResolver(repos.Profiles, repos.Patients, m)
	profileSvc := profileService.NewService(repos.Profiles, v)
	hospitalSvc := hospitalService.NewService(repos.Hospitals, repos.Locations, v)
	doctorSvc := doctorService.NewService(repos.Doctors, hospitalSvc, v)
	patientSvc := patientService.NewService(repos.Patients, repos.Profiles, v, m)
	appointmentSvc := appointmentService.NewService(repos.Appointments, repos.Hospitals, repos.Doctors, repos.Patients,
		resolver, v, m)
	dashboardLoc, err := time.LoadLocation(cfg.Dashboard.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid dashboard timezone: %w", err)
	}
	dashboardSvc := dashboardService.NewService(dashboardService.Repositories{
		Patients:     repos.Patients,
		Hospitals:    repos.Hospitals,
		Doctors:      repos.Doctors,
		Appointments: repos.Appointments,
		Emergencies:  repos.Emergencies,
	}, dashboardService.Options{
		RetryAttempts: cfg.Dashboard.RetryAttempts,
		RetryDelay:    cfg.Dashboard.RetryDelay,
		LoaderTimeout: cfg.Dashboard.LoaderTimeout,
		Location:      dashboardLoc,
	}, m)
	emergencySvc := emergencyService.NewService(repos.Emergencies, repos.Locations, repos.Patients, resolver, deps.Broker, v, m)
	locationSvc := locationService.NewService(repos.Locations, cfg.Locations.CacheTTL)
	medicalSvc := medicalService.NewService(repos.MedicalRecords, repos.Patients, repos.Doctors, hospitalSvc, cipher, v)
	speechSvc := speech.NewService(cfg.Speech, v, m)

	r := router.NewRouter(sessions, resolver, m, router.Handlers{
		Health:       health.NewHandler(deps.Checks),
		Auth:         authhandler.NewHandler(authSvc),
		Reference:    reference.NewHandler(),
		Locations:    locationhandler.NewHandler(locationSvc),
		Speech:       speechhandler.NewHandler(speechSvc),
		Landing:      landing.NewHandler(resolver, sessions),
		Dashboard:    dashboardhandler.NewHandler(dashboardSvc),
		Appointments: appointmenthandler.NewHandler(appointmentSvc),
		Doctors:      doctorhandler.NewHandler(doctorSvc),
		Patients:     patienthandler.NewHandler(patientSvc),
		Hospitals:    hospitalhandler.NewHandler(hospitalSvc),
		Profile:      profilehandler.NewHandler(profileSvc),
		Medical:      medicalhandler.NewHandler(medicalSvc),
		Emergencies:  emergencyhandler.NewHandler(emergencySvc),
	}, router.RouterConfig{
		Server:    cfg.Server,
		RateLimit: cfg.RateLimit,
		CORS:      cfg.CORS,
		Metrics:   cfg.Metrics,
	})
	r.Setup()
	return r, nil
}
