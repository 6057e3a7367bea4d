// Package repotest provides an in-memory implementation of every repository
// interface, with per-operation call counting and failure injection.
package repotest

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository"
)

type failure struct {
	err   error
	times int
}

// Store holds every table in memory. The zero value is not usable; call NewStore.
type Store struct {
	mu sync.Mutex

	identities     map[uuid.UUID]model.Identity
	profiles       map[uuid.UUID]model.Profile
	patients       map[uuid.UUID]model.Patient
	hospitals      map[uuid.UUID]model.Hospital
	doctors        map[uuid.UUID]model.Doctor
	appointments   map[uuid.UUID]model.Appointment
	emergencies    map[uuid.UUID]model.EmergencyAlert
	locations      map[uuid.UUID]model.Location
	medicalRecords map[uuid.UUID]model.MedicalRecord
	outbox         []*model.OutboxEvent

	calls    map[string]int
	failures map[string]*failure
	before   map[string]func()
	writes   int
}

func NewStore() *Store {
	return &Store{
		identities:     map[uuid.UUID]model.Identity{},
		profiles:       map[uuid.UUID]model.Profile{},
		patients:       map[uuid.UUID]model.Patient{},
		hospitals:      map[uuid.UUID]model.Hospital{},
		doctors:        map[uuid.UUID]model.Doctor{},
		appointments:   map[uuid.UUID]model.Appointment{},
		emergencies:    map[uuid.UUID]model.EmergencyAlert{},
		locations:      map[uuid.UUID]model.Location{},
		medicalRecords: map[uuid.UUID]model.MedicalRecord{},
		calls:          map[string]int{},
		failures:       map[string]*failure{},
		before:         map[string]func(){},
	}
}

// Fail makes op return err for the next times calls; times <= 0 means always.
func (s *Store) Fail(op string, err error, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = &failure{err: err, times: times}
}

// Before registers fn to run, outside the store lock, at the start of op.
func (s *Store) Before(op string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.before[op] = fn
}

// Calls reports how many times op was invoked.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Writes reports the number of successful inserts and updates.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// enter counts the call, runs any hook and returns the injected failure.
// On success the store lock is held and must be released by the caller.
func (s *Store) enter(op string) error {
	s.mu.Lock()
	s.calls[op]++
	hook := s.before[op]
	s.mu.Unlock()

	if hook != nil {
		hook()
	}

	s.mu.Lock()
	if f, ok := s.failures[op]; ok {
		if f.times > 0 {
			f.times--
			if f.times == 0 {
				delete(s.failures, op)
			}
		}
		s.mu.Unlock()
		return f.err
	}
	return nil
}

func (s *Store) addOutbox(events []*model.OutboxEvent) {
	for _, ev := range events {
		if ev != nil {
			cp := *ev
			s.outbox = append(s.outbox, &cp)
		}
	}
}

// OutboxEvents returns a copy of the written outbox events.
func (s *Store) OutboxEvents() []model.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.OutboxEvent, 0, len(s.outbox))
	for _, ev := range s.outbox {
		out = append(out, *ev)
	}
	return out
}

func conflict(constraint string) error {
	return &repository.ConflictError{Constraint: constraint}
}

func (s *Store) Identities() repository.IdentityRepository { return &identityRepo{s} }

func (s *Store) Profiles() repository.ProfileRepository { return &profileRepo{s} }

func (s *Store) Patients() repository.PatientRepository { return &patientRepo{s} }

func (s *Store) Hospitals() repository.HospitalRepository { return &hospitalRepo{s} }

func (s *Store) Doctors() repository.DoctorRepository { return &doctorRepo{s} }

func (s *Store) Appointments() repository.AppointmentRepository { return &appointmentRepo{s} }

func (s *Store) Emergencies() repository.EmergencyRepository { return &emergencyRepo{s} }

func (s *Store) Locations() repository.LocationRepository { return &locationRepo{s} }

func (s *Store) MedicalRecords() repository.MedicalRecordRepository { return &medicalRecordRepo{s} }

func (s *Store) Outbox() repository.OutboxRepository { return &outboxRepo{s} }
