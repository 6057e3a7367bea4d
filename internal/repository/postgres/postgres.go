package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/health-navigator/internal/repository"
)

// Repositories bundles every postgres-backed repository.
type Repositories struct {
	Identities     repository.IdentityRepository
	Profiles       repository.ProfileRepository
	Patients       repository.PatientRepository
	Hospitals      repository.HospitalRepository
	Doctors        repository.DoctorRepository
	Appointments   repository.AppointmentRepository
	Emergencies    repository.EmergencyRepository
	Locations      repository.LocationRepository
	MedicalRecords repository.MedicalRecordRepository
	Outbox         repository.OutboxRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	base := NewBaseRepository(db)
	return &Repositories{
		Identities:     NewIdentityRepository(db),
		Profiles:       NewProfileRepository(db),
		Patients:       NewPatientRepository(base),
		Hospitals:      NewHospitalRepository(db),
		Doctors:        NewDoctorRepository(db),
		Appointments:   NewAppointmentRepository(base),
		Emergencies:    NewEmergencyRepository(base),
		Locations:      NewLocationRepository(db),
		MedicalRecords: NewMedicalRecordRepository(db),
		Outbox:         NewOutboxRepository(base),
	}
}
