package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

var profileRowColumns = []string{
	"id", "identity_id", "username", "full_name", "phone", "user_type", "location_id", "created_at", "updated_at",
}

func TestProfileGetByIdentityID_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProfileRepository(db)

	id, identityID := uuid.New(), uuid.New()
	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM profiles WHERE identity_id = \$1`).
		WithArgs(identityID.String()).
		WillReturnRows(sqlmock.NewRows(profileRowColumns).
			AddRow(id.String(), identityID.String(), "alice", "Alice", "9999999999", "patient", nil, now, now))

	profile, err := repo.GetByIdentityID(context.Background(), identityID)
	require.NoError(t, err)
	assert.Equal(t, id, profile.ID)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, model.RolePatient, profile.Role)
	require.NotNil(t, profile.Phone)
	assert.Equal(t, "9999999999", *profile.Phone)
	assert.Nil(t, profile.LocationID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileGetByIdentityID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM profiles`).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByIdentityID(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, repository.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileCreate_UsernameConflict(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectQuery(`INSERT INTO profiles`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: repository.ConstraintProfileUsername})

	err := repo.Create(context.Background(), &model.Profile{
		IdentityID: uuid.New(),
		Username:   "alice",
		FullName:   "Alice",
		Role:       model.RolePatient,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrConflict))
	assert.True(t, repository.IsConstraint(err, repository.ConstraintProfileUsername))
	assert.False(t, repository.IsConstraint(err, repository.ConstraintProfileIdentity))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentCreate_WritesOutboxInSameTransaction(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAppointmentRepository(NewBaseRepository(db))

	now := time.Now()
	event, err := model.NewOutboxEvent("appointment.booked", map[string]string{"reason": "fever"})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), nil, "2026-10-21", "09:30", "fever", nil).
		WillReturnRows(sqlmock.NewRows([]string{"status", "to_char", "to_char", "created_at", "updated_at"}).
			AddRow("scheduled", "2026-10-21", "09:30", now, now))
	mock.ExpectQuery(`INSERT INTO outbox_events`).
		WithArgs(event.ID.String(), "appointment.booked", `{"reason":"fever"}`, "PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	reason := "fever"
	appt := &model.Appointment{
		PatientID:       uuid.New(),
		HospitalID:      uuid.New(),
		AppointmentDate: "2026-10-21",
		AppointmentTime: "09:30",
		Reason:          &reason,
	}
	require.NoError(t, repo.Create(context.Background(), appt, event))

	assert.NotEqual(t, uuid.Nil, appt.ID)
	assert.Equal(t, model.AppointmentStatusScheduled, appt.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentCreate_RollsBackOnOutboxFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAppointmentRepository(NewBaseRepository(db))

	now := time.Now()
	event, err := model.NewOutboxEvent("appointment.booked", map[string]string{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO appointments`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "to_char", "to_char", "created_at", "updated_at"}).
			AddRow("scheduled", "2026-10-21", "09:30", now, now))
	mock.ExpectQuery(`INSERT INTO outbox_events`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = repo.Create(context.Background(), &model.Appointment{
		PatientID:       uuid.New(),
		HospitalID:      uuid.New(),
		AppointmentDate: "2026-10-21",
		AppointmentTime: "09:30",
	}, event)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentList_NewestFirstForPatient(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAppointmentRepository(NewBaseRepository(db))

	patientID := uuid.New()
	now := time.Now()
	cols := []string{
		"id", "patient_id", "hospital_id", "doctor_id", "appointment_date", "appointment_time",
		"status", "reason", "notes", "created_at", "updated_at", "hospital_name", "doctor_name", "patient_name",
	}
	mock.ExpectQuery(`WHERE a\.patient_id = \$1 ORDER BY a\.appointment_date DESC, a\.appointment_time DESC`).
		WithArgs(patientID.String()).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(uuid.NewString(), patientID.String(), uuid.NewString(), nil, "2026-10-22", "10:00",
				"scheduled", "checkup", nil, now, now, "City Hospital", nil, "Alice").
			AddRow(uuid.NewString(), patientID.String(), uuid.NewString(), uuid.NewString(), "2026-10-20", "08:15",
				"completed", nil, nil, now, now, "Rural Clinic", "Dr. Rao", "Alice"))

	list, err := repo.List(context.Background(), model.AppointmentFilter{PatientID: &patientID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2026-10-22", list[0].AppointmentDate)
	assert.Equal(t, "City Hospital", list[0].HospitalName)
	assert.Nil(t, list[0].DoctorID)
	require.NotNil(t, list[1].DoctorName)
	assert.Equal(t, "Dr. Rao", *list[1].DoctorName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoctorList_BuildsFilters(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewDoctorRepository(db)

	hospitalID := uuid.New()
	mock.ExpectQuery(`d\.name ILIKE \$1 OR d\.specialization ILIKE \$1\) AND d\.specialization = \$2 AND d\.hospital_id = \$3 ORDER BY d\.name`).
		WithArgs("%car%", "Cardiology", hospitalID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "hospital_id", "name", "specialization", "hospital_name"}))

	doctors, err := repo.List(context.Background(), model.DoctorFilter{
		Query:          "car",
		Specialization: "Cardiology",
		HospitalID:     &hospitalID,
	})
	require.NoError(t, err)
	assert.Empty(t, doctors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientCount(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPatientRepository(NewBaseRepository(db))

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM patients`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmergencyCountActive(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEmergencyRepository(NewBaseRepository(db))

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM emergency_alerts WHERE status = \$1`).
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.CountActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxUpdateStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOutboxRepository(NewBaseRepository(db))

	id := uuid.New()
	mock.ExpectExec(`UPDATE outbox_events`).
		WithArgs("PROCESSED", nil, id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), id, model.OutboxStatusProcessed, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdentityMarkConfirmed_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewIdentityRepository(db)

	mock.ExpectExec(`UPDATE identities`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkConfirmed(context.Background(), uuid.New(), time.Now())
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := LoadMigrations(migrationFiles)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, 2, migrations[1].Version)
	assert.Contains(t, migrations[0].SQL, "CREATE TABLE IF NOT EXISTS profiles")
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%alice%", likePattern("alice"))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
}
