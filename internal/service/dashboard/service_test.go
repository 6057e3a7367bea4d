package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository/repotest"
	"github.com/jwalitptl/health-navigator/pkg/metrics"
)

var fixedNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func newService(store *repotest.Store, attempts int) *Service {
	svc := NewService(Repositories{
		Patients:     store.Patients(),
		Hospitals:    store.Hospitals(),
		Doctors:      store.Doctors(),
		Appointments: store.Appointments(),
		Emergencies:  store.Emergencies(),
	}, Options{RetryAttempts: attempts, RetryDelay: time.Millisecond, LoaderTimeout: time.Second}, metrics.NewMetrics("test"))
	svc.now = func() time.Time { return fixedNow }
	return svc
}

type seeded struct {
	hospitalProfile *model.Profile
	hospital        *model.Hospital
	patientProfile  *model.Profile
	patient         *model.Patient
}

func seed(t *testing.T, store *repotest.Store) seeded {
	t.Helper()
	ctx := context.Background()

	hp := &model.Profile{IdentityID: uuid.New(), Username: "cityhosp", FullName: "City", Role: model.RoleHospital}
	require.NoError(t, store.Profiles().Create(ctx, hp))
	h := &model.Hospital{ProfileID: hp.ID, HospitalName: "City Hospital", Address: "Main Rd", Phone: "0000000", LocationID: uuid.New()}
	require.NoError(t, store.Hospitals().Create(ctx, h))
	other := &model.Hospital{ProfileID: uuid.New(), HospitalName: "Other", Address: "x", Phone: "1", LocationID: uuid.New()}
	require.NoError(t, store.Hospitals().Create(ctx, other))

	pp := &model.Profile{IdentityID: uuid.New(), Username: "alice", FullName: "Alice", Role: model.RolePatient}
	require.NoError(t, store.Profiles().Create(ctx, pp))
	p := &model.Patient{ProfileID: pp.ID}
	require.NoError(t, store.Patients().Create(ctx, p))

	for _, name := range []string{"Dr. A", "Dr. B"} {
		require.NoError(t, store.Doctors().Create(ctx, &model.Doctor{HospitalID: h.ID, Name: name, Specialization: "General"}))
	}
	require.NoError(t, store.Doctors().Create(ctx, &model.Doctor{HospitalID: other.ID, Name: "Dr. C", Specialization: "General"}))

	for _, a := range []model.Appointment{
		{PatientID: p.ID, HospitalID: h.ID, AppointmentDate: "2026-10-19", AppointmentTime: "09:30"},
		{PatientID: p.ID, HospitalID: h.ID, AppointmentDate: "2026-10-19", AppointmentTime: "11:00"},
		{PatientID: p.ID, HospitalID: h.ID, AppointmentDate: "2026-10-22", AppointmentTime: "08:00"},
		{PatientID: p.ID, HospitalID: other.ID, AppointmentDate: "2026-10-19", AppointmentTime: "10:00"},
	} {
		appt := a
		require.NoError(t, store.Appointments().Create(ctx, &appt))
	}

	require.NoError(t, store.Emergencies().Create(ctx, &model.EmergencyAlert{PatientID: p.ID, LocationID: uuid.New(), AlertType: model.AlertTypeAmbulance}))
	require.NoError(t, store.Emergencies().Create(ctx, &model.EmergencyAlert{PatientID: p.ID, LocationID: uuid.New(), AlertType: model.AlertTypeCritical, Status: model.EmergencyStatusResolved}))

	return seeded{hospitalProfile: hp, hospital: h, patientProfile: pp, patient: p}
}

func ok(v int) model.CountSlot {
	return model.CountSlot{Status: model.SlotOK, Value: v}
}

func TestHospitalDashboard(t *testing.T) {
	store := repotest.NewStore()
	s := seed(t, store)

	dash, err := newService(store, 2).Hospital(context.Background(), s.hospitalProfile)
	require.NoError(t, err)
	require.NotNil(t, dash.Hospital)
	assert.Equal(t, s.hospital.ID, dash.Hospital.ID)
	assert.Equal(t, ok(1), dash.Patients)
	assert.Equal(t, ok(2), dash.Doctors)
	assert.Equal(t, ok(2), dash.AppointmentsToday)
	assert.Equal(t, ok(1), dash.ActiveEmergencies)
}

func TestHospitalDashboard_TodayFollowsConfiguredLocation(t *testing.T) {
	store := repotest.NewStore()
	s := seed(t, store)
	repos := Repositories{
		Patients:     store.Patients(),
		Hospitals:    store.Hospitals(),
		Doctors:      store.Doctors(),
		Appointments: store.Appointments(),
		Emergencies:  store.Emergencies(),
	}
	lateEvening := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)

	utc := NewService(repos, Options{LoaderTimeout: time.Second}, nil)
	utc.now = func() time.Time { return lateEvening }
	dash, err := utc.Hospital(context.Background(), s.hospitalProfile)
	require.NoError(t, err)
	assert.Equal(t, ok(2), dash.AppointmentsToday)

	ist := NewService(repos, Options{LoaderTimeout: time.Second, Location: time.FixedZone("IST", 5*3600+1800)}, nil)
	ist.now = func() time.Time { return lateEvening }
	dash, err = ist.Hospital(context.Background(), s.hospitalProfile)
	require.NoError(t, err)
	assert.Equal(t, ok(0), dash.AppointmentsToday, "it is already 20 October in India")
}

func TestHospitalDashboard_TransientFailureRetried(t *testing.T) {
	store := repotest.NewStore()
	s := seed(t, store)
	store.Fail("doctors.count", errors.New("timeout"), 1)

	dash, err := newService(store, 2).Hospital(context.Background(), s.hospitalProfile)
	require.NoError(t, err)
	assert.Equal(t, ok(2), dash.Doctors)
	assert.Equal(t, 2, store.Calls("doctors.count"))
}

func TestHospitalDashboard_PersistentFailureIsolated(t *testing.T) {
	store := repotest.NewStore()
	s := seed(t, store)
	store.Fail("emergencies.count", errors.New("relation does not exist"), 0)

	dash, err := newService(store, 2).Hospital(context.Background(), s.hospitalProfile)
	require.NoError(t, err)
	assert.Equal(t, model.SlotUnknown, dash.ActiveEmergencies.Status)
	assert.NotContains(t, dash.ActiveEmergencies.Error, "relation")
	assert.Equal(t, 2, store.Calls("emergencies.count"))

	assert.Equal(t, ok(1), dash.Patients)
	assert.Equal(t, ok(2), dash.Doctors)
	assert.Equal(t, ok(2), dash.AppointmentsToday)
}

func TestHospitalDashboard_HospitalLookupFailure(t *testing.T) {
	store := repotest.NewStore()
	s := seed(t, store)
	store.Fail("hospitals.get", errors.New("down"), 0)

	dash, err := newService(store, 1).Hospital(context.Background(), s.hospitalProfile)
	require.NoError(t, err)
	assert.Nil(t, dash.Hospital)
	assert.Equal(t, model.SlotUnknown, dash.Doctors.Status)
	assert.Equal(t, model.SlotUnknown, dash.AppointmentsToday.Status)
	assert.Equal(t, ok(1), dash.Patients)
	assert.Zero(t, store.Calls("doctors.count"))
}

func TestHospitalDashboard_UnregisteredHospital(t *testing.T) {
	store := repotest.NewStore()
	seed(t, store)

	profile := &model.Profile{Base: model.Base{ID: uuid.New()}, Role: model.RoleHospital}
	dash, err := newService(store, 2).Hospital(context.Background(), profile)
	require.NoError(t, err)
	assert.Nil(t, dash.Hospital)
	assert.Equal(t, ok(0), dash.Doctors)
	assert.Equal(t, ok(0), dash.AppointmentsToday)
}

func TestHospitalDashboard_CancelledContextDiscarded(t *testing.T) {
	store := repotest.NewStore()
	s := seed(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dash, err := newService(store, 2).Hospital(ctx, s.hospitalProfile)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, dash)
}

func TestPatientDashboard_NewestFirst(t *testing.T) {
	store := repotest.NewStore()
	s := seed(t, store)

	dash, err := newService(store, 2).Patient(context.Background(), s.patientProfile)
	require.NoError(t, err)
	assert.Equal(t, model.SlotOK, dash.Appointments.Status)
	require.Len(t, dash.Appointments.Items, 4)
	assert.Equal(t, "2026-10-22", dash.Appointments.Items[0].AppointmentDate)
	assert.Equal(t, "11:00", dash.Appointments.Items[1].AppointmentTime)
	assert.Equal(t, "10:00", dash.Appointments.Items[2].AppointmentTime)
	assert.Equal(t, "09:30", dash.Appointments.Items[3].AppointmentTime)
}

func TestPatientDashboard_NoPatientRowNoWrite(t *testing.T) {
	store := repotest.NewStore()
	seed(t, store)
	writes := store.Writes()

	profile := &model.Profile{Base: model.Base{ID: uuid.New()}, Role: model.RolePatient}
	dash, err := newService(store, 2).Patient(context.Background(), profile)
	require.NoError(t, err)
	assert.Equal(t, model.SlotOK, dash.Appointments.Status)
	assert.Empty(t, dash.Appointments.Items)
	assert.Equal(t, writes, store.Writes())
}

func TestPatientDashboard_FailureIsUnknown(t *testing.T) {
	store := repotest.NewStore()
	s := seed(t, store)
	store.Fail("appointments.list", errors.New("down"), 0)

	dash, err := newService(store, 2).Patient(context.Background(), s.patientProfile)
	require.NoError(t, err)
	assert.Equal(t, model.SlotUnknown, dash.Appointments.Status)
	assert.NotNil(t, dash.Appointments.Items)
	assert.Equal(t, 2, store.Calls("appointments.list"))
}
