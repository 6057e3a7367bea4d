package dashboard

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-navigator/internal/handler/handlertest"
	"github.com/jwalitptl/health-navigator/internal/model"
)

type fakeService struct {
	err error
}

func (f *fakeService) Hospital(ctx context.Context, profile *model.Profile) (*model.HospitalDashboard, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.HospitalDashboard{
		Patients:          model.CountSlot{Status: model.SlotOK, Value: 12},
		Doctors:           model.CountSlot{Status: model.SlotUnknown, Error: "temporarily unavailable"},
		AppointmentsToday: model.CountSlot{Status: model.SlotOK, Value: 3},
		ActiveEmergencies: model.CountSlot{Status: model.SlotOK},
	}, nil
}

func (f *fakeService) Patient(ctx context.Context, profile *model.Profile) (*model.PatientDashboard, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.PatientDashboard{
		Profile:      profile,
		Appointments: model.AppointmentsSlot{Status: model.SlotOK, Items: []model.AppointmentDetails{}},
	}, nil
}

func engine(profile *model.Profile, svc Service) http.Handler {
	r := handlertest.NewEngine()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1", handlertest.As(profile)))
	return r
}

func TestDashboard_ByRole(t *testing.T) {
	hospital := handlertest.Profile(model.RoleHospital, "city-hospital")
	w := handlertest.Do(t, engine(hospital, &fakeService{}), http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var hd model.HospitalDashboard
	handlertest.Data(t, w, &hd)
	assert.Equal(t, 12, hd.Patients.Value)
	assert.Equal(t, model.SlotUnknown, hd.Doctors.Status)

	patient := handlertest.Profile(model.RolePatient, "kavya")
	w = handlertest.Do(t, engine(patient, &fakeService{}), http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var pd model.PatientDashboard
	handlertest.Data(t, w, &pd)
	assert.Equal(t, "kavya", pd.Profile.Username)
	assert.Equal(t, model.SlotOK, pd.Appointments.Status)
}

func TestDashboard_AdminHasNone(t *testing.T) {
	admin := handlertest.Profile(model.RoleAdmin, "root")
	w := handlertest.Do(t, engine(admin, &fakeService{}), http.MethodGet, "/api/v1/dashboard", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDashboard_CancelledWritesNothing(t *testing.T) {
	patient := handlertest.Profile(model.RolePatient, "kavya")
	w := handlertest.Do(t, engine(patient, &fakeService{err: context.Canceled}), http.MethodGet, "/api/v1/dashboard", nil)
	assert.Empty(t, w.Body.String())
}

func TestDashboard_DeadlineIsGatewayTimeout(t *testing.T) {
	patient := handlertest.Profile(model.RolePatient, "kavya")
	w := handlertest.Do(t, engine(patient, &fakeService{err: context.DeadlineExceeded}), http.MethodGet, "/api/v1/dashboard", nil)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}
