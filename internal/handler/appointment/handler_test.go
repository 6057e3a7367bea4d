package appointment

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jwalitptl/health-navigator/internal/handler/handlertest"
	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository/repotest"
	"github.com/jwalitptl/health-navigator/internal/service/appointment"
	"github.com/jwalitptl/health-navigator/internal/service/profile"
	"github.com/jwalitptl/health-navigator/pkg/validator"
)

type fixture struct {
	store    *repotest.Store
	patient  *model.Profile
	hospital *model.Profile
	row      *model.Hospital
	handler  *Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := repotest.NewStore()

	patient := handlertest.Profile(model.RolePatient, "kavya")
	require.NoError(t, store.Profiles().Create(ctx, patient))
	hospital := handlertest.Profile(model.RoleHospital, "city-hospital")
	require.NoError(t, store.Profiles().Create(ctx, hospital))
	row := &model.Hospital{ProfileID: hospital.ID, HospitalName: "City Hospital", Address: "Main Rd", Phone: "0000000", LocationID: uuid.New()}
	require.NoError(t, store.Hospitals().Create(ctx, row))

	resolver := profile.NewResolver(store.Profiles(), store.Patients(), nil)
	svc := appointment.NewService(store.Appointments(), store.Hospitals(), store.Doctors(), store.Patients(), resolver,
		validator.New(), nil)
	return &fixture{store: store, patient: patient, hospital: hospital, row: row, handler: NewHandler(svc)}
}

func (f *fixture) as(p *model.Profile) http.Handler {
	r := handlertest.NewEngine()
	f.handler.RegisterRoutes(r.Group("/api/v1", handlertest.As(p)))
	return r
}

func TestBookThenList(t *testing.T) {
	f := newFixture(t)

	w := handlertest.Do(t, f.as(f.patient), http.MethodPost, "/api/v1/appointments", map[string]string{
		"hospital_id": f.row.ID.String(),
		"date":        "2026-11-02",
		"time":        "09:30",
		"reason":      "fever",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var booked model.Appointment
	handlertest.Data(t, w, &booked)
	assert.Equal(t, model.AppointmentStatusScheduled, booked.Status)

	for _, p := range []*model.Profile{f.patient, f.hospital} {
		w = handlertest.Do(t, f.as(p), http.MethodGet, "/api/v1/appointments", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var days []model.AppointmentDay
		handlertest.Data(t, w, &days)
		require.Len(t, days, 1, p.Username)
		assert.Equal(t, "2026-11-02", days[0].Date)
		assert.Len(t, days[0].Appointments, 1)
	}
}

func TestBook_ValidationNeverWrites(t *testing.T) {
	f := newFixture(t)

	w := handlertest.Do(t, f.as(f.patient), http.MethodPost, "/api/v1/appointments", map[string]string{
		"hospital_id": f.row.ID.String(),
		"date":        "02/11/2026",
		"time":        "9.30am",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	_, fields := handlertest.Error(t, w)
	assert.Contains(t, fields, "date")
	assert.Contains(t, fields, "time")
	assert.Zero(t, f.store.Calls("appointments.create"))
}

func TestBook_HospitalsForbidden(t *testing.T) {
	f := newFixture(t)

	w := handlertest.Do(t, f.as(f.hospital), http.MethodPost, "/api/v1/appointments", map[string]string{
		"hospital_id": f.row.ID.String(), "date": "2026-11-02", "time": "09:30",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBook_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.Fail("appointments.create", errors.New("connection reset"), 1)

	w := handlertest.Do(t, f.as(f.patient), http.MethodPost, "/api/v1/appointments", map[string]string{
		"hospital_id": f.row.ID.String(), "date": "2026-11-02", "time": "09:30",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	msg, _ := handlertest.Error(t, w)
	assert.Equal(t, "internal server error", msg)
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	handlertest.Do(t, f.as(f.patient), http.MethodPost, "/api/v1/appointments", map[string]string{
		"hospital_id": f.row.ID.String(), "date": "2026-11-02", "time": "09:30",
	})

	w := handlertest.Do(t, f.as(f.hospital), http.MethodGet, "/api/v1/appointments/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	book, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows(book.GetSheetName(0))
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	w = handlertest.Do(t, f.as(f.patient), http.MethodGet, "/api/v1/appointments/export", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
