package emergency

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
	raised []*model.RaiseEmergencyRequest
	alerts chan *model.EmergencyAlertDetails
}

func (f *fakeService) Raise(ctx context.Context, profile *model.Profile, req *model.RaiseEmergencyRequest) (*model.EmergencyAlertDetails, error) {
	f.raised = append(f.raised, req)
	return &model.EmergencyAlertDetails{
		EmergencyAlert: model.EmergencyAlert{AlertType: model.AlertType(req.AlertType), Status: model.EmergencyStatusActive},
		PatientName:    profile.FullName,
	}, nil
}

func (f *fakeService) List(ctx context.Context, profile *model.Profile) ([]*model.EmergencyAlertDetails, error) {
	return []*model.EmergencyAlertDetails{}, nil
}

func (f *fakeService) Stream(ctx context.Context, profile *model.Profile) (<-chan *model.EmergencyAlertDetails, error) {
	return f.alerts, nil
}

func engine(svc Service, caller *model.Profile) http.Handler {
	r := handlertest.NewEngine()
	api := r.Group("/api/v1", handlertest.As(caller))
	h := NewHandler(svc)
	h.RegisterRoutes(api)
	h.RegisterStreams(api)
	return r
}

func TestRaiseEmergency(t *testing.T) {
	svc := &fakeService{}
	patient := handlertest.Profile(model.RolePatient, "kavya")

	w := handlertest.Do(t, engine(svc, patient), http.MethodPost, "/api/v1/emergencies", map[string]string{"alert_type": "ambulance"})
	require.Equal(t, http.StatusCreated, w.Code)
	var alert model.EmergencyAlertDetails
	handlertest.Data(t, w, &alert)
	assert.Equal(t, model.AlertTypeAmbulance, alert.AlertType)

	w = handlertest.Do(t, engine(svc, handlertest.Profile(model.RoleHospital, "city")), http.MethodPost, "/api/v1/emergencies",
		map[string]string{"alert_type": "ambulance"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Len(t, svc.raised, 1)
}

func TestStreamEmergencies(t *testing.T) {
	svc := &fakeService{alerts: make(chan *model.EmergencyAlertDetails, 2)}
	svc.alerts <- &model.EmergencyAlertDetails{PatientName: "Kavya", LocationName: "Thanjavur"}
	close(svc.alerts)

	w := handlertest.Do(t, engine(svc, handlertest.Profile(model.RoleHospital, "city")), http.MethodGet, "/api/v1/emergencies/stream", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "event:emergency")
	assert.Contains(t, w.Body.String(), `"location_name":"Thanjavur"`)

	w = handlertest.Do(t, engine(svc, handlertest.Profile(model.RolePatient, "kavya")), http.MethodGet, "/api/v1/emergencies/stream", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
