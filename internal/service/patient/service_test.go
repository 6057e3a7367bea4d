package patient

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository/repotest"
	apperrors "github.com/jwalitptl/health-navigator/pkg/errors"
	"github.com/jwalitptl/health-navigator/pkg/messaging"
	"github.com/jwalitptl/health-navigator/pkg/metrics"
	"github.com/jwalitptl/health-navigator/pkg/validator"
)

var hospitalCaller = &model.Profile{Base: model.Base{ID: uuid.New()}, Username: "cityhosp", Role: model.RoleHospital}

func setup(t *testing.T) (*Service, *repotest.Store, *model.Profile) {
	t.Helper()
	store := repotest.NewStore()
	phone := "9999999999"
	p := &model.Profile{IdentityID: uuid.New(), Username: "ravi", FullName: "Ravi", Phone: &phone, Role: model.RolePatient}
	require.NoError(t, store.Profiles().Create(context.Background(), p))
	return NewService(store.Patients(), store.Profiles(), validator.New(), metrics.NewMetrics("test")), store, p
}

func TestAdd_ByPhoneCreatesOnePatient(t *testing.T) {
	svc, store, p := setup(t)
	ctx := context.Background()

	before, err := svc.Count(ctx)
	require.NoError(t, err)

	res, err := svc.Add(ctx, hospitalCaller, &model.AddPatientRequest{Phone: "9999999999"})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, p.ID, res.Patient.ProfileID)

	after, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)

	events := store.OutboxEvents()
	require.Len(t, events, 1)
	assert.Equal(t, messaging.ChannelPatientLinked, events[0].EventType)
}

func TestAdd_FallsBackToUsername(t *testing.T) {
	svc, store, p := setup(t)

	res, err := svc.Add(context.Background(), hospitalCaller, &model.AddPatientRequest{Phone: "1111111111", Username: "ravi"})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, p.ID, res.Patient.ProfileID)
	assert.Equal(t, 1, store.Calls("profiles.find_phone"))
	assert.Equal(t, 1, store.Calls("profiles.find_username"))
}

func TestAdd_ExistingPatientNotDuplicated(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()

	first, err := svc.Add(ctx, hospitalCaller, &model.AddPatientRequest{Username: "ravi"})
	require.NoError(t, err)
	writes := store.Writes()

	second, err := svc.Add(ctx, hospitalCaller, &model.AddPatientRequest{Username: "ravi"})
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Patient.ID, second.Patient.ID)
	assert.Equal(t, writes, store.Writes())
}

func TestAdd_NoMatchIsSurfacedWithZeroWrites(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()
	writes := store.Writes()
	before, _ := svc.Count(ctx)

	_, err := svc.Add(ctx, hospitalCaller, &model.AddPatientRequest{Phone: "1234567890", Username: "nobody"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoMatchingProfile)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))

	after, _ := svc.Count(ctx)
	assert.Equal(t, before, after)
	assert.Equal(t, writes, store.Writes())
	assert.Zero(t, store.Calls("patients.create"))
}

func TestAdd_RequiresPhoneOrUsername(t *testing.T) {
	svc, store, _ := setup(t)

	_, err := svc.Add(context.Background(), hospitalCaller, &model.AddPatientRequest{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))
	assert.Zero(t, store.Calls("profiles.find_phone"))
}

func TestAdd_LookupFailureIsNotAMiss(t *testing.T) {
	svc, store, _ := setup(t)
	store.Fail("profiles.find_phone", errors.New("conn reset"), 1)

	_, err := svc.Add(context.Background(), hospitalCaller, &model.AddPatientRequest{Phone: "9999999999", Username: "ravi"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoMatchingProfile)
	assert.Zero(t, store.Calls("profiles.find_username"))
}

func TestAdd_RejectsNonPatientProfile(t *testing.T) {
	svc, store, _ := setup(t)
	require.NoError(t, store.Profiles().Create(context.Background(),
		&model.Profile{IdentityID: uuid.New(), Username: "otherhosp", FullName: "Other", Role: model.RoleHospital}))

	_, err := svc.Add(context.Background(), hospitalCaller, &model.AddPatientRequest{Username: "otherhosp"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
	assert.Zero(t, store.Calls("patients.create"))
}

func TestAdd_PhoneSharedWithHospitalFallsBackToUsername(t *testing.T) {
	svc, store, p := setup(t)
	shared := "8888888888"
	require.NoError(t, store.Profiles().Create(context.Background(),
		&model.Profile{IdentityID: uuid.New(), Username: "villageclinic", FullName: "Clinic", Phone: &shared, Role: model.RoleHospital}))

	res, err := svc.Add(context.Background(), hospitalCaller, &model.AddPatientRequest{Phone: shared, Username: "ravi"})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, p.ID, res.Patient.ProfileID)
	assert.Equal(t, 1, store.Calls("profiles.find_username"))

	_, err = svc.Add(context.Background(), hospitalCaller, &model.AddPatientRequest{Phone: shared})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
	assert.Equal(t, 1, store.Calls("patients.create"))
}

func TestList_OnlyHospitals(t *testing.T) {
	svc, _, p := setup(t)
	ctx := context.Background()
	_, err := svc.Add(ctx, hospitalCaller, &model.AddPatientRequest{Username: "ravi"})
	require.NoError(t, err)

	list, err := svc.List(ctx, hospitalCaller, "rav")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ravi", list[0].FullName)

	_, err = svc.List(ctx, p, "")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
}
