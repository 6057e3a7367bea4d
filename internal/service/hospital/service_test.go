package hospital

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository/repotest"
	apperrors "github.com/jwalitptl/health-navigator/pkg/errors"
	"github.com/jwalitptl/health-navigator/pkg/validator"
)

func TestRegisterThenUpdate(t *testing.T) {
	store := repotest.NewStore()
	loc := store.SeedLocation("Madurai", "Tamil Nadu")
	svc := NewService(store.Hospitals(), store.Locations(), validator.New())
	ctx := context.Background()
	caller := &model.Profile{Base: model.Base{ID: uuid.New()}, Role: model.RoleHospital}

	_, err := svc.ForProfile(ctx, caller)
	assert.ErrorIs(t, err, ErrNotRegistered)

	req := &model.RegisterHospitalRequest{
		HospitalName: "Madurai General",
		Address:      "1 Temple St",
		Phone:        "04520000000",
		LocationID:   loc.ID.String(),
	}
	h, created, err := svc.Register(ctx, caller, req)
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, h.IsVerified)

	req.HospitalName = "Madurai General Hospital"
	updated, created, err := svc.Register(ctx, caller, req)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, h.ID, updated.ID)

	got, err := svc.ForProfile(ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, "Madurai General Hospital", got.HospitalName)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRegister_UnknownLocation(t *testing.T) {
	store := repotest.NewStore()
	svc := NewService(store.Hospitals(), store.Locations(), validator.New())
	caller := &model.Profile{Base: model.Base{ID: uuid.New()}, Role: model.RoleHospital}

	_, _, err := svc.Register(context.Background(), caller, &model.RegisterHospitalRequest{
		HospitalName: "X Hospital", Address: "Road", Phone: "04520000000", LocationID: uuid.NewString(),
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))
	assert.Zero(t, store.Calls("hospitals.create"))
}

func TestRegister_BlankFieldsRejected(t *testing.T) {
	store := repotest.NewStore()
	loc := store.SeedLocation("Madurai", "Tamil Nadu")
	svc := NewService(store.Hospitals(), store.Locations(), validator.New())
	caller := &model.Profile{Base: model.Base{ID: uuid.New()}, Role: model.RoleHospital}

	_, _, err := svc.Register(context.Background(), caller, &model.RegisterHospitalRequest{
		HospitalName: "    ", Address: " ", Phone: "04520000000", LocationID: loc.ID.String(),
	})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	assert.Contains(t, appErr.Fields, "hospital_name")
	assert.Contains(t, appErr.Fields, "address")
	assert.Zero(t, store.Calls("hospitals.create"))
	assert.Zero(t, store.Calls("hospitals.update"))
}

func TestRegister_PatientsForbidden(t *testing.T) {
	store := repotest.NewStore()
	svc := NewService(store.Hospitals(), store.Locations(), validator.New())
	caller := &model.Profile{Base: model.Base{ID: uuid.New()}, Role: model.RolePatient}

	_, _, err := svc.Register(context.Background(), caller, &model.RegisterHospitalRequest{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
}
