package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"patient", "hospital", "admin"} {
		r, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, s, r.String())
	}

	_, err := ParseRole("doctor")
	var unknown *ErrUnknownRole
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "doctor", unknown.Value)

	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestSignUpSelectable(t *testing.T) {
	assert.True(t, RolePatient.SignUpSelectable())
	assert.True(t, RoleHospital.SignUpSelectable())
	assert.False(t, RoleAdmin.SignUpSelectable())
}

func TestNewOutboxEvent(t *testing.T) {
	ev, err := NewOutboxEvent("appointment.booked", map[string]string{"id": "a1"})
	require.NoError(t, err)
	assert.Equal(t, OutboxStatusPending, ev.Status)
	assert.JSONEq(t, `{"id":"a1"}`, string(ev.Payload))
}
