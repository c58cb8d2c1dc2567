package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	allowed := map[AppointmentStatus][]AppointmentStatus{
		StatusPending:    {StatusConfirmed, StatusCancelled},
		StatusConfirmed:  {StatusInProgress, StatusCancelled},
		StatusInProgress: {StatusCompleted, StatusConfirmed},
	}

	for _, from := range AllStatuses {
		for _, to := range AllStatuses {
			want := false
			for _, next := range allowed[from] {
				if next == to {
					want = true
				}
			}
			assert.Equalf(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestParseAppointmentStatus(t *testing.T) {
	status, err := ParseAppointmentStatus(" in_progress ")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, status)

	_, err = ParseAppointmentStatus("DONE")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestParseAppointmentType(t *testing.T) {
	tp, err := ParseAppointmentType("modification")
	require.NoError(t, err)
	assert.Equal(t, TypeModification, tp)

	_, err = ParseAppointmentType("")
	assert.ErrorIs(t, err, ErrAppointmentTypeRequired)

	_, err = ParseAppointmentType("PAINT")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAppointment_Guards(t *testing.T) {
	a := &Appointment{Status: StatusPending, AssignedEmployeeIDs: []int64{7}}

	assert.True(t, a.CanBeCancelled())
	assert.True(t, a.CanBeAssigned())
	assert.True(t, a.HasEmployee(7))
	assert.False(t, a.HasEmployee(8))

	a.Status = StatusInProgress
	assert.False(t, a.CanBeCancelled())
	assert.False(t, a.CanBeAssigned())
	assert.False(t, a.IsTerminal())

	a.Status = StatusCancelled
	assert.True(t, a.IsTerminal())
	assert.False(t, a.IsActive())
}

func TestInterval_Overlaps(t *testing.T) {
	base := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	shift := NewInterval(base, 60)

	tests := []struct {
		name      string
		candidate Interval
		want      bool
	}{
		{"overlap in the middle", NewInterval(base.Add(30*time.Minute), 60), true},
		{"same interval", NewInterval(base, 60), true},
		{"contained", NewInterval(base.Add(10*time.Minute), 10), true},
		{"back to back after", NewInterval(base.Add(60*time.Minute), 60), false},
		{"back to back before", NewInterval(base.Add(-60*time.Minute), 60), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shift.Overlaps(tt.candidate))
			assert.Equal(t, tt.want, tt.candidate.Overlaps(shift))
		})
	}

	assert.False(t, NewInterval(base, 0).IsValid())
	assert.True(t, shift.IsValid())
}

func TestParseRoles(t *testing.T) {
	roles := ParseRoles("customer, EMPLOYEE,unknown,employee")
	assert.Equal(t, []Role{RoleCustomer, RoleEmployee}, roles)

	caller := Caller{UserID: 1, Roles: roles}
	assert.True(t, caller.HasRole(RoleEmployee))
	assert.False(t, caller.HasRole(RoleAdmin))
}
