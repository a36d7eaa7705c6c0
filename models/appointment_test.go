package models

import (
	"testing"
	"time"

	"github.com/safein/safein-server/schedule"
	"github.com/stretchr/testify/assert"
)

func fixedResolver(now time.Time) *schedule.Resolver {
	r := schedule.NewResolver(time.UTC)
	r.Clock = func() time.Time { return now }
	return r
}

func appointmentOn(status AppointmentStatus, date, clock string) *Appointment {
	return &Appointment{
		Status: status,
		AppointmentDetails: AppointmentDetails{
			ScheduledDate: date,
			ScheduledTime: clock,
		},
	}
}

func TestAppointment_Resolve(t *testing.T) {
	r := fixedResolver(time.Date(2025, 1, 11, 0, 1, 0, 0, time.UTC))

	a := appointmentOn(StatusPending, "2025-01-10", "14:30")
	assert.Equal(t, StatusTimeOut, a.Resolve(r))
	assert.Equal(t, StatusPending, a.Status, "stored status is untouched")

	b := appointmentOn(StatusApproved, "2025-01-10", "14:30")
	assert.Equal(t, StatusApproved, b.Resolve(r))

	list := []Appointment{*appointmentOn(StatusPending, "2025-01-11", "09:00"), *a}
	ResolveAll(list, r)
	assert.Equal(t, StatusPending, list[0].EffectiveStatus)
	assert.Equal(t, StatusTimeOut, list[1].EffectiveStatus)
}

func TestAppointment_CanTransition(t *testing.T) {
	r := fixedResolver(time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC))

	tests := []struct {
		from, to AppointmentStatus
		ok       bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCheckedIn, false},
		{StatusApproved, StatusCheckedIn, true},
		{StatusApproved, StatusCompleted, false},
		{StatusCheckedIn, StatusCompleted, true},
		{StatusCompleted, StatusPending, false},
		{StatusRejected, StatusApproved, false},
		{StatusPending, StatusTimeOut, false},
	}
	for _, tt := range tests {
		a := appointmentOn(tt.from, "2025-01-10", "10:00")
		err := a.CanTransition(tt.to, r)
		if tt.ok {
			assert.NoError(t, err, "%s -> %s", tt.from, tt.to)
		} else {
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", tt.from, tt.to)
		}
	}
}

func TestAppointment_TimedOutCanOnlyBeCancelled(t *testing.T) {
	r := fixedResolver(time.Date(2025, 1, 12, 8, 0, 0, 0, time.UTC))
	a := appointmentOn(StatusPending, "2025-01-10", "10:00")

	assert.ErrorIs(t, a.CanTransition(StatusApproved, r), ErrInvalidTransition)
	assert.NoError(t, a.CanTransition(StatusCancelled, r))
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("checked_in")
	assert.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, st)

	_, err = ParseStatus("archived")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestAppointmentDetails_Normalize(t *testing.T) {
	d := AppointmentDetails{ScheduledDate: "2025-1-5T00:00:00Z", ScheduledTime: "9 pm"}
	moment, ok := d.Normalize(time.UTC)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, 1, 5, 21, 0, 0, 0, time.UTC), moment)
	assert.Equal(t, "2025-01-05", d.ScheduledDate)
	assert.Equal(t, "21:00", d.ScheduledTime)

	blank := AppointmentDetails{ScheduledDate: "2025-03-04", ScheduledTime: "  "}
	_, ok = blank.Normalize(time.UTC)
	assert.True(t, ok)
	assert.Equal(t, "2025-03-04", blank.ScheduledDate)
	assert.Empty(t, blank.ScheduledTime)

	bad := AppointmentDetails{ScheduledDate: "soon", ScheduledTime: "10:00"}
	_, ok = bad.Normalize(time.UTC)
	assert.False(t, ok)
	assert.Equal(t, "soon", bad.ScheduledDate)
}
