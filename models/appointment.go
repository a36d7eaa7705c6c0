package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/safein/safein-server/schedule"
	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusApproved  AppointmentStatus = "approved"
	StatusRejected  AppointmentStatus = "rejected"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCheckedIn AppointmentStatus = "checked_in"

	// StatusTimeOut is derived from pending appointments whose day has
	// passed. It is never stored.
	StatusTimeOut AppointmentStatus = schedule.StatusTimeOut
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownStatus     = errors.New("unknown appointment status")
)

var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:  {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn: {StatusCompleted},
}

// ParseStatus validates a status coming from a request. time_out is accepted
// because it is a valid filter value.
func ParseStatus(s string) (AppointmentStatus, error) {
	switch st := AppointmentStatus(s); st {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted,
		StatusCancelled, StatusCheckedIn, StatusTimeOut:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

type AppointmentDetails struct {
	ScheduledDate string `json:"scheduledDate" gorm:"size:40;index" validate:"required"`
	ScheduledTime string `json:"scheduledTime" gorm:"size:20"`
	Purpose       string `json:"purpose" validate:"required,max=255"`
	Notes         string `json:"notes" gorm:"type:text"`
}

// Normalize parses the scheduled date and time in loc and rewrites them as
// YYYY-MM-DD and HH:MM so stored values compare as strings. An empty time is
// kept empty. It reports false when the date cannot be read.
func (d *AppointmentDetails) Normalize(loc *time.Location) (time.Time, bool) {
	moment, ok := schedule.ParseScheduledMoment(d.ScheduledDate, d.ScheduledTime, loc)
	if !ok {
		return time.Time{}, false
	}
	d.ScheduledDate = moment.Format("2006-01-02")
	if strings.TrimSpace(d.ScheduledTime) == "" {
		d.ScheduledTime = ""
	} else {
		d.ScheduledTime = moment.Format("15:04")
	}
	return moment, true
}

type Appointment struct {
	gorm.Model
	CompanyID          uint               `json:"companyId" gorm:"index"`
	VisitorID          uint               `json:"visitorId" validate:"required"`
	Visitor            *Visitor           `json:"visitor,omitempty" gorm:"foreignKey:VisitorID"`
	EmployeeID         uint               `json:"employeeId" validate:"required"`
	Employee           *Employee          `json:"employee,omitempty" gorm:"foreignKey:EmployeeID"`
	Status             AppointmentStatus  `json:"status" gorm:"size:20;index"`
	AppointmentDetails AppointmentDetails `json:"appointmentDetails" gorm:"embedded"`
	PassCode           string             `json:"passCode" gorm:"size:36;uniqueIndex"`
	CheckInTime        *time.Time         `json:"checkInTime"`
	CheckOutTime       *time.Time         `json:"checkOutTime"`
	LapseNotifiedAt    *time.Time         `json:"lapseNotifiedAt,omitempty"`
	EffectiveStatus    AppointmentStatus  `json:"effectiveStatus" gorm:"-"`
}

func (a *Appointment) StoredStatus() string  { return string(a.Status) }
func (a *Appointment) ScheduledDate() string { return a.AppointmentDetails.ScheduledDate }
func (a *Appointment) ScheduledTime() string { return a.AppointmentDetails.ScheduledTime }

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = StatusPending
	}
	if a.PassCode == "" {
		a.PassCode = uuid.NewString()
	}
	return nil
}

// Resolve fills EffectiveStatus using r and returns it.
func (a *Appointment) Resolve(r *schedule.Resolver) AppointmentStatus {
	a.EffectiveStatus = AppointmentStatus(r.Status(a))
	return a.EffectiveStatus
}

// ResolveAll fills EffectiveStatus on every appointment.
func ResolveAll(appointments []Appointment, r *schedule.Resolver) {
	for i := range appointments {
		appointments[i].Resolve(r)
	}
}

// CanTransition checks the stored-status state machine. A pending
// appointment that has timed out can only be cancelled.
func (a *Appointment) CanTransition(newStatus AppointmentStatus, r *schedule.Resolver) error {
	if newStatus == StatusTimeOut {
		return fmt.Errorf("%w: %s is derived and cannot be set", ErrInvalidTransition, newStatus)
	}
	if a.Status == StatusPending && newStatus != StatusCancelled && a.Resolve(r) == StatusTimeOut {
		return fmt.Errorf("%w: appointment has timed out", ErrInvalidTransition)
	}
	for _, allowed := range transitions[a.Status] {
		if allowed == newStatus {
			return nil
		}
	}
	if len(transitions[a.Status]) == 0 {
		return fmt.Errorf("%w: no transitions allowed from %s", ErrInvalidTransition, a.Status)
	}
	return fmt.Errorf("%w: from %s to %s", ErrInvalidTransition, a.Status, newStatus)
}

// UpdateStatus moves the appointment to newStatus and stamps check-in or
// check-out times when entering checked_in or completed.
func (a *Appointment) UpdateStatus(tx *gorm.DB, newStatus AppointmentStatus, r *schedule.Resolver) error {
	if err := a.CanTransition(newStatus, r); err != nil {
		return err
	}

	now := r.Now()
	updates := map[string]interface{}{"status": newStatus}
	switch newStatus {
	case StatusCheckedIn:
		a.CheckInTime = &now
		updates["check_in_time"] = now
	case StatusCompleted:
		a.CheckOutTime = &now
		updates["check_out_time"] = now
	}

	if err := tx.Model(a).Updates(updates).Error; err != nil {
		return err
	}
	a.Status = newStatus
	a.Resolve(r)
	return nil
}
