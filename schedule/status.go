package schedule

import "time"

// Stored statuses that matter to the resolver, plus the derived sentinel.
const (
	StatusPending = "pending"
	StatusTimeOut = "time_out"
)

// Record is the part of an appointment the resolver reads.
type Record interface {
	StoredStatus() string
	ScheduledDate() string
	ScheduledTime() string
}

// IsTimedOut reports whether the scheduled calendar day has fully elapsed.
// Only days are compared: an appointment stays valid until midnight that
// ends its scheduled day, whatever its scheduled time.
func IsTimedOut(date, clock string, now time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}

	moment, ok := ParseScheduledMoment(date, clock, loc)
	if !ok {
		return false
	}

	return StartOfDay(now, loc).After(StartOfDay(moment, loc))
}

// EffectiveStatus returns the status to show for r at now. Only pending
// appointments with both a date and a time can become time_out; every other
// stored status is returned unchanged.
func EffectiveStatus(r Record, now time.Time, loc *time.Location) string {
	status := r.StoredStatus()
	if status != StatusPending {
		return status
	}
	if r.ScheduledDate() == "" || r.ScheduledTime() == "" {
		return StatusPending
	}
	if IsTimedOut(r.ScheduledDate(), r.ScheduledTime(), now, loc) {
		return StatusTimeOut
	}
	return StatusPending
}

// StartOfDay truncates t to midnight of its calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Resolver binds the status rules to a location and a clock.
type Resolver struct {
	Location *time.Location
	Clock    func() time.Time
}

// NewResolver returns a Resolver using the wall clock.
func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{Location: loc, Clock: time.Now}
}

// Status is EffectiveStatus evaluated at the resolver's current time.
func (r *Resolver) Status(rec Record) string {
	return EffectiveStatus(rec, r.Now(), r.Location)
}

// TimedOut is IsTimedOut for rec at the resolver's current time.
func (r *Resolver) TimedOut(rec Record) bool {
	return IsTimedOut(rec.ScheduledDate(), rec.ScheduledTime(), r.Now(), r.Location)
}

// Today is midnight of the current day in the resolver's location.
func (r *Resolver) Today() time.Time {
	return StartOfDay(r.Now(), r.Location)
}

// Now is the resolver's current time in its location.
func (r *Resolver) Now() time.Time {
	loc := r.Location
	if loc == nil {
		loc = time.Local
	}
	if r.Clock == nil {
		return time.Now().In(loc)
	}
	return r.Clock().In(loc)
}
