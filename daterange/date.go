// Package daterange implements the two-sided date range selection used to
// filter appointment and visitor lists, including named presets.
package daterange

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidDate     = errors.New("invalid date, expected YYYY-MM-DD")
	ErrIncompleteRange = errors.New("both start and end dates must be selected")
	ErrUnknownPreset   = errors.New("unknown date range preset")
	ErrPickerClosed    = errors.New("date range picker is not open")
)

// Normalize truncates t to midnight of its calendar day in loc.
func Normalize(t time.Time, loc *time.Location) time.Time {
	if t.IsZero() {
		return t
	}
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Format renders the calendar day of t as YYYY-MM-DD using t's own location.
// It returns "" for the zero time.
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// ParseDate reads a YYYY-MM-DD value (anything after a "T" is ignored) as
// midnight in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value = strings.TrimSpace(value)
	if i := strings.Index(value, "T"); i >= 0 {
		value = value[:i]
	}

	parts := strings.Split(value, "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	year, errY := strconv.Atoi(parts[0])
	month, errM := strconv.Atoi(parts[1])
	day, errD := strconv.Atoi(parts[2])
	if errY != nil || errM != nil || errD != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

// Range is a pair of calendar days. A zero bound means "unset".
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) IsEmpty() bool { return r.Start.IsZero() && r.End.IsZero() }
func (r Range) IsComplete() bool { return !r.Start.IsZero() && !r.End.IsZero() }

// Ordered returns r with its bounds swapped if End precedes Start.
func (r Range) Ordered() Range {
	if r.IsComplete() && r.End.Before(r.Start) {
		return Range{Start: r.End, End: r.Start}
	}
	return r
}

// Contains reports whether the calendar day of t falls inside r. Unset
// bounds are open.
func (r Range) Contains(t time.Time) bool {
	if !r.Start.IsZero() {
		if Normalize(t, r.Start.Location()).Before(r.Start) {
			return false
		}
	}
	if !r.End.IsZero() {
		if Normalize(t, r.End.Location()).After(r.End) {
			return false
		}
	}
	return true
}

// Value converts r into its wire shape.
func (r Range) Value() Value {
	return Value{StartDate: formatPtr(r.Start), EndDate: formatPtr(r.End)}
}

// Value is the wire shape of a range: YYYY-MM-DD strings or null.
type Value struct {
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

// IsEmpty reports whether neither bound is set.
func (v Value) IsEmpty() bool {
	return deref(v.StartDate) == "" && deref(v.EndDate) == ""
}

// Range parses v into a Range in loc. Empty strings count as unset.
func (v Value) Range(loc *time.Location) (Range, error) {
	var r Range
	var err error
	if s := deref(v.StartDate); s != "" {
		if r.Start, err = ParseDate(s, loc); err != nil {
			return Range{}, err
		}
	}
	if s := deref(v.EndDate); s != "" {
		if r.End, err = ParseDate(s, loc); err != nil {
			return Range{}, err
		}
	}
	return r, nil
}

func formatPtr(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := Format(t)
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
