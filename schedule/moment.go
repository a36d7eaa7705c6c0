// Package schedule resolves the effective status of an appointment from its
// stored status and the date/time it was booked for.
package schedule

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	meridiemPattern = regexp.MustCompile(`(?i)\s*([ap])\.?m\.?\s*`)
	digitsPattern   = regexp.MustCompile(`\d+`)

	errBadClock = errors.New("unparseable clock value")
)

// ParseScheduledMoment combines a stored scheduled date and an optional
// scheduled time into a single moment in loc. The date may be a plain
// YYYY-MM-DD value, an ISO timestamp ("2025-01-10T00:00:00Z") or a space
// separated date-time; only its date portion is used. The time accepts
// "14:30", "2:30 PM", "9 am" and bare hours. A missing time means the end of
// the day so the appointment is never considered elapsed early.
//
// The second return value is false when the date cannot be read.
func ParseScheduledMoment(date, clock string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}

	year, month, day, ok := parseDatePart(date)
	if !ok {
		return time.Time{}, false
	}

	clock = strings.TrimSpace(clock)
	if clock == "" {
		return time.Date(year, time.Month(month), day, 23, 59, 59, 0, loc), true
	}

	hour, minute, err := parseClock(clock)
	if err != nil {
		hour, minute = looseClock(clock)
	}

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc), true
}

// MomentFromTime is ParseScheduledMoment for dates that are already decoded.
// The calendar day of date as seen in loc is kept; its time of day is ignored.
func MomentFromTime(date time.Time, clock string, loc *time.Location) (time.Time, bool) {
	if date.IsZero() {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	return ParseScheduledMoment(date.In(loc).Format("2006-01-02"), clock, loc)
}

func parseDatePart(value string) (year, month, day int, ok bool) {
	value = strings.TrimSpace(value)
	if i := strings.Index(value, "T"); i >= 0 {
		value = value[:i]
	} else if i := strings.Index(value, " "); i >= 0 {
		value = value[:i]
	}

	parts := strings.Split(value, "-")
	if len(parts) < 3 {
		return 0, 0, 0, false
	}

	var err error
	if year, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, 0, false
	}
	if month, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, 0, false
	}
	if day, err = strconv.Atoi(parts[2]); err != nil {
		return 0, 0, 0, false
	}
	return year, month, day, true
}

// parseClock reads "HH:MM", "HH:MM AM/PM" and bare hours. Out of range
// components are reset to zero rather than rejected.
func parseClock(clock string) (int, int, error) {
	var (
		hour, minute int
		meridiem     string
		err          error
	)

	if i := strings.Index(clock, ":"); i >= 0 {
		hourPart, minutePart := clock[:i], clock[i+1:]
		if m := meridiemPattern.FindStringSubmatch(minutePart); m != nil {
			meridiem = strings.ToUpper(m[1])
			minutePart = meridiemPattern.ReplaceAllString(minutePart, "")
		}
		if hour, err = strconv.Atoi(strings.TrimSpace(hourPart)); err != nil {
			return 0, 0, errBadClock
		}
		if minute, err = strconv.Atoi(strings.TrimSpace(minutePart)); err != nil {
			return 0, 0, errBadClock
		}
	} else {
		if m := meridiemPattern.FindStringSubmatch(clock); m != nil {
			meridiem = strings.ToUpper(m[1])
			clock = meridiemPattern.ReplaceAllString(clock, "")
		}
		if hour, err = strconv.Atoi(strings.TrimSpace(clock)); err != nil {
			return 0, 0, errBadClock
		}
	}

	hour, minute = normalizeClock(hour, minute, meridiem)
	return hour, minute, nil
}

// looseClock pulls the first two digit runs out of a malformed clock value.
func looseClock(clock string) (int, int) {
	var hour, minute int
	runs := digitsPattern.FindAllString(clock, 2)
	if len(runs) > 0 {
		hour, _ = strconv.Atoi(runs[0])
	}
	if len(runs) > 1 {
		minute, _ = strconv.Atoi(runs[1])
	}

	meridiem := ""
	if m := meridiemPattern.FindStringSubmatch(clock); m != nil {
		meridiem = strings.ToUpper(m[1])
	}
	return normalizeClock(hour, minute, meridiem)
}

func normalizeClock(hour, minute int, meridiem string) (int, int) {
	switch meridiem {
	case "P":
		if hour != 12 {
			hour += 12
		}
	case "A":
		if hour == 12 {
			hour = 0
		}
	}

	if hour < 0 || hour > 23 {
		hour = 0
	}
	if minute < 0 || minute > 59 {
		minute = 0
	}
	return hour, minute
}
