package daterange

import (
	"fmt"
	"strings"
	"time"
)

// Preset names a range computed relative to today.
type Preset string

const (
	PresetToday      Preset = "today"
	PresetYesterday  Preset = "yesterday"
	PresetLast7Days  Preset = "last_7_days"
	PresetLast30Days Preset = "last_30_days"
	PresetThisMonth  Preset = "this_month"
	PresetLastMonth  Preset = "last_month"
	PresetLastYear   Preset = "last_1_year"
	PresetAll        Preset = "all"
)

var presetLabels = map[Preset]string{
	PresetToday:      "Today",
	PresetYesterday:  "Yesterday",
	PresetLast7Days:  "Last 7 Days",
	PresetLast30Days: "Last 30 Days",
	PresetThisMonth:  "This Month",
	PresetLastMonth:  "Last Month",
	PresetLastYear:   "Last 1 Year",
	PresetAll:        "All",
}

// Presets lists the presets in display order.
func Presets() []Preset {
	return []Preset{
		PresetToday, PresetYesterday, PresetLast7Days, PresetLast30Days,
		PresetThisMonth, PresetLastMonth, PresetLastYear, PresetAll,
	}
}

// Label is the human readable name, e.g. "Last 7 Days".
func (p Preset) Label() string {
	return presetLabels[p]
}

// ParsePreset accepts either the identifier ("last_7_days") or the label
// ("Last 7 Days"), case-insensitively.
func ParsePreset(value string) (Preset, error) {
	value = strings.TrimSpace(value)
	for _, p := range Presets() {
		if strings.EqualFold(value, string(p)) || strings.EqualFold(value, p.Label()) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPreset, value)
}

// PresetRange computes the range for p as seen at now in loc. PresetAll
// yields the empty range.
func PresetRange(p Preset, now time.Time, loc *time.Location) (Range, error) {
	if loc == nil {
		loc = time.Local
	}
	today := Normalize(now, loc)

	switch p {
	case PresetToday:
		return Range{Start: today, End: today}, nil
	case PresetYesterday:
		y := today.AddDate(0, 0, -1)
		return Range{Start: y, End: y}, nil
	case PresetLast7Days:
		return Range{Start: today.AddDate(0, 0, -6), End: today}, nil
	case PresetLast30Days:
		return Range{Start: today.AddDate(0, 0, -29), End: today}, nil
	case PresetThisMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
		return Range{Start: first, End: today}, nil
	case PresetLastMonth:
		firstThis := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
		return Range{Start: firstThis.AddDate(0, -1, 0), End: firstThis.AddDate(0, 0, -1)}, nil
	case PresetLastYear:
		return Range{Start: today.AddDate(-1, 0, 0), End: today}, nil
	case PresetAll:
		return Range{}, nil
	}
	return Range{}, fmt.Errorf("%w: %q", ErrUnknownPreset, string(p))
}
