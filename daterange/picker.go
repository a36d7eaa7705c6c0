package daterange

import "time"

// State is the picker's position in its selection lifecycle.
type State string

const (
	StateIdle        State = "idle"
	StateOpenEmpty   State = "open_empty"
	StateOpenPartial State = "open_partial"
	StateOpenFull    State = "open_full"
	StateCommitted   State = "committed"
)

// Picker holds a committed range and an in-progress (temp) selection. The
// committed range only changes on Apply, SelectPreset, Clear and
// SetInitialValue; the callback fires for the first three.
//
// A Picker is not safe for concurrent use.
type Picker struct {
	loc       *time.Location
	committed Range
	temp      Range
	hover     time.Time
	open      bool
	view      time.Time
	onChange  func(Value)
}

// NewPicker returns a closed picker with nothing selected. onChange may be nil.
func NewPicker(loc *time.Location, onChange func(Value)) *Picker {
	if loc == nil {
		loc = time.Local
	}
	return &Picker{loc: loc, onChange: onChange}
}

func (p *Picker) State() State {
	if !p.open {
		if p.committed.IsEmpty() {
			return StateIdle
		}
		return StateCommitted
	}
	switch {
	case p.temp.IsComplete():
		return StateOpenFull
	case !p.temp.Start.IsZero():
		return StateOpenPartial
	default:
		return StateOpenEmpty
	}
}

func (p *Picker) IsOpen() bool { return p.open }
func (p *Picker) Committed() Range { return p.committed }
func (p *Picker) Temp() Range { return p.temp }
func (p *Picker) ViewMonth() time.Time { return p.view }

// Open shows the picker seeded from the last committed range. The calendar
// starts on the month of the selection, or on the month of now.
func (p *Picker) Open(now time.Time) {
	p.open = true
	p.temp = p.committed
	p.hover = time.Time{}

	anchor := p.temp.Start
	if anchor.IsZero() {
		anchor = Normalize(now, p.loc)
	}
	p.view = firstOfMonth(anchor, p.loc)
}

// ClickDay selects day. The first click (or a click after a full selection)
// starts a new range; the second completes it, swapping bounds when day
// precedes the start.
func (p *Picker) ClickDay(day time.Time) error {
	if !p.open {
		return ErrPickerClosed
	}
	d := Normalize(day, p.loc)
	p.hover = time.Time{}

	if p.temp.Start.IsZero() || p.temp.IsComplete() {
		p.temp = Range{Start: d}
		return nil
	}
	p.temp = Range{Start: p.temp.Start, End: d}.Ordered()
	return nil
}

// HoverDay records the day under the pointer. It only has an effect while a
// start is selected and the end is not.
func (p *Picker) HoverDay(day time.Time) {
	if p.State() != StateOpenPartial {
		p.hover = time.Time{}
		return
	}
	p.hover = Normalize(day, p.loc)
}

// Preview is the range to highlight: start..hover while choosing the end,
// the temp selection otherwise.
func (p *Picker) Preview() Range {
	if p.State() == StateOpenPartial && !p.hover.IsZero() {
		return Range{Start: p.temp.Start, End: p.hover}.Ordered()
	}
	return p.temp
}

// Apply commits the temp selection and closes the picker.
func (p *Picker) Apply() error {
	if p.State() != StateOpenFull {
		return ErrIncompleteRange
	}
	p.committed = p.temp
	p.close()
	p.notify()
	return nil
}

// Cancel discards the temp selection and closes the picker.
func (p *Picker) Cancel() {
	p.temp = p.committed
	p.close()
}

// ClickOutside closes an open picker without committing.
func (p *Picker) ClickOutside() {
	if p.open {
		p.Cancel()
	}
}

// SelectPreset commits the preset's range immediately and closes the picker.
func (p *Picker) SelectPreset(preset Preset, now time.Time) error {
	r, err := PresetRange(preset, now, p.loc)
	if err != nil {
		return err
	}
	p.committed = r
	p.temp = r
	p.close()
	p.notify()
	return nil
}

// Clear empties both committed and temp selections and reports the empty
// range.
func (p *Picker) Clear() {
	p.committed = Range{}
	p.temp = Range{}
	p.hover = time.Time{}
	p.notify()
}

// SetInitialValue seeds the picker from the host, e.g. after the filter was
// changed by navigation. The callback is not invoked.
func (p *Picker) SetInitialValue(v Value) error {
	r, err := v.Range(p.loc)
	if err != nil {
		return err
	}
	r = r.Ordered()
	p.committed = r
	p.temp = r
	p.hover = time.Time{}
	return nil
}

func (p *Picker) NextMonth() { p.shiftView(1) }
func (p *Picker) PrevMonth() { p.shiftView(-1) }

func (p *Picker) shiftView(months int) {
	if p.view.IsZero() {
		p.view = firstOfMonth(time.Now(), p.loc)
	}
	p.view = p.view.AddDate(0, months, 0)
}

func (p *Picker) close() {
	p.open = false
	p.hover = time.Time{}
}

func (p *Picker) notify() {
	if p.onChange != nil {
		p.onChange(p.committed.Value())
	}
}

// Day describes one calendar cell of the view month.
type Day struct {
	Date      string `json:"date"`
	IsStart   bool   `json:"isStart"`
	IsEnd     bool   `json:"isEnd"`
	InRange   bool   `json:"inRange"`
	InPreview bool   `json:"inPreview"`
}

// Days lists the days of the view month with their selection flags.
func (p *Picker) Days() []Day {
	if p.view.IsZero() {
		return nil
	}
	preview := p.Preview()
	var days []Day
	for d := p.view; d.Month() == p.view.Month(); d = d.AddDate(0, 0, 1) {
		days = append(days, Day{
			Date:      Format(d),
			IsStart:   !p.temp.Start.IsZero() && d.Equal(p.temp.Start),
			IsEnd:     !p.temp.End.IsZero() && d.Equal(p.temp.End),
			InRange:   p.temp.IsComplete() && p.temp.Contains(d),
			InPreview: preview.IsComplete() && preview.Contains(d),
		})
	}
	return days
}

func firstOfMonth(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
}
