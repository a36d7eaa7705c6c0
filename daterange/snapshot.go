package daterange

import (
	"fmt"
	"time"
)

// Snapshot is the serializable form of a Picker. State, Preview and Days are
// informational and ignored by Restore.
type Snapshot struct {
	State     State  `json:"state"`
	Open      bool   `json:"open"`
	Committed Value  `json:"committed"`
	Temp      Value  `json:"temp"`
	Hover     string `json:"hover,omitempty"`
	ViewMonth string `json:"viewMonth,omitempty"`
	Preview   Value  `json:"preview"`
	Days      []Day  `json:"days,omitempty"`
}

// Snapshot captures the picker.
func (p *Picker) Snapshot() Snapshot {
	s := Snapshot{
		State:     p.State(),
		Open:      p.open,
		Committed: p.committed.Value(),
		Temp:      p.temp.Value(),
		Hover:     Format(p.hover),
		Preview:   p.Preview().Value(),
	}
	if !p.view.IsZero() {
		s.ViewMonth = p.view.Format("2006-01")
	}
	if p.open {
		s.Days = p.Days()
	}
	return s
}

// Restore replaces the picker's state with s. The callback is kept.
func (p *Picker) Restore(s Snapshot) error {
	committed, err := s.Committed.Range(p.loc)
	if err != nil {
		return fmt.Errorf("committed range: %w", err)
	}
	temp, err := s.Temp.Range(p.loc)
	if err != nil {
		return fmt.Errorf("temp range: %w", err)
	}

	var hover time.Time
	if s.Hover != "" {
		if hover, err = ParseDate(s.Hover, p.loc); err != nil {
			return fmt.Errorf("hover: %w", err)
		}
	}

	var view time.Time
	if s.ViewMonth != "" {
		if view, err = time.ParseInLocation("2006-01", s.ViewMonth, p.loc); err != nil {
			return fmt.Errorf("view month: %w", ErrInvalidDate)
		}
	}

	p.committed = committed
	p.temp = temp
	p.hover = hover
	p.open = s.Open
	p.view = view
	return nil
}
