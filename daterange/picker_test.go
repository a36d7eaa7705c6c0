package daterange

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, ist)
}

func str(s string) *string { return &s }

type recorder struct {
	calls []Value
}

func (r *recorder) record(v Value) { r.calls = append(r.calls, v) }

func TestPicker_ClickReverseOrderSwaps(t *testing.T) {
	rec := &recorder{}
	p := NewPicker(ist, rec.record)
	now := day(2025, 6, 15)

	p.Open(now)
	assert.Equal(t, StateOpenEmpty, p.State())

	require.NoError(t, p.ClickDay(day(2025, 6, 12)))
	assert.Equal(t, StateOpenPartial, p.State())

	require.NoError(t, p.ClickDay(day(2025, 6, 3)))
	assert.Equal(t, StateOpenFull, p.State())
	assert.Empty(t, rec.calls, "nothing is committed before Apply")

	require.NoError(t, p.Apply())
	assert.Equal(t, StateCommitted, p.State())
	require.Len(t, rec.calls, 1)
	assert.Equal(t, Value{StartDate: str("2025-06-03"), EndDate: str("2025-06-12")}, rec.calls[0])
}

func TestPicker_ClickAfterFullSelectionRestarts(t *testing.T) {
	p := NewPicker(ist, nil)
	p.Open(day(2025, 6, 15))
	require.NoError(t, p.ClickDay(day(2025, 6, 1)))
	require.NoError(t, p.ClickDay(day(2025, 6, 5)))

	require.NoError(t, p.ClickDay(day(2025, 6, 20)))
	assert.Equal(t, StateOpenPartial, p.State())
	assert.Equal(t, day(2025, 6, 20), p.Temp().Start)
	assert.True(t, p.Temp().End.IsZero())
}

func TestPicker_ClickWhenClosed(t *testing.T) {
	p := NewPicker(ist, nil)
	assert.ErrorIs(t, p.ClickDay(day(2025, 6, 1)), ErrPickerClosed)
}

func TestPicker_ApplyRequiresFullSelection(t *testing.T) {
	rec := &recorder{}
	p := NewPicker(ist, rec.record)
	p.Open(day(2025, 6, 15))
	assert.ErrorIs(t, p.Apply(), ErrIncompleteRange)

	require.NoError(t, p.ClickDay(day(2025, 6, 1)))
	assert.ErrorIs(t, p.Apply(), ErrIncompleteRange)
	assert.True(t, p.IsOpen())
	assert.Empty(t, rec.calls)
}

func TestPicker_HoverPreviewDoesNotMutate(t *testing.T) {
	p := NewPicker(ist, nil)
	p.Open(day(2025, 6, 15))
	require.NoError(t, p.ClickDay(day(2025, 6, 10)))

	p.HoverDay(day(2025, 6, 4))
	preview := p.Preview()
	assert.Equal(t, day(2025, 6, 4), preview.Start)
	assert.Equal(t, day(2025, 6, 10), preview.End)
	assert.True(t, p.Temp().End.IsZero())
	assert.True(t, p.Committed().IsEmpty())

	require.NoError(t, p.ClickDay(day(2025, 6, 12)))
	p.HoverDay(day(2025, 6, 30))
	assert.Equal(t, p.Temp(), p.Preview(), "hover is ignored once the range is full")
}

func TestPicker_CancelRevertsToCommitted(t *testing.T) {
	rec := &recorder{}
	p := NewPicker(ist, rec.record)
	require.NoError(t, p.SetInitialValue(Value{StartDate: str("2025-05-01"), EndDate: str("2025-05-31")}))
	committed := p.Committed()

	p.Open(day(2025, 6, 15))
	assert.Equal(t, StateOpenFull, p.State())
	assert.Equal(t, "2025-05", p.Snapshot().ViewMonth)

	require.NoError(t, p.ClickDay(day(2025, 6, 2)))
	p.Cancel()
	assert.False(t, p.IsOpen())
	assert.Equal(t, committed, p.Committed())
	assert.Equal(t, committed, p.Temp())
	assert.Empty(t, rec.calls)

	p.Open(day(2025, 6, 15))
	require.NoError(t, p.ClickDay(day(2025, 6, 2)))
	p.ClickOutside()
	assert.Equal(t, committed, p.Temp())
	assert.Empty(t, rec.calls)
}

func TestPicker_PresetCommitsImmediately(t *testing.T) {
	rec := &recorder{}
	p := NewPicker(ist, rec.record)
	p.Open(day(2025, 6, 15))

	require.NoError(t, p.SelectPreset(PresetLast7Days, time.Date(2025, 6, 15, 18, 30, 0, 0, ist)))
	assert.False(t, p.IsOpen())
	require.Len(t, rec.calls, 1)
	assert.Equal(t, Value{StartDate: str("2025-06-09"), EndDate: str("2025-06-15")}, rec.calls[0])

	require.NoError(t, p.SelectPreset(PresetAll, day(2025, 6, 15)))
	require.Len(t, rec.calls, 2)
	assert.Nil(t, rec.calls[1].StartDate)
	assert.Nil(t, rec.calls[1].EndDate)
	assert.Equal(t, StateIdle, p.State())

	assert.ErrorIs(t, p.SelectPreset("fortnight", day(2025, 6, 15)), ErrUnknownPreset)
}

func TestPicker_ClearNotifiesNulls(t *testing.T) {
	rec := &recorder{}
	p := NewPicker(ist, rec.record)
	require.NoError(t, p.SelectPreset(PresetToday, day(2025, 6, 15)))

	p.Clear()
	require.Len(t, rec.calls, 2)
	assert.True(t, rec.calls[1].IsEmpty())

	raw, err := json.Marshal(rec.calls[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"startDate":null,"endDate":null}`, string(raw))
	assert.True(t, p.Committed().IsEmpty())
	assert.True(t, p.Temp().IsEmpty())
}

func TestPicker_MonthNavigation(t *testing.T) {
	p := NewPicker(ist, nil)
	p.Open(day(2025, 1, 31))
	p.NextMonth()
	assert.Equal(t, day(2025, 2, 1), p.ViewMonth())
	assert.Len(t, p.Days(), 28)
	p.PrevMonth()
	p.PrevMonth()
	assert.Equal(t, day(2024, 12, 1), p.ViewMonth())
}

func TestPicker_DaysFlags(t *testing.T) {
	p := NewPicker(ist, nil)
	p.Open(day(2025, 6, 15))
	require.NoError(t, p.ClickDay(day(2025, 6, 10)))
	p.HoverDay(day(2025, 6, 12))

	days := p.Days()
	require.Len(t, days, 30)
	assert.True(t, days[9].IsStart)
	assert.False(t, days[9].InRange)
	assert.True(t, days[10].InPreview)
	assert.True(t, days[11].InPreview)
	assert.False(t, days[12].InPreview)
}

func TestPicker_SnapshotRestore(t *testing.T) {
	p := NewPicker(ist, nil)
	p.Open(day(2025, 6, 15))
	require.NoError(t, p.ClickDay(day(2025, 6, 10)))
	p.HoverDay(day(2025, 6, 14))

	raw, err := json.Marshal(p.Snapshot())
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))

	q := NewPicker(ist, nil)
	require.NoError(t, q.Restore(snap))
	assert.Equal(t, StateOpenPartial, q.State())
	assert.Equal(t, p.Temp(), q.Temp())
	assert.Equal(t, p.Preview(), q.Preview())
	assert.Equal(t, p.ViewMonth(), q.ViewMonth())

	snap.Hover = "not-a-date"
	assert.ErrorIs(t, q.Restore(snap), ErrInvalidDate)
}
