package redis

import (
	"context"
	"testing"

	"github.com/safein/safein-server/daterange"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterKey_String(t *testing.T) {
	k := FilterKey{CompanyID: 3, EmployeeID: 7, Scope: "appointments"}
	assert.Equal(t, "safein:daterange:3:7:appointments", k.String())
}

func TestMemoryFilterStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryFilterStore()
	key := FilterKey{CompanyID: 1, EmployeeID: 2, Scope: "visitors"}

	empty, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.True(t, empty.Committed.IsEmpty())

	start, end := "2025-06-01", "2025-06-30"
	snap := daterange.Snapshot{
		Committed: daterange.Value{StartDate: &start, EndDate: &end},
		Days:      []daterange.Day{{Date: start}},
	}
	require.NoError(t, store.Save(ctx, key, snap))

	got, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", *got.Committed.StartDate)
	assert.Nil(t, got.Days)

	other, err := store.Load(ctx, FilterKey{CompanyID: 1, EmployeeID: 3, Scope: "visitors"})
	require.NoError(t, err)
	assert.True(t, other.Committed.IsEmpty())
}
