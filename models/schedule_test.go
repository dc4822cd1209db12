package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWorkBlocks(t *testing.T) {
	blocks, err := ParseWorkBlocks("09:00-12:00,14:00-17:00")
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, WorkBlock{Start: 9 * 60, End: 12 * 60}, blocks[0])
	assert.Equal(t, WorkBlock{Start: 14 * 60, End: 17 * 60}, blocks[1])
}

func TestParseWorkBlocksRejectsBadInput(t *testing.T) {
	for _, spec := range []string{"", "09:00", "12:00-09:00", "9am-5pm"} {
		_, err := ParseWorkBlocks(spec)
		assert.Error(t, err, "spec %q", spec)
	}
}

func TestBuildDaySlots(t *testing.T) {
	blocks, err := ParseWorkBlocks("09:00-10:30")
	require.NoError(t, err)

	slots := BuildDaySlots(blocks, 30)
	assert.Equal(t, []string{"09:00", "09:30", "10:00"}, SlotTimes(slots))
	for _, s := range slots {
		assert.False(t, s.Occupied)
		assert.Empty(t, s.ReservationID)
	}
}

func TestBuildDaySlotsDropsPartialIncrement(t *testing.T) {
	blocks, err := ParseWorkBlocks("09:00-09:50")
	require.NoError(t, err)

	// Only one full 30-minute increment fits.
	slots := BuildDaySlots(blocks, 30)
	assert.Equal(t, []string{"09:00"}, SlotTimes(slots))
}

func TestIsPastDateAllowsToday(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.Local)

	past, err := IsPastDate("2026-03-10", now)
	require.NoError(t, err)
	assert.False(t, past, "same-day booking must stay allowed")

	past, err = IsPastDate("2026-03-09", now)
	require.NoError(t, err)
	assert.True(t, past)

	past, err = IsPastDate("2026-03-11", now)
	require.NoError(t, err)
	assert.False(t, past)
}

func TestCombineDateTime(t *testing.T) {
	at, err := CombineDateTime("2026-03-10", "09:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 9, 30, 0, 0, time.Local), at)
}
