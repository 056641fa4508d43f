package stats

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDate_UsesWallClock(t *testing.T) {
	// 02:30 UTC on the 15th is still the 14th in New York
	ts := time.Date(2026, 3, 15, 2, 30, 0, 0, time.UTC)
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	assert.Equal(t, Date("2026-03-14"), LocalDate(ts, ny))
	assert.Equal(t, Date("2026-03-15"), LocalDate(ts, nil))
}

func TestOffsetDaysAndDaysBetween(t *testing.T) {
	d := Date("2026-12-30")
	assert.Equal(t, Date("2027-01-02"), d.OffsetDays(3))
	assert.Equal(t, Date("2026-12-01"), d.OffsetDays(-29))

	assert.Equal(t, 3, DaysBetween(d, "2027-01-02"))
	assert.Equal(t, -3, DaysBetween("2027-01-02", d))
	assert.Equal(t, 0, DaysBetween(d, d))
	// DST change in between does not skew whole days
	assert.Equal(t, 1, DaysBetween("2026-03-07", "2026-03-08"))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-02-28")
	require.NoError(t, err)
	assert.Equal(t, Date("2026-02-28"), d)

	for _, bad := range []string{"", "2026-2-28", "2026-02-30", "28/02/2026"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoadLocation_Fallback(t *testing.T) {
	assert.Equal(t, time.UTC, LoadLocation(""))
	assert.Equal(t, time.UTC, LoadLocation("Mars/Olympus"))
}
