package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func run(end Date, n int) []Date {
	out := make([]Date, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, end.OffsetDays(-i))
	}
	return out
}

func TestComputeStreak(t *testing.T) {
	today := Date("2026-03-14")

	tests := []struct {
		name  string
		dates []Date
		want  Streak
	}{
		{"empty", nil, Streak{0, 0}},
		{"single today", []Date{today}, Streak{1, 1}},
		{"contiguous ending today", run(today, 5), Streak{5, 5}},
		{"contiguous ending yesterday", run(today.OffsetDays(-1), 4), Streak{4, 4}},
		{"ended three days ago", run(today.OffsetDays(-3), 6), Streak{0, 6}},
		{"ended two days ago", run(today.OffsetDays(-2), 2), Streak{0, 2}},
		{
			"gap keeps longest",
			[]Date{"2026-03-10", "2026-03-11", "2026-03-12", "2026-03-14"},
			Streak{1, 3},
		},
		{
			"duplicates and unordered",
			[]Date{"2026-03-14", "2026-03-13", "2026-03-14", "2026-03-12", "2026-03-13"},
			Streak{3, 3},
		},
		{
			"future and malformed ignored",
			[]Date{"2026-03-13", "2026-03-14", "2026-03-15", "not-a-date"},
			Streak{2, 2},
		},
		{
			"month boundary",
			[]Date{"2026-02-27", "2026-02-28", "2026-03-01"},
			Streak{0, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStreak(tt.dates, today))
		})
	}
}

func TestComputeStreak_DaysOneTwoThreeFive(t *testing.T) {
	day1 := Date("2026-05-01")
	dates := []Date{day1, day1.OffsetDays(1), day1.OffsetDays(2), day1.OffsetDays(4)}

	got := ComputeStreak(dates, day1.OffsetDays(4))

	assert.Equal(t, Streak{Current: 1, Longest: 3}, got)
}

func TestCategoryStreaks_Independent(t *testing.T) {
	today := Date("2026-03-14")
	days := []DayFlags{
		{Date: today.OffsetDays(-2), Mind: true, Body: true},
		{Date: today.OffsetDays(-1), Mind: true},
		{Date: today, Mind: true, Soul: true},
	}

	byCat, overall := CategoryStreaks(days, today)

	assert.Equal(t, Streak{3, 3}, byCat[Mind])
	assert.Equal(t, Streak{0, 1}, byCat[Body])
	assert.Equal(t, Streak{1, 1}, byCat[Soul])
	assert.Equal(t, Streak{3, 3}, overall)
}
