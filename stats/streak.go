package stats

import "sort"

// Streak holds consecutive-day counts for one scope (a category or overall).
type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// ComputeStreak walks the distinct days of dates in order. A gap of more than
// one day restarts the run. Current is the run ending at the latest date,
// kept only while that date is asOf or the day before. Dates after asOf and
// malformed dates are ignored.
func ComputeStreak(dates []Date, asOf Date) Streak {
	days := distinctDays(dates, asOf)
	if len(days) == 0 {
		return Streak{}
	}

	run, longest := 1, 1
	for i := 1; i < len(days); i++ {
		if DaysBetween(days[i-1], days[i]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	current := 0
	if DaysBetween(days[len(days)-1], asOf) <= 1 {
		current = run
	}
	return Streak{Current: current, Longest: longest}
}

// CategoryStreaks computes the streak of each category plus the overall
// ("any category") streak from a set of daily rows.
func CategoryStreaks(days []DayFlags, asOf Date) (map[Category]Streak, Streak) {
	byCat := make(map[Category][]Date, len(Categories))
	var active []Date
	for _, d := range days {
		for _, c := range Categories {
			if d.Has(c) {
				byCat[c] = append(byCat[c], d.Date)
			}
		}
		if d.Any() {
			active = append(active, d.Date)
		}
	}

	out := make(map[Category]Streak, len(Categories))
	for _, c := range Categories {
		out[c] = ComputeStreak(byCat[c], asOf)
	}
	return out, ComputeStreak(active, asOf)
}

func distinctDays(dates []Date, asOf Date) []Date {
	seen := make(map[Date]struct{}, len(dates))
	out := make([]Date, 0, len(dates))
	for _, d := range dates {
		if !d.Valid() {
			continue
		}
		if asOf != "" && DaysBetween(d, asOf) < 0 {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	// YYYY-MM-DD sorts lexically in calendar order
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
