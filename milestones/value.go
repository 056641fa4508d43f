package milestones

import (
	"fmt"

	"github.com/soteriahealth/soteria/stats"
)

// Snapshot is everything the evaluator needs to measure one user, read once
// per evaluation pass.
type Snapshot struct {
	AsOf           stats.Date
	TotalRoutines  int
	UniqueRoutines map[stats.Category]int
	BalancedDays   int
	Streak         stats.Streak
	HarmonyScore   int
	JourneyStart   *stats.Date
	// Recent holds the daily rows of the trailing seven-day window.
	Recent []stats.DayFlags

	PainDays   int
	PainFirst  *int
	PainLatest *int

	CirclesJoined int
}

// Value measures d against s. The result is compared with d.Threshold.
func (d Definition) Value(s Snapshot) (int, error) {
	switch d.Kind {
	case KindStreak:
		return s.Streak.Current, nil
	case KindCompletion:
		return s.TotalRoutines, nil
	case KindBalance:
		return balanceValue(d.ThresholdType, s)
	case KindSpecialization:
		return specializationValue(d.Focus, s), nil
	case KindJourney:
		return journeyDay(s.JourneyStart, s.AsOf), nil
	case KindPain:
		return painValue(d.ThresholdType, s)
	case KindSocial:
		return s.CirclesJoined, nil
	case KindConsistency:
		return consistencyValue(d.ThresholdType, s)
	}
	return 0, fmt.Errorf("unknown milestone kind %q", d.Kind)
}

// Qualifies reports whether value meets the threshold.
func (d Definition) Qualifies(value int) bool {
	return value >= d.Threshold
}

// Percent is the progress toward the threshold, capped at 100.
func (d Definition) Percent(value int) int {
	if d.Threshold <= 0 || value >= d.Threshold {
		return 100
	}
	if value <= 0 {
		return 0
	}
	return value * 100 / d.Threshold
}

func balanceValue(t ThresholdType, s Snapshot) (int, error) {
	switch t {
	case Boolean:
		for _, c := range stats.Categories {
			if s.UniqueRoutines[c] < 1 {
				return 0, nil
			}
		}
		return 1, nil
	case Percentage:
		return s.HarmonyScore, nil
	case Count, Days:
		return s.BalancedDays, nil
	}
	return 0, fmt.Errorf("balance does not support %q", t)
}

// specializationValue counts unique routines in the focus category, or the
// best category when no focus is set.
func specializationValue(focus stats.Category, s Snapshot) int {
	if focus != "" {
		return s.UniqueRoutines[focus]
	}
	best := 0
	for _, c := range stats.Categories {
		if n := s.UniqueRoutines[c]; n > best {
			best = n
		}
	}
	return best
}

// journeyDay is 1 on the start date itself.
func journeyDay(start *stats.Date, asOf stats.Date) int {
	if start == nil || *start == "" {
		return 0
	}
	n := stats.DaysBetween(*start, asOf) + 1
	if n < 0 {
		return 0
	}
	return n
}

func painValue(t ThresholdType, s Snapshot) (int, error) {
	switch t {
	case Boolean:
		if s.PainDays > 0 {
			return 1, nil
		}
		return 0, nil
	case Count, Days:
		return s.PainDays, nil
	case Percentage:
		if s.PainFirst == nil || s.PainLatest == nil || *s.PainFirst <= 0 {
			return 0, nil
		}
		first, latest := *s.PainFirst, *s.PainLatest
		if latest >= first {
			return 0, nil
		}
		return (first - latest) * 100 / first, nil
	}
	return 0, fmt.Errorf("pain does not support %q", t)
}

func consistencyValue(t ThresholdType, s Snapshot) (int, error) {
	switch t {
	case Days:
		n := 0
		for _, d := range s.Recent {
			if d.Any() {
				n++
			}
		}
		return n, nil
	case Count:
		n := 0
		for _, d := range s.Recent {
			if d.All() {
				n++
			}
		}
		return n, nil
	}
	return 0, fmt.Errorf("consistency does not support %q", t)
}
