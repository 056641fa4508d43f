package stats

import "math"

const (
	// HarmonyWindowDays is the trailing window the harmony score looks at,
	// including the as-of day.
	HarmonyWindowDays = 7

	harmonyAllCategoriesBonus = 30
	harmonyStreakBonus        = 20
	harmonyBalanceMax         = 50
	harmonyStreakMin          = 3
	harmonyMax                = 100
)

// maxDeviation is Σ|p_i - 1/3| when one category holds every completion.
const maxDeviation = 4.0 / 3.0

// HarmonyBreakdown explains how a harmony score was assembled.
type HarmonyBreakdown struct {
	Counts        map[Category]int `json:"counts"`
	AllCategories int              `json:"all_categories_bonus"`
	StreakBonus   int              `json:"streak_bonus"`
	Balance       int              `json:"balance_bonus"`
	Score         int              `json:"score"`
}

// HarmonyScore combines the per-category activity counts of the window with
// the smallest per-category current streak into a score in [0, 100].
func HarmonyScore(counts [3]int, minStreak int) int {
	return harmonyParts(counts, minStreak).Score
}

// ComputeHarmony derives the harmony score purely from the daily rows that
// fall inside the window ending at asOf. Rows outside the window are ignored.
func ComputeHarmony(days []DayFlags, asOf Date) HarmonyBreakdown {
	start := asOf.OffsetDays(-(HarmonyWindowDays - 1))
	var window []DayFlags
	for _, d := range days {
		if !d.Date.Valid() {
			continue
		}
		if DaysBetween(start, d.Date) >= 0 && DaysBetween(d.Date, asOf) >= 0 {
			window = append(window, d)
		}
	}

	var counts [3]int
	for _, d := range window {
		for i, c := range Categories {
			if d.Has(c) {
				counts[i]++
			}
		}
	}

	streaks, _ := CategoryStreaks(window, asOf)
	minStreak := math.MaxInt
	for _, c := range Categories {
		if s := streaks[c].Current; s < minStreak {
			minStreak = s
		}
	}

	return harmonyParts(counts, minStreak)
}

func harmonyParts(counts [3]int, minStreak int) HarmonyBreakdown {
	b := HarmonyBreakdown{Counts: make(map[Category]int, len(Categories))}
	total := 0
	allPresent := true
	for i, c := range Categories {
		n := counts[i]
		if n < 0 {
			n = 0
		}
		b.Counts[c] = n
		total += n
		if n == 0 {
			allPresent = false
		}
	}

	if allPresent {
		b.AllCategories = harmonyAllCategoriesBonus
	}
	if minStreak >= harmonyStreakMin {
		b.StreakBonus = harmonyStreakBonus
	}
	b.Balance = balanceBonus(counts, total)

	b.Score = b.AllCategories + b.StreakBonus + b.Balance
	if b.Score > harmonyMax {
		b.Score = harmonyMax
	}
	return b
}

// balanceBonus falls off linearly with the L1 distance of the category
// shares from an even split: full at 1/3 each, zero when one category has all.
func balanceBonus(counts [3]int, total int) int {
	if total <= 0 {
		return 0
	}
	dev := 0.0
	for _, n := range counts {
		if n < 0 {
			n = 0
		}
		dev += math.Abs(float64(n)/float64(total) - 1.0/3.0)
	}
	bonus := float64(harmonyBalanceMax) * (1 - dev/maxDeviation)
	if bonus < 0 {
		return 0
	}
	return int(math.Round(bonus))
}
