package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/soteriahealth/soteria/stats"
)

// UserStats is a cached aggregate, recomputed in full from the completion
// ledger and daily progress after every completion.
type UserStats struct {
	UserID        uuid.UUID `gorm:"size:36;primaryKey" json:"user_id"`
	TotalRoutines int       `gorm:"not null;default:0" json:"total_routines"`
	DaysActive    int       `gorm:"not null;default:0" json:"days_active"`
	BalancedDays  int       `gorm:"not null;default:0" json:"balanced_days"`

	MindRoutines int `gorm:"not null;default:0" json:"mind_routines"`
	BodyRoutines int `gorm:"not null;default:0" json:"body_routines"`
	SoulRoutines int `gorm:"not null;default:0" json:"soul_routines"`

	CurrentStreak int `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak int `gorm:"not null;default:0" json:"longest_streak"`

	MindCurrentStreak int `gorm:"not null;default:0" json:"mind_current_streak"`
	MindLongestStreak int `gorm:"not null;default:0" json:"mind_longest_streak"`
	BodyCurrentStreak int `gorm:"not null;default:0" json:"body_current_streak"`
	BodyLongestStreak int `gorm:"not null;default:0" json:"body_longest_streak"`
	SoulCurrentStreak int `gorm:"not null;default:0" json:"soul_current_streak"`
	SoulLongestStreak int `gorm:"not null;default:0" json:"soul_longest_streak"`

	MindLastActivity *stats.Date `gorm:"type:date" json:"mind_last_activity"`
	BodyLastActivity *stats.Date `gorm:"type:date" json:"body_last_activity"`
	SoulLastActivity *stats.Date `gorm:"type:date" json:"soul_last_activity"`

	HarmonyScore int       `gorm:"not null;default:0" json:"harmony_score"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UniqueRoutines returns the unique-routine count for c.
func (s UserStats) UniqueRoutines(c stats.Category) int {
	switch c {
	case stats.Mind:
		return s.MindRoutines
	case stats.Body:
		return s.BodyRoutines
	case stats.Soul:
		return s.SoulRoutines
	}
	return 0
}

// CategoryStreak returns the streak pair stored for c.
func (s UserStats) CategoryStreak(c stats.Category) stats.Streak {
	switch c {
	case stats.Mind:
		return stats.Streak{Current: s.MindCurrentStreak, Longest: s.MindLongestStreak}
	case stats.Body:
		return stats.Streak{Current: s.BodyCurrentStreak, Longest: s.BodyLongestStreak}
	case stats.Soul:
		return stats.Streak{Current: s.SoulCurrentStreak, Longest: s.SoulLongestStreak}
	}
	return stats.Streak{}
}

// ZeroStatsColumns is the column set written by a hard reset.
func ZeroStatsColumns() map[string]interface{} {
	return map[string]interface{}{
		"total_routines":      0,
		"days_active":         0,
		"balanced_days":       0,
		"mind_routines":       0,
		"body_routines":       0,
		"soul_routines":       0,
		"current_streak":      0,
		"longest_streak":      0,
		"mind_current_streak": 0,
		"mind_longest_streak": 0,
		"body_current_streak": 0,
		"body_longest_streak": 0,
		"soul_current_streak": 0,
		"soul_longest_streak": 0,
		"mind_last_activity":  nil,
		"body_last_activity":  nil,
		"soul_last_activity":  nil,
		"harmony_score":       0,
		"updated_at":          time.Now(),
	}
}
