package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/soteriahealth/soteria/stats"
)

// DailyProgress records which categories a user completed on one local day.
// There is at most one row per (user_id, date); flags only move false -> true.
type DailyProgress struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"size:36;not null;uniqueIndex:idx_daily_progress_user_date,priority:1" json:"user_id"`
	Date         stats.Date `gorm:"type:date;not null;uniqueIndex:idx_daily_progress_user_date,priority:2" json:"date"`
	MindComplete bool       `gorm:"not null;default:false" json:"mind_complete"`
	BodyComplete bool       `gorm:"not null;default:false" json:"body_complete"`
	SoulComplete bool       `gorm:"not null;default:false" json:"soul_complete"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (DailyProgress) TableName() string { return "daily_progress" }

// Flags projects the row onto the calculator's day type.
func (p DailyProgress) Flags() stats.DayFlags {
	return stats.DayFlags{
		Date: p.Date,
		Mind: p.MindComplete,
		Body: p.BodyComplete,
		Soul: p.SoulComplete,
	}
}

// FlagsOf converts a slice of rows.
func FlagsOf(rows []DailyProgress) []stats.DayFlags {
	out := make([]stats.DayFlags, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Flags())
	}
	return out
}
