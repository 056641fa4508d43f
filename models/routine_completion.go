package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/soteriahealth/soteria/stats"
)

// RoutineCompletion is the append-only ledger every aggregate is derived from.
// LocalDate is resolved with the user's timezone at write time.
type RoutineCompletion struct {
	ID          uuid.UUID      `gorm:"size:36;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"size:36;not null;index:idx_completions_user_date,priority:1" json:"user_id"`
	RoutineID   string         `gorm:"size:64;not null;index" json:"routine_id"`
	Category    stats.Category `gorm:"size:16;not null" json:"category"`
	LocalDate   stats.Date     `gorm:"type:date;not null;index:idx_completions_user_date,priority:2" json:"local_date"`
	CompletedAt time.Time      `gorm:"not null" json:"completed_at"`
}
