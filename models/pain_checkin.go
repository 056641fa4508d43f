package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/soteriahealth/soteria/stats"
)

// PainCheckIn is a self-reported pain level for one moment of a local day.
type PainCheckIn struct {
	ID        uuid.UUID      `gorm:"size:36;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"size:36;not null;index:idx_pain_user_date,priority:1" json:"user_id"`
	LocalDate stats.Date     `gorm:"type:date;not null;index:idx_pain_user_date,priority:2" json:"local_date"`
	PainLevel int            `gorm:"not null" json:"pain_level"`
	BodyAreas datatypes.JSON `json:"body_areas"`
	Notes     string         `gorm:"type:text" json:"notes"`
	CreatedAt time.Time      `json:"created_at"`
}

// CircleMember is read by the engine to count a user's social circles.
// Circle management lives elsewhere.
type CircleMember struct {
	CircleID uuid.UUID `gorm:"size:36;primaryKey" json:"circle_id"`
	UserID   uuid.UUID `gorm:"size:36;primaryKey;index" json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}
