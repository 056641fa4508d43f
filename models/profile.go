package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soteriahealth/soteria/stats"
)

// Profile holds the per-user settings the engine reads. Rows are owned by
// the account service; the engine only creates a missing row and maintains
// the journey fields.
type Profile struct {
	ID               uuid.UUID   `gorm:"size:36;primaryKey" json:"id"`
	Timezone         string      `gorm:"size:64" json:"timezone"`
	JourneyStartDate *stats.Date `gorm:"type:date" json:"journey_start_date"`
	JourneyDay       int         `gorm:"not null;default:0" json:"journey_day"`
	LastActiveDate   *stats.Date `gorm:"type:date" json:"last_active_date"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return nil
}

// Location resolves the profile timezone, falling back to def.
func (p Profile) Location(def string) *time.Location {
	if p.Timezone != "" {
		return stats.LoadLocation(p.Timezone)
	}
	return stats.LoadLocation(def)
}

// ZeroJourneyColumns is the column set written by a hard reset.
func ZeroJourneyColumns() map[string]interface{} {
	return map[string]interface{}{
		"journey_start_date": nil,
		"journey_day":        0,
		"last_active_date":   nil,
		"updated_at":         time.Now(),
	}
}
