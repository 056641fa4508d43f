package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MilestoneDefinition is the seeded, read-only achievement catalog.
type MilestoneDefinition struct {
	ID            string         `gorm:"size:64;primaryKey" json:"id"`
	Title         string         `gorm:"size:128;not null" json:"title"`
	Description   string         `gorm:"size:512" json:"description"`
	Icon          string         `gorm:"size:64" json:"icon"`
	Category      string         `gorm:"size:32;not null;index" json:"category"`
	Threshold     int            `gorm:"not null" json:"threshold"`
	ThresholdType string         `gorm:"size:16;not null" json:"threshold_type"`
	Rarity        string         `gorm:"size:16;not null" json:"rarity"`
	SortOrder     int            `gorm:"not null;default:0" json:"sort_order"`
	Metadata      datatypes.JSON `json:"metadata"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// MilestoneProgress is the last evaluated value for a milestone the user has
// not earned yet.
type MilestoneProgress struct {
	UserID       uuid.UUID `gorm:"size:36;primaryKey" json:"user_id"`
	MilestoneID  string    `gorm:"size:64;primaryKey" json:"milestone_id"`
	CurrentValue int       `gorm:"not null;default:0" json:"current_value"`
	LastUpdated  time.Time `gorm:"not null" json:"last_updated"`
}

func (MilestoneProgress) TableName() string { return "milestone_progress" }

// UserMilestone is created once per (user, milestone) and never deleted
// except by a hard reset. ShownCelebration is the only mutable column.
type UserMilestone struct {
	UserID               uuid.UUID `gorm:"size:36;primaryKey" json:"user_id"`
	MilestoneID          string    `gorm:"size:64;primaryKey" json:"milestone_id"`
	AchievedAt           time.Time `gorm:"not null" json:"achieved_at"`
	ProgressValueAtAward int       `gorm:"not null;default:0" json:"progress_value_at_award"`
	ShownCelebration     bool      `gorm:"not null;default:false" json:"shown_celebration"`
}
