package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/soteriahealth/soteria/models"
	"github.com/soteriahealth/soteria/stats"
	"github.com/soteriahealth/soteria/utils"
)

const (
	maxPainLevel  = 10
	maxPainNotes  = 2000
	maxBodyAreas  = 16
	maxAreaLength = 32
)

// PainInput is one pain check-in from the client.
type PainInput struct {
	UserID     uuid.UUID
	PainLevel  int
	BodyAreas  []string
	Notes      string
	RecordedAt time.Time
}

// PainResult carries the stored check-in and any milestones it unlocked.
type PainResult struct {
	CheckIn       models.PainCheckIn `json:"check_in"`
	NewMilestones []string           `json:"new_milestones"`
}

// RecordPainCheckIn stores a check-in and evaluates milestones afterwards.
func (e *Engine) RecordPainCheckIn(ctx context.Context, in PainInput) (*PainResult, error) {
	if err := requireUser(in.UserID); err != nil {
		return nil, err
	}
	if in.PainLevel < 0 || in.PainLevel > maxPainLevel {
		return nil, invalid("pain_level", "must be between 0 and %d", maxPainLevel)
	}
	if len(in.BodyAreas) > maxBodyAreas {
		return nil, invalid("body_areas", "at most %d entries", maxBodyAreas)
	}
	areas := make([]string, 0, len(in.BodyAreas))
	for _, a := range in.BodyAreas {
		a = strings.ToLower(strings.TrimSpace(utils.SanitizeText(a)))
		if a == "" {
			continue
		}
		if len(a) > maxAreaLength {
			return nil, invalid("body_areas", "entry longer than %d characters", maxAreaLength)
		}
		areas = append(areas, a)
	}
	notes := strings.TrimSpace(utils.SanitizeText(in.Notes))
	if len(notes) > maxPainNotes {
		return nil, invalid("notes", "longer than %d characters", maxPainNotes)
	}
	now := e.clock.Now()
	if in.RecordedAt.IsZero() {
		in.RecordedAt = now
	}
	rawAreas, err := json.Marshal(areas)
	if err != nil {
		return nil, invalid("body_areas", "%v", err)
	}

	var res PainResult
	var asOf stats.Date
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := ensureProfile(tx, in.UserID)
		if err != nil {
			return err
		}
		loc := profile.Location(e.tz)
		asOf = stats.LocalDate(now, loc)
		res.CheckIn = models.PainCheckIn{
			ID:        uuid.New(),
			UserID:    in.UserID,
			LocalDate: stats.LocalDate(in.RecordedAt, loc),
			PainLevel: in.PainLevel,
			BodyAreas: datatypes.JSON(rawAreas),
			Notes:     notes,
			CreatedAt: in.RecordedAt,
		}
		if stats.DaysBetween(asOf, res.CheckIn.LocalDate) > 0 {
			asOf = res.CheckIn.LocalDate
		}
		return tx.Create(&res.CheckIn).Error
	})
	if err != nil {
		return nil, storageErr("record pain check-in", err)
	}
	e.invalidate(ctx, in.UserID)

	res.NewMilestones = e.evaluateAfterWrite(ctx, in.UserID, asOf)
	return &res, nil
}
