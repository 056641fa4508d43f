package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/soteriahealth/soteria/models"
	"github.com/soteriahealth/soteria/utils"
)

// ResetSummary counts the rows a hard reset removed, per table.
type ResetSummary struct {
	DailyProgress      int64 `json:"daily_progress"`
	RoutineCompletions int64 `json:"routine_completions"`
	UserMilestones     int64 `json:"user_milestones"`
	MilestoneProgress  int64 `json:"milestone_progress"`
	PainCheckIns       int64 `json:"pain_check_ins"`
}

// Total is the number of rows deleted across all tables.
func (s ResetSummary) Total() int64 {
	return s.DailyProgress + s.RoutineCompletions + s.UserMilestones + s.MilestoneProgress + s.PainCheckIns
}

// HardReset erases the user's history and derived state in one transaction:
// every step applies or none does. Stats and journey fields are zeroed, not
// deleted, so a second run deletes nothing.
func (e *Engine) HardReset(ctx context.Context, userID uuid.UUID) (ResetSummary, error) {
	if err := requireUser(userID); err != nil {
		return ResetSummary{}, err
	}

	var sum ResetSummary
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			model any
			where string
			count *int64
		}{
			{&models.UserMilestone{}, "user_id = ?", &sum.UserMilestones},
			{&models.MilestoneProgress{}, "user_id = ?", &sum.MilestoneProgress},
			{&models.DailyProgress{}, "user_id = ?", &sum.DailyProgress},
			{&models.RoutineCompletion{}, "user_id = ?", &sum.RoutineCompletions},
			{&models.PainCheckIn{}, "user_id = ?", &sum.PainCheckIns},
		}
		for _, s := range steps {
			res := tx.Where(s.where, userID).Delete(s.model)
			if res.Error != nil {
				return res.Error
			}
			*s.count = res.RowsAffected
		}

		if err := tx.Model(&models.UserStats{}).Where("user_id = ?", userID).
			Updates(models.ZeroStatsColumns()).Error; err != nil {
			return err
		}
		return tx.Model(&models.Profile{}).Where("id = ?", userID).
			Updates(models.ZeroJourneyColumns()).Error
	})
	if err != nil {
		return ResetSummary{}, storageErr("hard reset", err)
	}

	e.invalidate(ctx, userID)
	if e.sessions != nil {
		if err := e.sessions.Clear(ctx, userID); err != nil {
			utils.Logger.Warn("clear execution sessions after reset", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}
	utils.Logger.Info("hard reset",
		zap.String("user_id", userID.String()),
		zap.Int64("daily_progress", sum.DailyProgress),
		zap.Int64("routine_completions", sum.RoutineCompletions),
		zap.Int64("user_milestones", sum.UserMilestones),
		zap.Int64("milestone_progress", sum.MilestoneProgress),
		zap.Int64("pain_check_ins", sum.PainCheckIns),
	)
	return sum, nil
}
