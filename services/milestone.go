package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/soteriahealth/soteria/milestones"
	"github.com/soteriahealth/soteria/models"
	"github.com/soteriahealth/soteria/stats"
	"github.com/soteriahealth/soteria/utils"
)

// MilestoneStatus is one catalog entry seen from a user.
type MilestoneStatus struct {
	milestones.Definition
	CurrentValue     int        `json:"current_value"`
	Percent          int        `json:"percent"`
	Achieved         bool       `json:"achieved"`
	AchievedAt       *time.Time `json:"achieved_at,omitempty"`
	ShownCelebration bool       `json:"shown_celebration"`
}

// SeedCatalog upserts the catalog into milestone_definitions so the table
// mirrors the definitions the engine evaluates.
func (e *Engine) SeedCatalog(ctx context.Context) error {
	rows := make([]models.MilestoneDefinition, 0, e.catalog.Len())
	for _, d := range e.catalog.All() {
		rows = append(rows, d.Model())
	}
	if len(rows) == 0 {
		return nil
	}
	err := e.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "description", "icon", "category", "threshold",
			"threshold_type", "rarity", "sort_order", "metadata", "updated_at",
		}),
	}).Create(&rows).Error
	return storageErr("seed milestone catalog", err)
}

// EvaluateMilestones measures every unearned milestone as of the user's
// current day and returns the ids awarded by this pass.
func (e *Engine) EvaluateMilestones(ctx context.Context, userID uuid.UUID) ([]string, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	today, err := e.Today(ctx, userID)
	if err != nil {
		return nil, err
	}
	awarded, err := e.EvaluateMilestonesAsOf(ctx, userID, today)
	if err == nil && len(awarded) > 0 {
		e.invalidate(ctx, userID)
	}
	return awarded, err
}

// EvaluateMilestonesAsOf re-derives the user's stats and evaluates the
// catalog in a single transaction, so stats and milestone rows always commit
// together. Awarding is conflict-safe: an already earned milestone is never
// inserted twice and never reported again.
func (e *Engine) EvaluateMilestonesAsOf(ctx context.Context, userID uuid.UUID, asOf stats.Date) ([]string, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if !asOf.Valid() {
		return nil, invalid("date", "expected YYYY-MM-DD, got %q", asOf)
	}

	awarded := []string{}
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var earnedIDs []string
		if err := tx.Model(&models.UserMilestone{}).Where("user_id = ?", userID).Pluck("milestone_id", &earnedIDs).Error; err != nil {
			return err
		}
		earned := make(map[string]bool, len(earnedIDs))
		for _, id := range earnedIDs {
			earned[id] = true
		}

		snap, err := e.snapshot(tx, userID, asOf)
		if err != nil {
			return err
		}

		now := e.clock.Now()
		for _, d := range e.catalog.All() {
			if earned[d.ID] {
				continue
			}
			value, err := d.Value(snap)
			if err != nil {
				return err
			}

			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "milestone_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"current_value", "last_updated"}),
			}).Create(&models.MilestoneProgress{
				UserID:       userID,
				MilestoneID:  d.ID,
				CurrentValue: value,
				LastUpdated:  now,
			}).Error; err != nil {
				return err
			}

			if !d.Qualifies(value) {
				continue
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.UserMilestone{
				UserID:               userID,
				MilestoneID:          d.ID,
				AchievedAt:           now,
				ProgressValueAtAward: value,
			})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				awarded = append(awarded, d.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageErr("evaluate milestones", err)
	}
	return awarded, nil
}

// evaluateAfterWrite is the post-commit hook of every write path. A failure
// leaves the write in place; the next triggering event retries.
func (e *Engine) evaluateAfterWrite(ctx context.Context, userID uuid.UUID, asOf stats.Date) []string {
	awarded, err := e.EvaluateMilestonesAsOf(ctx, userID, asOf)
	if err != nil {
		utils.Logger.Warn("milestone evaluation failed",
			zap.String("user_id", userID.String()),
			zap.String("as_of", string(asOf)),
			zap.Error(err),
		)
		return []string{}
	}
	if len(awarded) > 0 {
		utils.Logger.Info("milestones awarded",
			zap.String("user_id", userID.String()),
			zap.Strings("milestones", awarded),
		)
		e.invalidate(ctx, userID)
	}
	return awarded
}

func (e *Engine) snapshot(tx *gorm.DB, userID uuid.UUID, asOf stats.Date) (milestones.Snapshot, error) {
	st, days, err := recomputeStats(tx, userID, asOf)
	if err != nil {
		return milestones.Snapshot{}, err
	}

	snap := milestones.Snapshot{
		AsOf:          asOf,
		TotalRoutines: st.TotalRoutines,
		UniqueRoutines: map[stats.Category]int{
			stats.Mind: st.MindRoutines,
			stats.Body: st.BodyRoutines,
			stats.Soul: st.SoulRoutines,
		},
		BalancedDays: st.BalancedDays,
		Streak:       stats.Streak{Current: st.CurrentStreak, Longest: st.LongestStreak},
		HarmonyScore: st.HarmonyScore,
	}

	windowStart := asOf.OffsetDays(-(stats.HarmonyWindowDays - 1))
	for _, d := range days {
		if stats.DaysBetween(windowStart, d.Date) >= 0 {
			snap.Recent = append(snap.Recent, d)
		}
	}

	var p models.Profile
	err = tx.Where("id = ?", userID).First(&p).Error
	switch {
	case err == nil:
		snap.JourneyStart = p.JourneyStartDate
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return milestones.Snapshot{}, err
	}

	var painDays int64
	if err := tx.Model(&models.PainCheckIn{}).
		Where("user_id = ? AND local_date <= ?", userID, asOf).
		Distinct("local_date").
		Count(&painDays).Error; err != nil {
		return milestones.Snapshot{}, err
	}
	snap.PainDays = int(painDays)
	if painDays > 0 {
		var first, latest models.PainCheckIn
		if err := tx.Where("user_id = ? AND local_date <= ?", userID, asOf).Order("created_at ASC").First(&first).Error; err != nil {
			return milestones.Snapshot{}, err
		}
		if err := tx.Where("user_id = ? AND local_date <= ?", userID, asOf).Order("created_at DESC").First(&latest).Error; err != nil {
			return milestones.Snapshot{}, err
		}
		snap.PainFirst = &first.PainLevel
		snap.PainLatest = &latest.PainLevel
	}

	var circles int64
	if err := tx.Model(&models.CircleMember{}).Where("user_id = ?", userID).Count(&circles).Error; err != nil {
		return milestones.Snapshot{}, err
	}
	snap.CirclesJoined = int(circles)
	return snap, nil
}

// GetMilestoneSummary lists every catalog entry with the user's progress.
func (e *Engine) GetMilestoneSummary(ctx context.Context, userID uuid.UUID) ([]MilestoneStatus, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	key := cacheKeyPrefix(userID) + "milestones"
	var out []MilestoneStatus
	if e.cache != nil && e.cache.GetJSON(ctx, key, &out) {
		return out, nil
	}

	db := e.db.WithContext(ctx)
	var earned []models.UserMilestone
	if err := db.Where("user_id = ?", userID).Find(&earned).Error; err != nil {
		return nil, storageErr("get milestone summary", err)
	}
	var progress []models.MilestoneProgress
	if err := db.Where("user_id = ?", userID).Find(&progress).Error; err != nil {
		return nil, storageErr("get milestone summary", err)
	}

	earnedByID := make(map[string]models.UserMilestone, len(earned))
	for _, m := range earned {
		earnedByID[m.MilestoneID] = m
	}
	valueByID := make(map[string]int, len(progress))
	for _, p := range progress {
		valueByID[p.MilestoneID] = p.CurrentValue
	}

	out = make([]MilestoneStatus, 0, e.catalog.Len())
	for _, d := range e.catalog.All() {
		s := MilestoneStatus{Definition: d, CurrentValue: valueByID[d.ID]}
		if m, ok := earnedByID[d.ID]; ok {
			achievedAt := m.AchievedAt
			s.Achieved = true
			s.AchievedAt = &achievedAt
			s.ShownCelebration = m.ShownCelebration
			if m.ProgressValueAtAward > s.CurrentValue {
				s.CurrentValue = m.ProgressValueAtAward
			}
		}
		s.Percent = d.Percent(s.CurrentValue)
		out = append(out, s)
	}

	if e.cache != nil {
		e.cache.SetJSON(ctx, key, out, e.cacheTTL)
	}
	return out, nil
}

// PendingCelebrations lists earned milestones the client has not shown yet.
func (e *Engine) PendingCelebrations(ctx context.Context, userID uuid.UUID) ([]MilestoneStatus, error) {
	all, err := e.GetMilestoneSummary(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := []MilestoneStatus{}
	for _, s := range all {
		if s.Achieved && !s.ShownCelebration {
			out = append(out, s)
		}
	}
	return out, nil
}

// MarkCelebrated records that the client displayed the award. Repeating the
// call is harmless.
func (e *Engine) MarkCelebrated(ctx context.Context, userID uuid.UUID, milestoneID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if _, ok := e.catalog.Get(milestoneID); !ok {
		return invalid("milestone_id", "unknown %q", milestoneID)
	}

	res := e.db.WithContext(ctx).Model(&models.UserMilestone{}).
		Where("user_id = ? AND milestone_id = ?", userID, milestoneID).
		Update("shown_celebration", true)
	if res.Error != nil {
		return storageErr("mark celebrated", res.Error)
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := e.db.WithContext(ctx).Model(&models.UserMilestone{}).
			Where("user_id = ? AND milestone_id = ?", userID, milestoneID).
			Count(&n).Error; err != nil {
			return storageErr("mark celebrated", err)
		}
		if n == 0 {
			return ErrNotFound
		}
	}
	e.invalidate(ctx, userID)
	return nil
}
