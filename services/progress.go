package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/soteriahealth/soteria/models"
	"github.com/soteriahealth/soteria/stats"
	"github.com/soteriahealth/soteria/utils"
)

// CompletionInput describes one finished routine.
type CompletionInput struct {
	UserID      uuid.UUID
	RoutineID   string
	Category    stats.Category
	CompletedAt time.Time
}

// CompletionResult is what the UI needs after a completion: the updated day,
// the refreshed stats and the milestones to celebrate.
type CompletionResult struct {
	Completion    models.RoutineCompletion `json:"completion"`
	Progress      models.DailyProgress     `json:"progress"`
	Stats         models.UserStats         `json:"stats"`
	NewMilestones []string                 `json:"new_milestones"`
}

// AvatarView is the avatar projection for the user's current local day.
type AvatarView struct {
	Date   stats.Date         `json:"date"`
	States stats.AvatarStates `json:"states"`
}

// RecordCompletion appends the completion to the ledger, marks the day's
// category, updates the journey and recomputes stats in one transaction.
// Milestones are evaluated after commit; their failure is logged only.
func (e *Engine) RecordCompletion(ctx context.Context, in CompletionInput) (*CompletionResult, error) {
	if err := requireUser(in.UserID); err != nil {
		return nil, err
	}
	in.RoutineID = strings.TrimSpace(in.RoutineID)
	if in.RoutineID == "" {
		return nil, invalid("routine_id", "missing")
	}
	if len(in.RoutineID) > 64 {
		return nil, invalid("routine_id", "longer than 64 characters")
	}
	if !in.Category.Valid() {
		return nil, invalid("category", "unknown %q", in.Category)
	}
	now := e.clock.Now()
	if in.CompletedAt.IsZero() {
		in.CompletedAt = now
	}

	var res CompletionResult
	var asOf stats.Date
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := ensureProfile(tx, in.UserID)
		if err != nil {
			return err
		}
		loc := profile.Location(e.tz)
		date := stats.LocalDate(in.CompletedAt, loc)
		asOf = stats.LocalDate(now, loc)
		if stats.DaysBetween(asOf, date) > 0 {
			asOf = date
		}

		res.Completion = models.RoutineCompletion{
			ID:          uuid.New(),
			UserID:      in.UserID,
			RoutineID:   in.RoutineID,
			Category:    in.Category,
			LocalDate:   date,
			CompletedAt: in.CompletedAt,
		}
		if err := tx.Create(&res.Completion).Error; err != nil {
			return err
		}

		if res.Progress, err = markComplete(tx, in.UserID, date, in.Category); err != nil {
			return err
		}
		if err := advanceJourney(tx, profile, date, asOf); err != nil {
			return err
		}

		res.Stats, _, err = recomputeStats(tx, in.UserID, asOf)
		return err
	})
	if err != nil {
		return nil, storageErr("record completion", err)
	}
	e.invalidate(ctx, in.UserID)

	res.NewMilestones = e.evaluateAfterWrite(ctx, in.UserID, asOf)
	return &res, nil
}

// MarkCategoryComplete sets one category flag of the user's day. Other flags
// are left as they are and a flag that is already set stays set.
func (e *Engine) MarkCategoryComplete(ctx context.Context, userID uuid.UUID, date stats.Date, c stats.Category) (models.DailyProgress, error) {
	if err := requireUser(userID); err != nil {
		return models.DailyProgress{}, err
	}
	if !date.Valid() {
		return models.DailyProgress{}, invalid("date", "expected YYYY-MM-DD, got %q", date)
	}
	if !c.Valid() {
		return models.DailyProgress{}, invalid("category", "unknown %q", c)
	}

	var out models.DailyProgress
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = markComplete(tx, userID, date, c)
		return err
	})
	if err != nil {
		return models.DailyProgress{}, storageErr("mark category complete", err)
	}
	e.invalidate(ctx, userID)
	return out, nil
}

// GetDailyProgress returns the user's row for date, or an all-false row when
// nothing was completed that day.
func (e *Engine) GetDailyProgress(ctx context.Context, userID uuid.UUID, date stats.Date) (models.DailyProgress, error) {
	if err := requireUser(userID); err != nil {
		return models.DailyProgress{}, err
	}
	if !date.Valid() {
		return models.DailyProgress{}, invalid("date", "expected YYYY-MM-DD, got %q", date)
	}
	p, err := loadDay(e.db.WithContext(ctx), userID, date)
	if err != nil {
		return models.DailyProgress{}, storageErr("get daily progress", err)
	}
	return p, nil
}

// GetUserStats returns stats re-derived as of the user's current day, so a
// streak broken by inactivity reads as broken without a new completion.
func (e *Engine) GetUserStats(ctx context.Context, userID uuid.UUID) (models.UserStats, error) {
	if err := requireUser(userID); err != nil {
		return models.UserStats{}, err
	}
	today, err := e.Today(ctx, userID)
	if err != nil {
		return models.UserStats{}, err
	}

	key := cacheKeyPrefix(userID) + "stats:" + string(today)
	var st models.UserStats
	if e.cache != nil && e.cache.GetJSON(ctx, key, &st) {
		return st, nil
	}

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		st, _, err = recomputeStats(tx, userID, today)
		return err
	})
	if err != nil {
		return models.UserStats{}, storageErr("get user stats", err)
	}
	if e.cache != nil {
		e.cache.SetJSON(ctx, key, st, e.cacheTTL)
	}
	return st, nil
}

// GetAvatarStates projects today's progress and the live session signal.
func (e *Engine) GetAvatarStates(ctx context.Context, userID uuid.UUID) (AvatarView, error) {
	if err := requireUser(userID); err != nil {
		return AvatarView{}, err
	}
	today, err := e.Today(ctx, userID)
	if err != nil {
		return AvatarView{}, err
	}
	return e.AvatarStatesOn(ctx, userID, today)
}

// AvatarStatesOn resolves the avatar for a specific local day.
func (e *Engine) AvatarStatesOn(ctx context.Context, userID uuid.UUID, date stats.Date) (AvatarView, error) {
	if !date.Valid() {
		return AvatarView{}, invalid("date", "expected YYYY-MM-DD, got %q", date)
	}
	day, err := loadDay(e.db.WithContext(ctx), userID, date)
	if err != nil {
		return AvatarView{}, storageErr("get avatar states", err)
	}

	var executing map[stats.Category]bool
	if e.sessions != nil {
		executing, err = e.sessions.Active(ctx, userID)
		if err != nil {
			// the avatar still renders from persisted progress
			utils.Logger.Warn("execution sessions unavailable", zap.String("user_id", userID.String()), zap.Error(err))
			executing = nil
		}
	}
	return AvatarView{Date: date, States: stats.ResolveAvatarStates(day.Flags(), executing)}, nil
}

// StartExecution marks a routine of category c as running for the user.
func (e *Engine) StartExecution(ctx context.Context, userID uuid.UUID, c stats.Category) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if !c.Valid() {
		return invalid("category", "unknown %q", c)
	}
	if e.sessions == nil {
		return nil
	}
	return storageErr("start execution", e.sessions.Start(ctx, userID, c))
}

// StopExecution clears the running marker for category c.
func (e *Engine) StopExecution(ctx context.Context, userID uuid.UUID, c stats.Category) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if !c.Valid() {
		return invalid("category", "unknown %q", c)
	}
	if e.sessions == nil {
		return nil
	}
	return storageErr("stop execution", e.sessions.Stop(ctx, userID, c))
}

func ensureProfile(tx *gorm.DB, userID uuid.UUID) (models.Profile, error) {
	// insert first: FOR UPDATE on a missing row locks nothing
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Profile{ID: userID}).Error; err != nil {
		return models.Profile{}, err
	}
	var p models.Profile
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", userID).
		First(&p).Error
	return p, err
}

// markComplete is an atomic insert-or-update that only ever sets c's flag.
func markComplete(tx *gorm.DB, userID uuid.UUID, date stats.Date, c stats.Category) (models.DailyProgress, error) {
	row := models.DailyProgress{UserID: userID, Date: date}
	switch c {
	case stats.Mind:
		row.MindComplete = true
	case stats.Body:
		row.BodyComplete = true
	case stats.Soul:
		row.SoulComplete = true
	}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{c.Column(): true, "updated_at": time.Now()}),
	}).Create(&row).Error
	if err != nil {
		return models.DailyProgress{}, err
	}
	return loadDay(tx, userID, date)
}

func loadDay(tx *gorm.DB, userID uuid.UUID, date stats.Date) (models.DailyProgress, error) {
	var p models.DailyProgress
	err := tx.Where("user_id = ? AND date = ?", userID, date).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DailyProgress{UserID: userID, Date: date}, nil
	}
	return p, err
}

// advanceJourney starts the journey on the first completion and keeps the
// last active date and day counter current.
func advanceJourney(tx *gorm.DB, p models.Profile, date, asOf stats.Date) error {
	start := date
	if p.JourneyStartDate != nil && p.JourneyStartDate.Valid() && stats.DaysBetween(*p.JourneyStartDate, date) > 0 {
		start = *p.JourneyStartDate
	}
	last := date
	if p.LastActiveDate != nil && p.LastActiveDate.Valid() && stats.DaysBetween(date, *p.LastActiveDate) > 0 {
		last = *p.LastActiveDate
	}
	return tx.Model(&models.Profile{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"journey_start_date": start,
		"journey_day":        stats.DaysBetween(start, asOf) + 1,
		"last_active_date":   last,
		"updated_at":         time.Now(),
	}).Error
}

type categoryCount struct {
	Category stats.Category
	Total    int
}

// recomputeStats re-derives the user's aggregate row from the ledger and the
// daily rows up to asOf, and upserts it. It also returns the daily flags it
// read so callers can build further projections without another query.
func recomputeStats(tx *gorm.DB, userID uuid.UUID, asOf stats.Date) (models.UserStats, []stats.DayFlags, error) {
	var locked models.UserStats
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&locked).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.UserStats{}, nil, err
	}

	var total int64
	if err := tx.Model(&models.RoutineCompletion{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return models.UserStats{}, nil, err
	}

	var unique []categoryCount
	if err := tx.Model(&models.RoutineCompletion{}).
		Select("category, COUNT(DISTINCT routine_id) AS total").
		Where("user_id = ?", userID).
		Group("category").
		Scan(&unique).Error; err != nil {
		return models.UserStats{}, nil, err
	}

	var rows []models.DailyProgress
	if err := tx.Where("user_id = ? AND date <= ?", userID, asOf).Order("date").Find(&rows).Error; err != nil {
		return models.UserStats{}, nil, err
	}
	days := models.FlagsOf(rows)

	st := buildStats(userID, int(total), unique, days, asOf)
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(&st).Error
	return st, days, err
}

func buildStats(userID uuid.UUID, total int, unique []categoryCount, days []stats.DayFlags, asOf stats.Date) models.UserStats {
	st := models.UserStats{UserID: userID, TotalRoutines: total, UpdatedAt: time.Now()}
	for _, u := range unique {
		switch u.Category {
		case stats.Mind:
			st.MindRoutines = u.Total
		case stats.Body:
			st.BodyRoutines = u.Total
		case stats.Soul:
			st.SoulRoutines = u.Total
		}
	}

	last := map[stats.Category]stats.Date{}
	for _, d := range days {
		if d.Any() {
			st.DaysActive++
		}
		if d.All() {
			st.BalancedDays++
		}
		for _, c := range stats.Categories {
			if d.Has(c) && d.Date > last[c] {
				last[c] = d.Date
			}
		}
	}
	datePtr := func(c stats.Category) *stats.Date {
		if d, ok := last[c]; ok {
			return &d
		}
		return nil
	}
	st.MindLastActivity = datePtr(stats.Mind)
	st.BodyLastActivity = datePtr(stats.Body)
	st.SoulLastActivity = datePtr(stats.Soul)

	byCat, overall := stats.CategoryStreaks(days, asOf)
	st.CurrentStreak, st.LongestStreak = overall.Current, overall.Longest
	st.MindCurrentStreak, st.MindLongestStreak = byCat[stats.Mind].Current, byCat[stats.Mind].Longest
	st.BodyCurrentStreak, st.BodyLongestStreak = byCat[stats.Body].Current, byCat[stats.Body].Longest
	st.SoulCurrentStreak, st.SoulLongestStreak = byCat[stats.Soul].Current, byCat[stats.Soul].Longest

	st.HarmonyScore = stats.ComputeHarmony(days, asOf).Score
	return st
}
