package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soteriahealth/soteria/models"
	"github.com/soteriahealth/soteria/stats"
	"github.com/soteriahealth/soteria/testutil"
	"github.com/soteriahealth/soteria/utils"
)

func TestRecordCompletion_FirstRoutine(t *testing.T) {
	env := newTestEnv(t)

	res := env.complete(t, "box-breathing", stats.Mind)

	assert.Equal(t, stats.Date("2026-03-10"), res.Completion.LocalDate)
	assert.Equal(t, stats.Date("2026-03-10"), res.Progress.Date)
	assert.True(t, res.Progress.MindComplete)
	assert.False(t, res.Progress.BodyComplete)
	assert.False(t, res.Progress.SoulComplete)

	assert.Equal(t, 1, res.Stats.TotalRoutines)
	assert.Equal(t, 1, res.Stats.MindRoutines)
	assert.Equal(t, 1, res.Stats.DaysActive)
	assert.Equal(t, 1, res.Stats.CurrentStreak)
	assert.Equal(t, 1, res.Stats.LongestStreak)
	assert.Equal(t, 1, res.Stats.MindCurrentStreak)
	assert.Equal(t, 0, res.Stats.BodyCurrentStreak)
	assert.Equal(t, 0, res.Stats.HarmonyScore)
	require.NotNil(t, res.Stats.MindLastActivity)
	assert.Equal(t, stats.Date("2026-03-10"), *res.Stats.MindLastActivity)
	assert.Nil(t, res.Stats.BodyLastActivity)

	assert.Equal(t, []string{"routine_1"}, res.NewMilestones)

	var p models.Profile
	require.NoError(t, env.db.Where("id = ?", env.user).First(&p).Error)
	require.NotNil(t, p.JourneyStartDate)
	assert.Equal(t, stats.Date("2026-03-10"), *p.JourneyStartDate)
	assert.Equal(t, 1, p.JourneyDay)
}

func TestRecordCompletion_FlagsOnlyTurnOn(t *testing.T) {
	env := newTestEnv(t)

	env.complete(t, "box-breathing", stats.Mind)
	env.complete(t, "stretch", stats.Body)
	res := env.complete(t, "box-breathing", stats.Mind)

	assert.True(t, res.Progress.MindComplete)
	assert.True(t, res.Progress.BodyComplete)
	assert.False(t, res.Progress.SoulComplete)

	// the ledger keeps every completion, unique counts collapse repeats
	assert.Equal(t, 3, res.Stats.TotalRoutines)
	assert.Equal(t, 1, res.Stats.MindRoutines)
	assert.Equal(t, 1, res.Stats.BodyRoutines)

	var rows int64
	require.NoError(t, env.db.Model(&models.DailyProgress{}).Where("user_id = ?", env.user).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestRecordCompletion_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    CompletionInput
		field string
	}{
		{"missing user", CompletionInput{RoutineID: "r", Category: stats.Mind}, "user_id"},
		{"missing routine", CompletionInput{UserID: env.user, RoutineID: "  ", Category: stats.Mind}, "routine_id"},
		{"unknown category", CompletionInput{UserID: env.user, RoutineID: "r", Category: "spirit"}, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.engine.RecordCompletion(ctx, tt.in)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	var n int64
	require.NoError(t, env.db.Model(&models.RoutineCompletion{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestRecordCompletion_UsesProfileTimezone(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.db.Create(&models.Profile{ID: env.user, Timezone: "America/New_York"}).Error)
	// 03:00 UTC is still the previous evening in New York
	env.clock.Set(time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC))

	res := env.complete(t, "evening-walk", stats.Body)

	assert.Equal(t, stats.Date("2026-03-09"), res.Progress.Date)
	today, err := env.engine.Today(context.Background(), env.user)
	require.NoError(t, err)
	assert.Equal(t, stats.Date("2026-03-09"), today)
}

func TestStreaksFollowCalendarDays(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// active on days 1, 2, 3 and 5
	for i, active := range []bool{true, true, true, false, true} {
		if i > 0 {
			env.clock.AdvanceDays(1)
		}
		if active {
			env.complete(t, "journal", stats.Soul)
		}
	}

	st, err := env.engine.GetUserStats(ctx, env.user)
	require.NoError(t, err)
	assert.Equal(t, 1, st.CurrentStreak)
	assert.Equal(t, 3, st.LongestStreak)
	assert.Equal(t, 1, st.SoulCurrentStreak)
	assert.Equal(t, 3, st.SoulLongestStreak)
	assert.Equal(t, 4, st.DaysActive)

	// yesterday still counts
	env.clock.AdvanceDays(1)
	st, err = env.engine.GetUserStats(ctx, env.user)
	require.NoError(t, err)
	assert.Equal(t, 1, st.CurrentStreak)

	// two idle days break the streak without a new write
	env.clock.AdvanceDays(1)
	st, err = env.engine.GetUserStats(ctx, env.user)
	require.NoError(t, err)
	assert.Equal(t, 0, st.CurrentStreak)
	assert.Equal(t, 3, st.LongestStreak)
}

func TestGetUserStats_CacheInvalidatedByWrites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.complete(t, "box-breathing", stats.Mind)
	st, err := env.engine.GetUserStats(ctx, env.user)
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalRoutines)
	assert.NotZero(t, env.cache.len())

	env.complete(t, "stretch", stats.Body)
	st, err = env.engine.GetUserStats(ctx, env.user)
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalRoutines)
}

func TestHarmonyPersistedWithStats(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 3; i++ {
		if i > 0 {
			env.clock.AdvanceDays(1)
		}
		env.complete(t, "meditate", stats.Mind)
		env.complete(t, "yoga", stats.Body)
		res := env.complete(t, "gratitude", stats.Soul)
		if i < 2 {
			// balanced categories without a three day streak
			assert.Equal(t, 80, res.Stats.HarmonyScore)
		} else {
			assert.Equal(t, 100, res.Stats.HarmonyScore)
		}
	}

	var st models.UserStats
	require.NoError(t, env.db.Where("user_id = ?", env.user).First(&st).Error)
	assert.Equal(t, 100, st.HarmonyScore)
	assert.Equal(t, 3, st.BalancedDays)
}

func TestGetDailyProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	empty, err := env.engine.GetDailyProgress(ctx, env.user, "2026-03-10")
	require.NoError(t, err)
	assert.False(t, empty.Flags().Any())
	assert.Equal(t, stats.Date("2026-03-10"), empty.Date)

	env.complete(t, "stretch", stats.Body)
	got, err := env.engine.GetDailyProgress(ctx, env.user, "2026-03-10")
	require.NoError(t, err)
	assert.True(t, got.BodyComplete)

	_, err = env.engine.GetDailyProgress(ctx, env.user, "10/03/2026")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestMarkCategoryComplete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	row, err := env.engine.MarkCategoryComplete(ctx, env.user, "2026-03-08", stats.Soul)
	require.NoError(t, err)
	assert.True(t, row.SoulComplete)

	row, err = env.engine.MarkCategoryComplete(ctx, env.user, "2026-03-08", stats.Mind)
	require.NoError(t, err)
	assert.True(t, row.SoulComplete)
	assert.True(t, row.MindComplete)
	assert.False(t, row.BodyComplete)

	_, err = env.engine.MarkCategoryComplete(ctx, uuid.Nil, "2026-03-08", stats.Mind)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAvatarStatesThroughTheDay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	view, err := env.engine.GetAvatarStates(ctx, env.user)
	require.NoError(t, err)
	assert.Equal(t, stats.Date("2026-03-10"), view.Date)
	assert.Equal(t, stats.AvatarStates{Mind: stats.Dormant, Body: stats.Dormant, Soul: stats.Dormant}, view.States)

	require.NoError(t, env.engine.StartExecution(ctx, env.user, stats.Mind))
	view, err = env.engine.GetAvatarStates(ctx, env.user)
	require.NoError(t, err)
	assert.Equal(t, stats.Awakening, view.States.Mind)
	assert.Equal(t, stats.Dormant, view.States.Body)

	env.complete(t, "box-breathing", stats.Mind)
	view, err = env.engine.GetAvatarStates(ctx, env.user)
	require.NoError(t, err)
	assert.Equal(t, stats.Glowing, view.States.Mind, "completion outranks a running session")
	require.NoError(t, env.engine.StopExecution(ctx, env.user, stats.Mind))

	env.complete(t, "stretch", stats.Body)
	env.complete(t, "journal", stats.Soul)
	view, err = env.engine.GetAvatarStates(ctx, env.user)
	require.NoError(t, err)
	assert.Equal(t, stats.AvatarStates{Mind: stats.Radiant, Body: stats.Radiant, Soul: stats.Radiant}, view.States)

	// a new local day starts dark
	env.clock.AdvanceDays(1)
	view, err = env.engine.GetAvatarStates(ctx, env.user)
	require.NoError(t, err)
	assert.Equal(t, stats.Date("2026-03-11"), view.Date)
	assert.Equal(t, stats.AvatarStates{Mind: stats.Dormant, Body: stats.Dormant, Soul: stats.Dormant}, view.States)
}

func TestStartExecution_RejectsUnknownCategory(t *testing.T) {
	env := newTestEnv(t)
	err := env.engine.StartExecution(context.Background(), env.user, "spirit")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRecordCompletion_SurvivesMilestoneFailure(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.db.Migrator().DropTable(&models.MilestoneProgress{}))

	res := env.complete(t, "box-breathing", stats.Mind)
	assert.NotNil(t, res.NewMilestones)
	assert.Empty(t, res.NewMilestones)
	assert.True(t, res.Progress.MindComplete)

	var completions int64
	require.NoError(t, env.db.Model(&models.RoutineCompletion{}).Where("user_id = ?", env.user).Count(&completions).Error)
	assert.Equal(t, int64(1), completions)

	day, err := env.engine.GetDailyProgress(context.Background(), env.user, env.today())
	require.NoError(t, err)
	assert.True(t, day.MindComplete)
}

func TestConcurrentWritesKeepEveryFlag(t *testing.T) {
	db := testutil.NewFileTestDB(t, 4)
	clock := stats.NewFakeClock(day1)
	e := NewEngine(db, EngineConfig{
		Clock:           clock,
		Sessions:        utils.NewSessionStore(nil, time.Hour),
		Cache:           newMemCache(),
		DefaultTimezone: "UTC",
	})
	ctx := context.Background()
	date := stats.LocalDate(day1, time.UTC)

	for round := 0; round < 5; round++ {
		user := uuid.New()
		start := make(chan struct{})
		errs := make(chan error, 3)
		var wg sync.WaitGroup
		for _, c := range []stats.Category{stats.Mind, stats.Soul} {
			wg.Add(1)
			go func(c stats.Category) {
				defer wg.Done()
				<-start
				_, err := e.RecordCompletion(ctx, CompletionInput{UserID: user, RoutineID: "r-" + string(c), Category: c})
				errs <- err
			}(c)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := e.MarkCategoryComplete(ctx, user, date, stats.Body)
			errs <- err
		}()
		close(start)
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		day, err := e.GetDailyProgress(ctx, user, date)
		require.NoError(t, err)
		assert.True(t, day.MindComplete, "round %d", round)
		assert.True(t, day.BodyComplete, "round %d", round)
		assert.True(t, day.SoulComplete, "round %d", round)
	}
}
