package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPainCheckIn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.engine.RecordPainCheckIn(ctx, PainInput{
		UserID:    env.user,
		PainLevel: 8,
		BodyAreas: []string{" Lower-Back ", "", "knee"},
		Notes:     "<b>stiff</b> after <script>alert(1)</script>sleep",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", string(res.CheckIn.LocalDate))
	assert.Equal(t, "stiff after sleep", res.CheckIn.Notes)

	var areas []string
	require.NoError(t, json.Unmarshal(res.CheckIn.BodyAreas, &areas))
	assert.Equal(t, []string{"lower-back", "knee"}, areas)
	assert.Equal(t, []string{"pain_first_checkin"}, res.NewMilestones)

	env.clock.AdvanceDays(1)
	res, err = env.engine.RecordPainCheckIn(ctx, PainInput{UserID: env.user, PainLevel: 6})
	require.NoError(t, err)
	// 8 -> 6 is a 25% reduction
	assert.Equal(t, []string{"pain_relief_25"}, res.NewMilestones)
}

func TestRecordPainCheckIn_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    PainInput
		field string
	}{
		{"level too high", PainInput{UserID: env.user, PainLevel: 11}, "pain_level"},
		{"negative level", PainInput{UserID: env.user, PainLevel: -1}, "pain_level"},
		{"area too long", PainInput{UserID: env.user, PainLevel: 3, BodyAreas: []string{"abcdefghijklmnopqrstuvwxyz0123456789"}}, "body_areas"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.engine.RecordPainCheckIn(ctx, tt.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
