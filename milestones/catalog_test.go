package milestones

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soteriahealth/soteria/stats"
)

func TestDefault_LoadsEmbeddedCatalog(t *testing.T) {
	c := Default()
	require.Greater(t, c.Len(), 0)

	d, ok := c.Get("routine_10")
	require.True(t, ok)
	assert.Equal(t, "Committed", d.Title)
	assert.Equal(t, KindCompletion, d.Kind)
	assert.Equal(t, Count, d.ThresholdType)
	assert.Equal(t, 10, d.Threshold)

	for i, def := range c.All() {
		assert.Equal(t, i, def.Order)
	}
}

func TestDefault_CoversEveryKind(t *testing.T) {
	seen := map[Kind]bool{}
	for _, d := range Default().All() {
		seen[d.Kind] = true
	}
	for _, k := range AllKinds {
		assert.True(t, seen[k], "no catalog entry for kind %s", k)
	}
}

func TestParse_RejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{
			"unknown threshold type",
			"milestones:\n  - {id: x, category: streak, threshold: 3, threshold_type: weeks, rarity: common}\n",
			"threshold_type",
		},
		{
			"unknown category",
			"milestones:\n  - {id: x, category: karma, threshold: 3, threshold_type: count, rarity: common}\n",
			"category",
		},
		{
			"zero threshold",
			"milestones:\n  - {id: x, category: streak, threshold: 0, threshold_type: days, rarity: common}\n",
			"threshold",
		},
		{
			"unsupported combination",
			"milestones:\n  - {id: x, category: consistency, threshold: 50, threshold_type: percentage, rarity: rare}\n",
			"threshold_type",
		},
		{
			"duplicate id",
			"milestones:\n  - {id: x, category: streak, threshold: 3, threshold_type: days, rarity: common}\n  - {id: x, category: streak, threshold: 7, threshold_type: days, rarity: common}\n",
			"id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			var defErr *DefinitionError
			require.True(t, errors.As(err, &defErr), "got %v", err)
			assert.Equal(t, tt.field, defErr.Field)
		})
	}
}

func TestValue_EveryKindEvaluates(t *testing.T) {
	start := stats.Date("2026-03-01")
	first, latest := 8, 4
	snap := Snapshot{
		AsOf:           "2026-03-10",
		TotalRoutines:  12,
		UniqueRoutines: map[stats.Category]int{stats.Mind: 6, stats.Body: 2, stats.Soul: 1},
		BalancedDays:   4,
		Streak:         stats.Streak{Current: 5, Longest: 9},
		HarmonyScore:   72,
		JourneyStart:   &start,
		Recent: []stats.DayFlags{
			{Date: "2026-03-09", Mind: true},
			{Date: "2026-03-10", Mind: true, Body: true, Soul: true},
		},
		PainDays:      3,
		PainFirst:     &first,
		PainLatest:    &latest,
		CirclesJoined: 2,
	}

	tests := []struct {
		def  Definition
		want int
	}{
		{Definition{Kind: KindStreak, ThresholdType: Days}, 5},
		{Definition{Kind: KindCompletion, ThresholdType: Count}, 12},
		{Definition{Kind: KindBalance, ThresholdType: Boolean}, 1},
		{Definition{Kind: KindBalance, ThresholdType: Percentage}, 72},
		{Definition{Kind: KindBalance, ThresholdType: Count}, 4},
		{Definition{Kind: KindSpecialization, ThresholdType: Count, Focus: stats.Body}, 2},
		{Definition{Kind: KindSpecialization, ThresholdType: Count}, 6},
		{Definition{Kind: KindJourney, ThresholdType: Days}, 10},
		{Definition{Kind: KindPain, ThresholdType: Boolean}, 1},
		{Definition{Kind: KindPain, ThresholdType: Count}, 3},
		{Definition{Kind: KindPain, ThresholdType: Percentage}, 50},
		{Definition{Kind: KindSocial, ThresholdType: Count}, 2},
		{Definition{Kind: KindConsistency, ThresholdType: Days}, 2},
		{Definition{Kind: KindConsistency, ThresholdType: Count}, 1},
	}

	covered := map[Kind]bool{}
	for _, tt := range tests {
		got, err := tt.def.Value(snap)
		require.NoError(t, err, "%s/%s", tt.def.Kind, tt.def.ThresholdType)
		assert.Equal(t, tt.want, got, "%s/%s", tt.def.Kind, tt.def.ThresholdType)
		covered[tt.def.Kind] = true
	}
	for _, k := range AllKinds {
		assert.True(t, covered[k], "kind %s has no value case", k)
	}
}

func TestValue_NoJourneyOrPainYet(t *testing.T) {
	snap := Snapshot{AsOf: "2026-03-10"}

	v, err := Definition{Kind: KindJourney, ThresholdType: Days}.Value(snap)
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	v, err = Definition{Kind: KindPain, ThresholdType: Percentage}.Value(snap)
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	v, err = Definition{Kind: KindBalance, ThresholdType: Boolean}.Value(snap)
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}

func TestPercent(t *testing.T) {
	d := Definition{Threshold: 10}
	assert.Equal(t, 0, d.Percent(0))
	assert.Equal(t, 40, d.Percent(4))
	assert.Equal(t, 100, d.Percent(10))
	assert.Equal(t, 100, d.Percent(25))
}
