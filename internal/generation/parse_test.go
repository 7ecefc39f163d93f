package generation

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validWeekJSON(t *testing.T, month, week, days int) string {
	t.Helper()
	plan := WeekPlan{Month: month, Week: week}
	for i := 0; i < days; i++ {
		plan.Days = append(plan.Days, GeneratedDay{
			Date:      fmt.Sprintf("2025-01-%02d", i+6),
			DayNumber: i + 1,
			DayOfWeek: "Monday",
		})
	}
	raw, err := json.Marshal(plan)
	require.NoError(t, err)
	return string(raw)
}

func TestTrimCodeFence(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":                      `{"a":1}`,
		"```json\n{\"a\":1}\n```":        `{"a":1}`,
		"```\n{\"a\":1}\n```":            `{"a":1}`,
		"  \n```json\n{\"a\":1}\n```\n ": `{"a":1}`,
	}
	for input, want := range cases {
		assert.Equal(t, want, trimCodeFence(input))
	}
}

func TestParseWeekResponse(t *testing.T) {
	week, err := parseWeekResponse(validWeekJSON(t, 2, 3, 7))
	require.NoError(t, err)
	assert.Equal(t, 2, week.Month)
	assert.Equal(t, 3, week.Week)
	assert.Len(t, week.Days, 7)
}

func TestParseWeekResponseAcceptsFencedOutput(t *testing.T) {
	fenced := "```json\n" + validWeekJSON(t, 1, 1, 7) + "\n```"
	week, err := parseWeekResponse(fenced)
	require.NoError(t, err)
	assert.Len(t, week.Days, 7)
}

func TestParseWeekResponseRejectsBadShapes(t *testing.T) {
	cases := map[string]string{
		"not json":       "the model apologizes instead of answering",
		"truncated":      validWeekJSON(t, 1, 1, 7)[:40],
		"too few days":   validWeekJSON(t, 1, 1, 6),
		"too many days":  validWeekJSON(t, 1, 1, 8),
		"zero month":     validWeekJSON(t, 0, 1, 7),
		"week too large": validWeekJSON(t, 1, 5, 7),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseWeekResponse(raw)
			var genErr *Error
			require.ErrorAs(t, err, &genErr)
			assert.Equal(t, ErrMalformed, genErr.Kind)
		})
	}
}

func TestParseWeekResponseRejectsMissingDates(t *testing.T) {
	raw := validWeekJSON(t, 1, 1, 7)
	var plan WeekPlan
	require.NoError(t, json.Unmarshal([]byte(raw), &plan))
	plan.Days[4].Date = ""
	broken, err := json.Marshal(plan)
	require.NoError(t, err)

	_, err = parseWeekResponse(string(broken))
	var genErr *Error
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, ErrMalformed, genErr.Kind)
}

func TestParseAnalysisResponse(t *testing.T) {
	raw := `{
		"goal_achieved": true,
		"progress_summary": "Lost 2.7kg over 4 weeks",
		"nutrition_analysis": {"average_calories_per_day": 1850.5, "calorie_trend": "deficit"},
		"workout_analysis": {"total_workout_days": 18, "most_frequent_exercises": ["Squats"], "total_calories_burned": 5400},
		"consistency": {"longest_streak_days": 9, "skipped_days": 4, "best_week": "week 2", "worst_week": "week 4"},
		"summary": "Strong result overall.",
		"fun_fact": "You burned the equivalent of 20 donuts."
	}`
	result, err := parseAnalysisResponse("```json\n" + raw + "\n```")
	require.NoError(t, err)
	assert.True(t, result.GoalAchieved)
	assert.Equal(t, "deficit", result.Nutrition.CalorieTrend)
	assert.Equal(t, 18, result.Workout.TotalWorkoutDays)
	assert.Equal(t, 4, result.Consistency.SkippedDays)
}

func TestParseAnalysisResponseRejectsGarbage(t *testing.T) {
	_, err := parseAnalysisResponse("I'm sorry, I can't produce that.")
	var genErr *Error
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, ErrMalformed, genErr.Kind)
}

func TestWeekStartDateIsAlwaysMonday(t *testing.T) {
	// Walk a full week of anchor days to cover every weekday case.
	for offset := 0; offset < 7; offset++ {
		now := time.Date(2025, 3, 10+offset, 15, 0, 0, 0, time.UTC)
		for month := 1; month <= 3; month++ {
			for week := 1; week <= 4; week++ {
				start := weekStartDate(now, month, week)
				assert.Equal(t, time.Monday, start.Weekday(), "now=%s month=%d week=%d", now, month, week)
				assert.False(t, start.Before(now), "week start must not be in the past")
			}
		}
	}
}

func TestWeekStartDatesAreSevenDaysApart(t *testing.T) {
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	first := weekStartDate(now, 1, 1)
	assert.Equal(t, first.AddDate(0, 0, 7), weekStartDate(now, 1, 2))
	assert.Equal(t, first.AddDate(0, 0, 28), weekStartDate(now, 2, 1))
	assert.Equal(t, first.AddDate(0, 0, 63), weekStartDate(now, 3, 4))
}
