package domain

// AnalysisResult is the end-of-session assessment returned by the external
// model. JSON keys match its wire schema; the struct is stored verbatim on
// the session once completion succeeds.
type AnalysisResult struct {
	GoalAchieved    bool   `bson:"goalAchieved" json:"goal_achieved"`
	ProgressSummary string `bson:"progressSummary" json:"progress_summary"`
	Nutrition       struct {
		AverageCaloriesPerDay float64 `bson:"averageCaloriesPerDay" json:"average_calories_per_day"`
		CalorieTrend          string  `bson:"calorieTrend" json:"calorie_trend"` // deficit/surplus/stable
	} `bson:"nutrition" json:"nutrition_analysis"`
	Workout struct {
		TotalWorkoutDays      int      `bson:"totalWorkoutDays" json:"total_workout_days"`
		MostFrequentExercises []string `bson:"mostFrequentExercises" json:"most_frequent_exercises"`
		TotalCaloriesBurned   int      `bson:"totalCaloriesBurned" json:"total_calories_burned"`
	} `bson:"workout" json:"workout_analysis"`
	Consistency struct {
		LongestStreakDays int    `bson:"longestStreakDays" json:"longest_streak_days"`
		SkippedDays       int    `bson:"skippedDays" json:"skipped_days"`
		BestWeek          string `bson:"bestWeek" json:"best_week"`
		WorstWeek         string `bson:"worstWeek" json:"worst_week"`
	} `bson:"consistency" json:"consistency"`
	Summary string `bson:"summary" json:"summary"`
	FunFact string `bson:"funFact" json:"fun_fact"`
}

// ProgressStats is the deterministic summary computed locally at completion,
// kept separate from the model's own numbers so it stays correct even when
// the model miscounts.
type ProgressStats struct {
	WeightDelta float64 `bson:"weightDelta" json:"weightDelta"` // finalWeight - initial weight, one decimal
	DaysFull    int     `bson:"daysFull" json:"daysFull"`
	DaysNotDone int     `bson:"daysNotDone" json:"daysNotDone"`
}
