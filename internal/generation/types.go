package generation

import (
	"context"

	"nutricoach/coach-app/internal/domain"
)

// WeekRequest identifies one (month, week) generation unit plus the user
// context embedded into the prompt.
type WeekRequest struct {
	Physical       *domain.PhysicalData
	CategoryName   string
	Goal           string
	Comments       string
	DurationMonths int // clamped to domain.MaxDurationMonths before use
	Month          int // 1-based, within the clamped duration
	Week           int // 1..4
}

// GeneratedDay is one day entry of a parsed week response. JSON keys are
// the generator's wire schema.
type GeneratedDay struct {
	Date                string                `json:"date"` // YYYY-MM-DD
	DayNumber           int                   `json:"day_number"`
	DayOfWeek           string                `json:"day_of_week"`
	Meals               []domain.Meal         `json:"meals"`
	TotalCalories       int                   `json:"total_calories"`
	Workout             []domain.WorkoutEntry `json:"workout"`
	TotalCaloriesBurned int                   `json:"total_calories_burned"`
	Status              string                `json:"status"`
}

// WeekPlan is a parsed, shape-validated week response. Semantic checks
// (calorie arithmetic, date/weekday correctness) stay with the caller.
type WeekPlan struct {
	Month int            `json:"month"`
	Week  int            `json:"week"`
	Days  []GeneratedDay `json:"days"`
}

// AnalysisRequest carries everything the analysis prompt summarizes.
type AnalysisRequest struct {
	Goal          string
	CategoryName  string
	Comments      string
	InitialWeight float64
	FinalWeight   float64
	DayPlans      []domain.DayPlan
}

// Generator wraps calls to the external text-generation service. Stateless
// across invocations; every method owns exactly one outbound call.
type Generator interface {
	// GenerateWeek returns a shape-validated plan for one (month, week)
	// unit, or a *generation.Error.
	GenerateWeek(ctx context.Context, req WeekRequest) (*WeekPlan, error)

	// AnalyzeProgress returns the end-of-session assessment, or a
	// *generation.Error.
	AnalyzeProgress(ctx context.Context, req AnalysisRequest) (*domain.AnalysisResult, error)
}
