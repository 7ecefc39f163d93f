package service

import (
	"context"
	"math"

	"nutricoach/coach-app/internal/domain"
	"nutricoach/coach-app/internal/generation"
)

// ProgressAnalyzer produces the end-of-session assessment: the external
// model's analysis plus a deterministic summary computed locally so the
// headline numbers stay correct even if the model miscounts.
type ProgressAnalyzer interface {
	Analyze(ctx context.Context, session *domain.Session, category *domain.Category, physical *domain.PhysicalData, finalWeight float64, dayPlans []domain.DayPlan) (*domain.AnalysisResult, *domain.ProgressStats, error)
}

type progressAnalyzer struct {
	generator generation.Generator
}

// NewProgressAnalyzer creates a new instance of progressAnalyzer.
func NewProgressAnalyzer(generator generation.Generator) ProgressAnalyzer {
	return &progressAnalyzer{generator: generator}
}

func (a *progressAnalyzer) Analyze(ctx context.Context, session *domain.Session, category *domain.Category, physical *domain.PhysicalData, finalWeight float64, dayPlans []domain.DayPlan) (*domain.AnalysisResult, *domain.ProgressStats, error) {
	result, err := a.generator.AnalyzeProgress(ctx, generation.AnalysisRequest{
		Goal:          session.Goal,
		CategoryName:  category.Name,
		Comments:      session.Comments,
		InitialWeight: physical.Weight,
		FinalWeight:   finalWeight,
		DayPlans:      dayPlans,
	})
	if err != nil {
		// Malformed/upstream errors propagate unchanged; completion stays
		// retriable for the caller.
		return nil, nil, err
	}

	return result, deriveStats(physical.Weight, finalWeight, dayPlans), nil
}

// deriveStats computes the model-independent summary.
func deriveStats(initialWeight, finalWeight float64, dayPlans []domain.DayPlan) *domain.ProgressStats {
	stats := &domain.ProgressStats{
		WeightDelta: math.Round((finalWeight-initialWeight)*10) / 10,
	}
	for _, plan := range dayPlans {
		switch plan.Status {
		case domain.DayFull:
			stats.DaysFull++
		case domain.DayNotDone:
			stats.DaysNotDone++
		}
	}
	return stats
}
